package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kavete/health-monitor/internal/config"
	"github.com/kavete/health-monitor/internal/models"
	"github.com/kavete/health-monitor/internal/reports"
)

// timeLabelFormat renders reading timestamps on the label axis.
const timeLabelFormat = "15:04:05"

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// HandleHealth provides the health check endpoint.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.GetVersion(),
	})
}

// HandleWardTrendData serves the per-ward environmental time series.
func (s *Server) HandleWardTrendData(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if _, ok := s.store.Ward(slug); !ok {
		http.Error(w, fmt.Sprintf("unknown ward %q", slug), http.StatusNotFound)
		return
	}

	history := s.store.WardHistory(slug, s.cfg.HistoryLimit)
	data := models.WardTrendChartData{
		Labels:         make([]string, 0, len(history)),
		Temperature:    make([]*float64, 0, len(history)),
		Humidity:       make([]*float64, 0, len(history)),
		NoiseLevel:     make([]*float64, 0, len(history)),
		LightIntensity: make([]*float64, 0, len(history)),
	}
	for i := range history {
		reading := history[i]
		data.Labels = append(data.Labels, reading.Timestamp.Format(timeLabelFormat))
		data.Temperature = append(data.Temperature, &reading.Temperature)
		data.Humidity = append(data.Humidity, &reading.Humidity)
		data.NoiseLevel = append(data.NoiseLevel, &reading.NoiseLevel)
		data.LightIntensity = append(data.LightIntensity, reading.LightIntensity)
	}
	writeJSON(w, data)
}

// HandleVitalsData serves a patient's vitals time series.
func (s *Server) HandleVitalsData(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	if _, ok := s.store.Patient(id); !ok {
		http.Error(w, fmt.Sprintf("unknown patient %d", id), http.StatusNotFound)
		return
	}

	history := s.store.PatientHistory(id, s.cfg.HistoryLimit)
	data := models.VitalsChartData{
		Labels:           make([]string, 0, len(history)),
		HeartRate:        make([]*float64, 0, len(history)),
		Temperature:      make([]*float64, 0, len(history)),
		OxygenSaturation: make([]*float64, 0, len(history)),
	}
	for i := range history {
		vitals := history[i]
		hr := float64(vitals.HeartRate)
		data.Labels = append(data.Labels, vitals.Timestamp.Format(timeLabelFormat))
		data.HeartRate = append(data.HeartRate, &hr)
		data.Temperature = append(data.Temperature, &vitals.Temperature)
		data.OxygenSaturation = append(data.OxygenSaturation, &vitals.OxygenSaturation)
	}
	writeJSON(w, data)
}

// HandleWardSnapshotData serves the latest reading per ward for the
// cross-ward overview.
func (s *Server) HandleWardSnapshotData(w http.ResponseWriter, r *http.Request) {
	latest := s.store.LatestPerWard()
	data := models.WardSnapshotChartData{
		Wards:          make([]string, 0, len(latest)),
		Temperature:    make([]float64, 0, len(latest)),
		Humidity:       make([]float64, 0, len(latest)),
		NoiseLevel:     make([]float64, 0, len(latest)),
		LightIntensity: make([]float64, 0, len(latest)),
	}
	for _, reading := range latest {
		data.Wards = append(data.Wards, s.store.WardName(reading.WardSlug))
		data.Temperature = append(data.Temperature, reading.Temperature)
		data.Humidity = append(data.Humidity, reading.Humidity)
		data.NoiseLevel = append(data.NoiseLevel, reading.NoiseLevel)
		if reading.LightIntensity != nil {
			data.LightIntensity = append(data.LightIntensity, *reading.LightIntensity)
		} else {
			data.LightIntensity = append(data.LightIntensity, 0)
		}
	}
	writeJSON(w, data)
}

// HandleRoot serves the cross-ward overview page, or the first
// configured dashboard when no overview is declared.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	var target *Dashboard
	for _, name := range s.order {
		d := s.dashboards[name]
		if d.Config.Variant == config.VariantWardSnapshot {
			target = d
			break
		}
	}
	if target == nil && len(s.order) > 0 {
		target = s.dashboards[s.order[0]]
	}
	if target == nil {
		http.Error(w, "no dashboards configured", http.StatusNotFound)
		return
	}
	s.renderDashboard(w, target, false)
}

// HandleDashboardPage serves any configured dashboard by name.
func (s *Server) HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	d, ok := s.dashboards[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown dashboard %q", name), http.StatusNotFound)
		return
	}
	s.renderDashboard(w, d, true)
}

func (s *Server) renderDashboard(w http.ResponseWriter, d *Dashboard, backLink bool) {
	page, err := s.builder.RenderDashboard(reports.PageData{
		Title:     pageTitle(d.Config.Name),
		Dashboard: d.Config.Name,
		Version:   config.GetVersion(),
		Stale:     d.Manager.Stale(),
		LivePath:  "/live",
		BackLink:  backLink,
	}, s.dashboardNotes(d), d.Manager.Snippets())
	if err != nil {
		s.log.Error("dashboard render failed", err, map[string]interface{}{"dashboard": d.Config.Name})
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// dashboardNotes builds the markdown notes block shown above the
// charts: census counts on the overview, ward details on trend pages,
// and links between dashboards everywhere.
func (s *Server) dashboardNotes(d *Dashboard) string {
	var b strings.Builder

	switch d.Config.Variant {
	case config.VariantWardSnapshot:
		fmt.Fprintf(&b, "**Wards:** %d &nbsp; **Patients:** %d\n\n", len(s.store.Wards()), len(s.store.Patients()))
	case config.VariantWardTrend:
		if slug := wardSlugFromPath(d.Config.Path); slug != "" {
			if ward, ok := s.store.Ward(slug); ok {
				fmt.Fprintf(&b, "### %s\n\n", ward.Name)
				if ward.Location != "" {
					fmt.Fprintf(&b, "Located at %s.\n\n", ward.Location)
				}
			}
		}
	}

	links := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if name == d.Config.Name {
			continue
		}
		links = append(links, fmt.Sprintf("[%s](/dashboards/%s)", pageTitle(name), name))
	}
	if len(links) > 0 {
		b.WriteString("See also: " + strings.Join(links, " · "))
	}
	return b.String()
}

// wardSlugFromPath extracts the ward slug from a chart-data path like
// /wards/general/chart-data/.
func wardSlugFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "wards" {
		return parts[1]
	}
	return ""
}

// pageTitle turns a dashboard name like "ward-overview" into a display
// title.
func pageTitle(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// HandleSnapshot renders one chart of a dashboard as a static PNG.
func (s *Server) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	series := strings.TrimSuffix(r.PathValue("series"), ".png")

	d, ok := s.dashboards[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown dashboard %q", name), http.StatusNotFound)
		return
	}

	png, err := d.Manager.SnapshotPNG(series)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
