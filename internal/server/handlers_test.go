package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kavete/health-monitor/internal/config"
	"github.com/kavete/health-monitor/internal/fetchers"
	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
	"github.com/kavete/health-monitor/internal/store"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.FATAL, Output: io.Discard})
}

func fp(v float64) *float64 { return &v }

func seededStore() *store.Store {
	st := store.New(50)
	st.RegisterWard(models.Ward{Name: "General Ward", Slug: "general", Location: "Block A"})
	st.RegisterWard(models.Ward{Name: "ICU", Slug: "icu"})
	st.RegisterPatient(models.Patient{ID: 2, Name: "Bed 2", WardSlug: "general", BedNumber: 2})

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	st.AddWardReading(models.WardReading{
		WardSlug: "general", Temperature: 22.1, Humidity: 54, NoiseLevel: 40,
		LightIntensity: fp(300), Timestamp: base,
	})
	st.AddWardReading(models.WardReading{
		WardSlug: "general", Temperature: 22.4, Humidity: 55, NoiseLevel: 42,
		Timestamp: base.Add(2 * time.Second),
	})
	st.AddWardReading(models.WardReading{
		WardSlug: "icu", Temperature: 21.0, Humidity: 48, NoiseLevel: 35,
		Timestamp: base.Add(time.Second),
	})
	st.AddPatientVitals(models.PatientVitals{
		PatientID: 2, Temperature: 36.7, HeartRate: 72, OxygenSaturation: 97.5,
		Timestamp: base,
	})
	st.AddPatientVitals(models.PatientVitals{
		PatientID: 2, Temperature: 36.8, HeartRate: 75, OxygenSaturation: 98.0,
		Timestamp: base.Add(2 * time.Second),
	})
	return st
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		BaseURL:                "http://127.0.0.1:8799",
		HistoryLimit:           50,
		FetchTimeout:           time.Second,
		MaxConsecutiveFailures: 3,
	}
	srv, err := NewServer(cfg, config.DefaultDashboards(), seededStore(), testLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getBody(t *testing.T, url string, wantStatus int) []byte {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var health map[string]interface{}
	if err := json.Unmarshal(getBody(t, ts.URL+"/health", http.StatusOK), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("unexpected status %v", health["status"])
	}
}

func TestHandleWardTrendData(t *testing.T) {
	_, ts := newTestServer(t)

	body := getBody(t, ts.URL+"/wards/general/chart-data/", http.StatusOK)
	var data models.WardTrendChartData
	if err := json.Unmarshal(body, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(data.Labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(data.Labels))
	}
	if data.Labels[0] != "10:00:00" || data.Labels[1] != "10:00:02" {
		t.Errorf("labels not in reading order: %v", data.Labels)
	}
	if err := data.Validate(); err != nil {
		t.Errorf("response not aligned: %v", err)
	}
	if data.LightIntensity[0] == nil || *data.LightIntensity[0] != 300 {
		t.Errorf("unexpected first light value %v", data.LightIntensity[0])
	}
	if data.LightIntensity[1] != nil {
		t.Error("missing light reading must encode as null")
	}
	if strings.Contains(string(body), `"noise":`) {
		t.Error("legacy noise key must never be emitted")
	}
}

func TestHandleWardTrendDataUnknownWard(t *testing.T) {
	_, ts := newTestServer(t)
	getBody(t, ts.URL+"/wards/maternity/chart-data/", http.StatusNotFound)
}

func TestHandleVitalsData(t *testing.T) {
	_, ts := newTestServer(t)

	var data models.VitalsChartData
	if err := json.Unmarshal(getBody(t, ts.URL+"/patients/2/chart-data/", http.StatusOK), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(data.Labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(data.Labels))
	}
	if err := data.Validate(); err != nil {
		t.Errorf("response not aligned: %v", err)
	}
	if *data.HeartRate[1] != 75 {
		t.Errorf("unexpected heart rate %v", *data.HeartRate[1])
	}
}

func TestHandleVitalsDataBadRequests(t *testing.T) {
	_, ts := newTestServer(t)
	getBody(t, ts.URL+"/patients/notanid/chart-data/", http.StatusBadRequest)
	getBody(t, ts.URL+"/patients/99/chart-data/", http.StatusNotFound)
}

func TestHandleWardSnapshotData(t *testing.T) {
	_, ts := newTestServer(t)

	var data models.WardSnapshotChartData
	if err := json.Unmarshal(getBody(t, ts.URL+"/dashboard/chart-data/", http.StatusOK), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(data.Wards) != 2 {
		t.Fatalf("expected 2 wards, got %d", len(data.Wards))
	}
	// Sorted by display name.
	if data.Wards[0] != "General Ward" || data.Wards[1] != "ICU" {
		t.Errorf("unexpected ward order %v", data.Wards)
	}
	// Latest general reading has no light sensor value.
	if data.LightIntensity[0] != 0 {
		t.Errorf("absent light should flatten to 0, got %v", data.LightIntensity[0])
	}
	if data.Temperature[0] != 22.4 {
		t.Errorf("expected latest reading per ward, got %v", data.Temperature[0])
	}
}

func TestHandleDashboardPage(t *testing.T) {
	_, ts := newTestServer(t)

	page := string(getBody(t, ts.URL+"/dashboards/ward-trend", http.StatusOK))
	for _, want := range []string{
		"<title>Ward Trend</title>",
		`id="chart-ward-temperature"`,
		"General Ward",
		"Located at Block A.",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	getBody(t, ts.URL+"/dashboards/nope", http.StatusNotFound)
}

func TestHandleRootServesOverview(t *testing.T) {
	_, ts := newTestServer(t)

	page := string(getBody(t, ts.URL+"/", http.StatusOK))
	if !strings.Contains(page, "<title>Ward Overview</title>") {
		t.Error("root should serve the cross-ward overview")
	}
	if !strings.Contains(page, `id="overview-temperature"`) {
		t.Error("overview chart surface missing")
	}
}

func TestHandleSnapshotPNG(t *testing.T) {
	srv, ts := newTestServer(t)

	d, ok := srv.Dashboard("ward-overview")
	if !ok {
		t.Fatal("overview dashboard missing")
	}
	d.Manager.Apply(models.RefreshPayload{
		Labels: []string{"General Ward", "ICU"},
		Series: map[string][]*float64{
			models.SeriesTemperature: {fp(22.4), fp(21.0)},
		},
	})

	png := getBody(t, ts.URL+"/snapshots/ward-overview/temperature.png", http.StatusOK)
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("response is not a PNG")
	}

	getBody(t, ts.URL+"/snapshots/nope/temperature.png", http.StatusNotFound)
}

func TestRefreshRoundTrip(t *testing.T) {
	srv, ts := newTestServer(t)

	d, ok := srv.Dashboard("ward-trend")
	if !ok {
		t.Fatal("trend dashboard missing")
	}

	source := &fetchers.PayloadSource{
		Client:  fetchers.NewChartDataClient(time.Second),
		Variant: fetchers.VariantWardTrend,
		URL:     ts.URL + "/wards/general/chart-data/",
	}
	payload, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	updates := d.Manager.Apply(payload)
	if len(updates) == 0 {
		t.Fatal("expected chart updates")
	}

	var temp bool
	for _, u := range updates {
		if u.Surface == "chart-ward-temperature" {
			temp = true
			if len(u.Values) != 2 || *u.Values[1] != 22.4 {
				t.Errorf("unexpected values %v", u.Values)
			}
			if u.YMin == nil || u.YMax == nil {
				t.Error("expected computed axis bounds")
			}
		}
	}
	if !temp {
		t.Error("temperature surface not updated")
	}
}
