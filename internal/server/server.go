package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kavete/health-monitor/internal/charts"
	"github.com/kavete/health-monitor/internal/config"
	"github.com/kavete/health-monitor/internal/fetchers"
	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/reports"
	"github.com/kavete/health-monitor/internal/scheduler"
	"github.com/kavete/health-monitor/internal/store"
)

// Dashboard bundles one configured dashboard: its chart manager and the
// scheduler that keeps it refreshed.
type Dashboard struct {
	Config    config.DashboardConfig
	Manager   *charts.Manager
	Scheduler *scheduler.Scheduler
}

// Server hosts the chart-data endpoints, the rendered dashboard pages,
// the live update feed and the refresh schedulers that poll the
// chart-data endpoints back.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	log        *logger.Logger
	builder    *reports.PageBuilder
	hub        *Hub
	dashboards map[string]*Dashboard
	order      []string
}

// NewServer wires one Dashboard per declaration: surfaces and bindings
// from the chart configs, a payload source pointed at the service's own
// chart-data path, and a scheduler publishing applied updates to the
// live hub.
func NewServer(cfg *config.Config, dashCfgs []config.DashboardConfig, st *store.Store, log *logger.Logger) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		store:      st,
		log:        log,
		builder:    reports.NewPageBuilder(),
		hub:        NewHub(log.WithComponent("live")),
		dashboards: make(map[string]*Dashboard, len(dashCfgs)),
	}

	client := fetchers.NewChartDataClient(cfg.FetchTimeout)

	for _, dc := range dashCfgs {
		if _, exists := s.dashboards[dc.Name]; exists {
			return nil, fmt.Errorf("duplicate dashboard name %q", dc.Name)
		}

		bindings, surfaces := bindingsFromConfig(dc.Charts)
		manager := charts.NewManager(dc.Name, bindings, surfaces, log.WithComponent("charts"))

		source := &fetchers.PayloadSource{
			Client:  client,
			Variant: fetchers.Variant(dc.Variant),
			URL:     strings.TrimRight(cfg.BaseURL, "/") + dc.Path,
		}
		sched := scheduler.New(
			dc.Name,
			dc.Interval,
			cfg.MaxConsecutiveFailures,
			source,
			manager,
			s.hub,
			log.WithComponent("scheduler"),
		)

		s.dashboards[dc.Name] = &Dashboard{Config: dc, Manager: manager, Scheduler: sched}
		s.order = append(s.order, dc.Name)
	}
	return s, nil
}

// bindingsFromConfig converts chart declarations into manager bindings
// and the surface set the dashboard page will render.
func bindingsFromConfig(chartCfgs []config.ChartConfig) ([]charts.Binding, charts.Surfaces) {
	bindings := make([]charts.Binding, 0, len(chartCfgs))
	surfaces := charts.NewSurfaces()
	for _, cc := range chartCfgs {
		b := charts.Binding{
			Series:   cc.Series,
			Surface:  cc.Surface,
			Title:    cc.Title,
			Unit:     cc.Unit,
			FloorPad: cc.FloorPad,
			Percent:  cc.Percent,
		}
		if cc.Axis == "fixed" {
			b.Policy = charts.AxisFixed
			b.FixedMin = cc.Min
			b.FixedMax = cc.Max
		}
		bindings = append(bindings, b)
		surfaces[cc.Surface] = struct{}{}
	}
	return bindings, surfaces
}

// RunSchedulers starts every dashboard's refresh loop. They stop when
// the context is cancelled.
func (s *Server) RunSchedulers(ctx context.Context) {
	for _, name := range s.order {
		go s.dashboards[name].Scheduler.Run(ctx)
	}
}

// Dashboard looks up a configured dashboard by name.
func (s *Server) Dashboard(name string) (*Dashboard, bool) {
	d, ok := s.dashboards[name]
	return d, ok
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth)

	// Chart-data endpoints, polled by the refresh schedulers and any
	// external consumer.
	mux.HandleFunc("GET /dashboard/chart-data/", s.HandleWardSnapshotData)
	mux.HandleFunc("GET /wards/{slug}/chart-data/", s.HandleWardTrendData)
	mux.HandleFunc("GET /patients/{id}/chart-data/", s.HandleVitalsData)

	// Rendered dashboard pages and static chart snapshots.
	mux.HandleFunc("GET /dashboards/{name}", s.HandleDashboardPage)
	mux.HandleFunc("GET /snapshots/{name}/{series}", s.HandleSnapshot)
	mux.HandleFunc("GET /live", s.hub.HandleLive)
	mux.HandleFunc("GET /{$}", s.HandleRoot)

	return mux
}
