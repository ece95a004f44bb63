package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kavete/health-monitor/internal/config"
	"github.com/kavete/health-monitor/internal/ingest"
	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
	"github.com/kavete/health-monitor/internal/server"
	"github.com/kavete/health-monitor/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Global()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}
	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}
	if format, ok := logger.ParseFormat(cfg.LogFormat); ok {
		log.SetFormat(format)
	}

	log.Info("starting ward monitoring service", map[string]interface{}{
		"version":     config.GetVersion(),
		"port":        cfg.Port,
		"environment": cfg.Environment,
	})

	dashboards, err := config.LoadDashboards(cfg.DashboardsFile)
	if err != nil {
		log.Fatal("failed to load dashboards", err)
	}

	st := store.New(cfg.HistoryLimit)
	st.RegisterWard(models.Ward{
		Name: wardDisplayName(cfg.SensorWardSlug),
		Slug: cfg.SensorWardSlug,
	})
	st.RegisterPatient(models.Patient{
		ID:        cfg.SensorPatientID,
		Name:      "Monitored Patient",
		WardSlug:  cfg.SensorWardSlug,
		BedNumber: 1,
	})

	backup, err := ingest.NewCSVBackup(cfg.SensorLogDir, log.WithComponent("backup"))
	if err != nil {
		log.Warn("csv backup disabled", map[string]interface{}{"error": err.Error()})
		backup = nil
	}

	consumer := ingest.NewConsumer(ingest.Config{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
		WardSlug:  cfg.SensorWardSlug,
		PatientID: cfg.SensorPatientID,
	}, st, backup, log.WithComponent("ingest"))

	if cfg.SimulateSensors {
		sim := ingest.NewSimulator(consumer, time.Second, log.WithComponent("simulator"))
		go sim.Run(ctx)
	} else {
		if err := consumer.Start(); err != nil {
			// Paho reconnects on its own once the first connect succeeds.
			log.Warn("mqtt connect failed, sensor feed unavailable", map[string]interface{}{"error": err.Error()})
		}
		defer consumer.Stop()
	}

	srv, err := server.NewServer(cfg, dashboards, st, log)
	if err != nil {
		log.Fatal("failed to create server", err)
	}
	srv.RunSchedulers(ctx)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.SetupRoutes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown failed", err)
		}
	}()

	log.Info("listening", map[string]interface{}{"addr": httpServer.Addr})
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server failed", err)
	}
	log.Info("ward monitoring service stopped")
}

// wardDisplayName turns a slug like "icu-east" into "Icu East".
func wardDisplayName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
