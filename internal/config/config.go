package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the ward monitoring service.
type Config struct {
	// Server configuration
	Port    string `env:"PORT,default=8799"`
	BaseURL string `env:"BASE_URL,default=http://127.0.0.1:8799"`

	// Dashboard bindings file
	DashboardsFile string `env:"DASHBOARDS_FILE,default=dashboards.yaml"`

	// Sensor feed configuration
	MQTTBrokerURL   string `env:"MQTT_BROKER_URL,default=tcp://127.0.0.1:1883"`
	MQTTClientID    string `env:"MQTT_CLIENT_ID,default=health-monitor"`
	SensorWardSlug  string `env:"SENSOR_WARD_SLUG,default=general"`
	SensorPatientID int    `env:"SENSOR_PATIENT_ID,default=2"`
	SimulateSensors bool   `env:"SIMULATE_SENSORS,default=false"`
	SensorLogDir    string `env:"SENSOR_LOG_DIR,default=./sensor_logs"`

	// Refresh loop configuration
	HistoryLimit           int           `env:"HISTORY_LIMIT,default=50"`
	FetchTimeout           time.Duration `env:"FETCH_TIMEOUT,default=1500ms"`
	MaxConsecutiveFailures int           `env:"MAX_CONSECUTIVE_FAILURES,default=3"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// Load reads configuration from the environment, after loading a .env
// file when one is present.
func Load(ctx context.Context) (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
