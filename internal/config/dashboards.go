package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Dashboard variants. Each variant has its own chart-data payload shape
// and default polling interval.
const (
	VariantVitals       = "vitals"
	VariantWardTrend    = "ward-trend"
	VariantWardSnapshot = "ward-snapshot"
)

// ChartConfig declares one chart binding on a dashboard.
type ChartConfig struct {
	Series   string  `yaml:"series"`
	Surface  string  `yaml:"surface"`
	Title    string  `yaml:"title"`
	Unit     string  `yaml:"unit"`
	Axis     string  `yaml:"axis"` // "dynamic" (default) or "fixed"
	FloorPad float64 `yaml:"floor_pad"`
	Percent  bool    `yaml:"percent"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// DashboardConfig declares one dashboard: which chart-data path it
// polls, how often, and which charts it draws.
type DashboardConfig struct {
	Name     string        `yaml:"name"`
	Variant  string        `yaml:"variant"`
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"-"`
	Charts   []ChartConfig `yaml:"charts"`
}

// UnmarshalYAML decodes the dashboard, parsing the interval from a
// duration string like "3s".
func (d *DashboardConfig) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Name     string        `yaml:"name"`
		Variant  string        `yaml:"variant"`
		Path     string        `yaml:"path"`
		Interval string        `yaml:"interval"`
		Charts   []ChartConfig `yaml:"charts"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	d.Name = aux.Name
	d.Variant = aux.Variant
	d.Path = aux.Path
	d.Charts = aux.Charts
	if aux.Interval != "" {
		interval, err := time.ParseDuration(aux.Interval)
		if err != nil {
			return fmt.Errorf("dashboard %q has invalid interval %q: %w", aux.Name, aux.Interval, err)
		}
		d.Interval = interval
	}
	return nil
}

type dashboardsFile struct {
	Dashboards []DashboardConfig `yaml:"dashboards"`
}

// LoadDashboards reads dashboard declarations from a YAML file. When
// the file does not exist the built-in defaults are returned, so a bare
// checkout runs without any configuration.
func LoadDashboards(path string) ([]DashboardConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultDashboards(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboards file: %w", err)
	}

	var file dashboardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse dashboards file: %w", err)
	}
	if len(file.Dashboards) == 0 {
		return nil, fmt.Errorf("dashboards file %s declares no dashboards", path)
	}

	for i := range file.Dashboards {
		d := &file.Dashboards[i]
		if d.Interval <= 0 {
			d.Interval = defaultInterval(d.Variant)
		}
		switch d.Variant {
		case VariantVitals, VariantWardTrend, VariantWardSnapshot:
		default:
			return nil, fmt.Errorf("dashboard %q has unknown variant %q", d.Name, d.Variant)
		}
		if len(d.Charts) == 0 {
			return nil, fmt.Errorf("dashboard %q declares no charts", d.Name)
		}
	}
	return file.Dashboards, nil
}

// defaultInterval returns the polling interval for a variant: vitals
// poll fastest, the cross-ward snapshot slowest.
func defaultInterval(variant string) time.Duration {
	switch variant {
	case VariantVitals:
		return 2 * time.Second
	case VariantWardTrend:
		return 3 * time.Second
	default:
		return 5 * time.Second
	}
}

// DefaultDashboards returns the stock dashboard set: one patient vitals
// page, one ward trend page and the cross-ward overview.
func DefaultDashboards() []DashboardConfig {
	return []DashboardConfig{
		{
			Name:     "patient-vitals",
			Variant:  VariantVitals,
			Path:     "/patients/2/chart-data/",
			Interval: 2 * time.Second,
			Charts: []ChartConfig{
				{Series: "heart_rate", Surface: "chart-heart-rate", Title: "Heart Rate", Unit: "bpm", FloorPad: 2},
				{Series: "temperature", Surface: "chart-patient-temperature", Title: "Body Temperature", Unit: "°C", FloorPad: 0.5},
				{Series: "oxygen_saturation", Surface: "chart-oxygen-saturation", Title: "Oxygen Saturation", Unit: "%", FloorPad: 1, Percent: true},
			},
		},
		{
			Name:     "ward-trend",
			Variant:  VariantWardTrend,
			Path:     "/wards/general/chart-data/",
			Interval: 3 * time.Second,
			Charts: []ChartConfig{
				{Series: "temperature", Surface: "chart-ward-temperature", Title: "Ward Temperature", Unit: "°C", FloorPad: 0.5},
				{Series: "humidity", Surface: "chart-ward-humidity", Title: "Humidity", Unit: "%", FloorPad: 2, Percent: true},
				{Series: "noise_level", Surface: "chart-ward-noise", Title: "Noise Level", Unit: "dB", FloorPad: 2},
				{Series: "light_intensity", Surface: "chart-ward-light", Title: "Light Intensity", Unit: "lx", FloorPad: 10},
			},
		},
		{
			Name:     "ward-overview",
			Variant:  VariantWardSnapshot,
			Path:     "/dashboard/chart-data/",
			Interval: 5 * time.Second,
			Charts: []ChartConfig{
				{Series: "temperature", Surface: "overview-temperature", Title: "Temperature by Ward", Unit: "°C", FloorPad: 0.5},
				{Series: "humidity", Surface: "overview-humidity", Title: "Humidity by Ward", Unit: "%", FloorPad: 2, Percent: true},
				{Series: "noise_level", Surface: "overview-noise", Title: "Noise by Ward", Unit: "dB", FloorPad: 2},
				{Series: "light_intensity", Surface: "overview-light", Title: "Light by Ward", Unit: "lx", FloorPad: 10},
			},
		},
	}
}
