package models

import (
	"encoding/json"
	"fmt"
)

// Canonical series names shared by chart-data payloads, dashboard
// bindings and the live update feed. The legacy "noise" key some older
// firmware dashboards emitted is accepted on decode but never produced.
const (
	SeriesHeartRate        = "heart_rate"
	SeriesTemperature      = "temperature"
	SeriesOxygenSaturation = "oxygen_saturation"
	SeriesHumidity         = "humidity"
	SeriesNoiseLevel       = "noise_level"
	SeriesLightIntensity   = "light_intensity"
)

// RefreshPayload is the normalized form of one chart-data response: a
// shared label axis plus one value sequence per series. A nil entry in a
// value sequence is an explicitly absent reading, kept in place so every
// sequence stays aligned with the labels.
type RefreshPayload struct {
	Labels []string
	Series map[string][]*float64
}

// VitalsChartData is the wire shape of a patient vitals chart-data
// response.
type VitalsChartData struct {
	Labels           []string   `json:"labels"`
	HeartRate        []*float64 `json:"heart_rate"`
	Temperature      []*float64 `json:"temperature"`
	OxygenSaturation []*float64 `json:"oxygen_saturation"`
}

// Validate checks that every series is aligned with the label axis.
func (d *VitalsChartData) Validate() error {
	return checkAligned(len(d.Labels), map[string]int{
		SeriesHeartRate:        len(d.HeartRate),
		SeriesTemperature:      len(d.Temperature),
		SeriesOxygenSaturation: len(d.OxygenSaturation),
	})
}

// Payload converts the wire shape into a RefreshPayload.
func (d *VitalsChartData) Payload() RefreshPayload {
	return RefreshPayload{
		Labels: d.Labels,
		Series: map[string][]*float64{
			SeriesHeartRate:        d.HeartRate,
			SeriesTemperature:      d.Temperature,
			SeriesOxygenSaturation: d.OxygenSaturation,
		},
	}
}

// WardTrendChartData is the wire shape of a per-ward environmental time
// series response.
type WardTrendChartData struct {
	Labels         []string   `json:"labels"`
	Temperature    []*float64 `json:"temperature"`
	Humidity       []*float64 `json:"humidity"`
	NoiseLevel     []*float64 `json:"noise_level"`
	LightIntensity []*float64 `json:"light_intensity"`
}

// UnmarshalJSON accepts the legacy "noise" key as an alias for
// "noise_level". When both are present the canonical key wins.
func (d *WardTrendChartData) UnmarshalJSON(data []byte) error {
	type alias WardTrendChartData
	aux := struct {
		*alias
		Noise []*float64 `json:"noise"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if d.NoiseLevel == nil && aux.Noise != nil {
		d.NoiseLevel = aux.Noise
	}
	return nil
}

// Validate checks that every series is aligned with the label axis.
func (d *WardTrendChartData) Validate() error {
	return checkAligned(len(d.Labels), map[string]int{
		SeriesTemperature:    len(d.Temperature),
		SeriesHumidity:       len(d.Humidity),
		SeriesNoiseLevel:     len(d.NoiseLevel),
		SeriesLightIntensity: len(d.LightIntensity),
	})
}

// Payload converts the wire shape into a RefreshPayload.
func (d *WardTrendChartData) Payload() RefreshPayload {
	return RefreshPayload{
		Labels: d.Labels,
		Series: map[string][]*float64{
			SeriesTemperature:    d.Temperature,
			SeriesHumidity:       d.Humidity,
			SeriesNoiseLevel:     d.NoiseLevel,
			SeriesLightIntensity: d.LightIntensity,
		},
	}
}

// WardSnapshotChartData is the wire shape of the cross-ward dashboard
// response: the latest reading per ward, keyed by ward name instead of
// time. Values are never absent here since wards without a current
// reading are omitted from the snapshot.
type WardSnapshotChartData struct {
	Wards          []string  `json:"wards"`
	Temperature    []float64 `json:"temperature"`
	Humidity       []float64 `json:"humidity"`
	NoiseLevel     []float64 `json:"noise_level"`
	LightIntensity []float64 `json:"light_intensity"`
}

// UnmarshalJSON accepts the legacy "noise" key as an alias for
// "noise_level".
func (d *WardSnapshotChartData) UnmarshalJSON(data []byte) error {
	type alias WardSnapshotChartData
	aux := struct {
		*alias
		Noise []float64 `json:"noise"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if d.NoiseLevel == nil && aux.Noise != nil {
		d.NoiseLevel = aux.Noise
	}
	return nil
}

// Validate checks that every series is aligned with the ward axis.
func (d *WardSnapshotChartData) Validate() error {
	return checkAligned(len(d.Wards), map[string]int{
		SeriesTemperature:    len(d.Temperature),
		SeriesHumidity:       len(d.Humidity),
		SeriesNoiseLevel:     len(d.NoiseLevel),
		SeriesLightIntensity: len(d.LightIntensity),
	})
}

// Payload converts the snapshot into a RefreshPayload, lifting plain
// values into the optional representation the chart manager consumes.
func (d *WardSnapshotChartData) Payload() RefreshPayload {
	lift := func(vs []float64) []*float64 {
		out := make([]*float64, len(vs))
		for i := range vs {
			v := vs[i]
			out[i] = &v
		}
		return out
	}
	return RefreshPayload{
		Labels: d.Wards,
		Series: map[string][]*float64{
			SeriesTemperature:    lift(d.Temperature),
			SeriesHumidity:       lift(d.Humidity),
			SeriesNoiseLevel:     lift(d.NoiseLevel),
			SeriesLightIntensity: lift(d.LightIntensity),
		},
	}
}

func checkAligned(labels int, series map[string]int) error {
	for name, n := range series {
		if n != labels {
			return fmt.Errorf("series %q has %d values for %d labels", name, n, labels)
		}
	}
	return nil
}
