package models

import "time"

// Ward identifies a hospital ward monitored by the service.
type Ward struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Location string `json:"location,omitempty"`
}

// Patient identifies a monitored patient and the bed they occupy.
type Patient struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	WardSlug  string `json:"ward_slug"`
	BedNumber int    `json:"bed_number"`
}

// WardReading is one environmental sample for a ward. LightIntensity is
// optional because not every ward carries a light sensor.
type WardReading struct {
	WardSlug       string    `json:"ward_slug"`
	Temperature    float64   `json:"temperature"`
	Humidity       float64   `json:"humidity"`
	NoiseLevel     float64   `json:"noise_level"`
	LightIntensity *float64  `json:"light_intensity"`
	Timestamp      time.Time `json:"timestamp"`
}

// PatientVitals is one vital-signs sample for a patient.
type PatientVitals struct {
	PatientID        int       `json:"patient_id"`
	Temperature      float64   `json:"temperature"`
	HeartRate        int       `json:"heart_rate"`
	OxygenSaturation float64   `json:"oxygen_saturation"`
	Timestamp        time.Time `json:"timestamp"`
}
