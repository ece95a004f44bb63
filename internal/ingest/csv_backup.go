package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
)

// CSVBackup mirrors every committed reading and raw sensor sample to
// CSV files, one per kind, for offline analysis. Files get a header row
// on creation and are appended to afterwards.
type CSVBackup struct {
	mu  sync.Mutex
	dir string
	log *logger.Logger
}

const (
	wardCSV    = "ward_readings.csv"
	patientCSV = "patient_vitals.csv"
	rawCSV     = "raw_sensor_data.csv"
)

// NewCSVBackup creates the log directory and the three CSV files if
// they do not exist yet.
func NewCSVBackup(dir string, log *logger.Logger) (*CSVBackup, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sensor log dir: %w", err)
	}

	b := &CSVBackup{dir: dir, log: log}
	headers := map[string][]string{
		wardCSV:    {"timestamp", "ward", "temperature", "humidity", "noise_level", "light_intensity"},
		patientCSV: {"timestamp", "patient", "temperature", "heart_rate", "oxygen_saturation"},
		rawCSV:     {"timestamp", "topic", "value"},
	}
	for name, header := range headers {
		if err := b.ensureHeader(name, header); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *CSVBackup) ensureHeader(name string, header []string) error {
	path := filepath.Join(b.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", name, err)
	}
	w.Flush()
	return w.Error()
}

func (b *CSVBackup) appendRow(name string, row []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := filepath.Join(b.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		b.log.Error("csv backup write failed", err, map[string]interface{}{"file": name})
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		b.log.Error("csv backup write failed", err, map[string]interface{}{"file": name})
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		b.log.Error("csv backup flush failed", err, map[string]interface{}{"file": name})
	}
}

// LogWard appends one committed ward reading.
func (b *CSVBackup) LogWard(r models.WardReading) {
	light := ""
	if r.LightIntensity != nil {
		light = strconv.FormatFloat(*r.LightIntensity, 'f', -1, 64)
	}
	b.appendRow(wardCSV, []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.WardSlug,
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		strconv.FormatFloat(r.Humidity, 'f', -1, 64),
		strconv.FormatFloat(r.NoiseLevel, 'f', -1, 64),
		light,
	})
}

// LogPatient appends one committed vitals row.
func (b *CSVBackup) LogPatient(v models.PatientVitals) {
	b.appendRow(patientCSV, []string{
		v.Timestamp.UTC().Format(time.RFC3339),
		strconv.Itoa(v.PatientID),
		strconv.FormatFloat(v.Temperature, 'f', -1, 64),
		strconv.Itoa(v.HeartRate),
		strconv.FormatFloat(v.OxygenSaturation, 'f', -1, 64),
	})
}

// LogRaw appends one raw sensor sample as received off the wire.
func (b *CSVBackup) LogRaw(ts time.Time, topic string, value float64) {
	b.appendRow(rawCSV, []string{
		ts.UTC().Format(time.RFC3339),
		topic,
		strconv.FormatFloat(value, 'f', -1, 64),
	})
}
