package store

import (
	"sort"
	"sync"

	"github.com/kavete/health-monitor/internal/models"
)

// Store is a bounded in-memory time-series store for ward readings and
// patient vitals. Each ward and patient keeps the most recent capacity
// samples; older samples are discarded as new ones arrive. Readings are
// kept in arrival order, which matches sensor timestamp order.
type Store struct {
	mu       sync.RWMutex
	capacity int

	wards    map[string]models.Ward
	patients map[int]models.Patient

	wardReadings  map[string][]models.WardReading
	patientVitals map[int][]models.PatientVitals
}

// New creates a store keeping at most capacity samples per ward and
// per patient.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = 50
	}
	return &Store{
		capacity:      capacity,
		wards:         make(map[string]models.Ward),
		patients:      make(map[int]models.Patient),
		wardReadings:  make(map[string][]models.WardReading),
		patientVitals: make(map[int][]models.PatientVitals),
	}
}

// RegisterWard adds or replaces a ward definition.
func (s *Store) RegisterWard(w models.Ward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wards[w.Slug] = w
}

// RegisterPatient adds or replaces a patient definition.
func (s *Store) RegisterPatient(p models.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
}

// Ward looks up a ward by slug.
func (s *Store) Ward(slug string) (models.Ward, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wards[slug]
	return w, ok
}

// Patient looks up a patient by id.
func (s *Store) Patient(id int) (models.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	return p, ok
}

// Wards returns all registered wards sorted by name.
func (s *Store) Wards() []models.Ward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ward, 0, len(s.wards))
	for _, w := range s.wards {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Patients returns all registered patients sorted by id.
func (s *Store) Patients() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddWardReading appends a reading to the ward's series, trimming the
// oldest sample once the capacity is exceeded.
func (s *Store) AddWardReading(r models.WardReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	series := append(s.wardReadings[r.WardSlug], r)
	if len(series) > s.capacity {
		series = series[len(series)-s.capacity:]
	}
	s.wardReadings[r.WardSlug] = series
}

// AddPatientVitals appends a vitals sample to the patient's series,
// trimming the oldest sample once the capacity is exceeded.
func (s *Store) AddPatientVitals(v models.PatientVitals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	series := append(s.patientVitals[v.PatientID], v)
	if len(series) > s.capacity {
		series = series[len(series)-s.capacity:]
	}
	s.patientVitals[v.PatientID] = series
}

// WardHistory returns up to n readings for a ward, oldest first.
func (s *Store) WardHistory(slug string, n int) []models.WardReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.wardReadings[slug]
	if n > 0 && len(series) > n {
		series = series[len(series)-n:]
	}
	out := make([]models.WardReading, len(series))
	copy(out, series)
	return out
}

// PatientHistory returns up to n vitals samples for a patient, oldest
// first.
func (s *Store) PatientHistory(id int, n int) []models.PatientVitals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.patientVitals[id]
	if n > 0 && len(series) > n {
		series = series[len(series)-n:]
	}
	out := make([]models.PatientVitals, len(series))
	copy(out, series)
	return out
}

// LatestPerWard returns the most recent reading for every ward that has
// one, ordered by ward name. Wards without readings are omitted.
func (s *Store) LatestPerWard() []models.WardReading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WardReading, 0, len(s.wardReadings))
	for _, series := range s.wardReadings {
		if len(series) == 0 {
			continue
		}
		out = append(out, series[len(series)-1])
	}
	sort.Slice(out, func(i, j int) bool {
		return s.wardName(out[i].WardSlug) < s.wardName(out[j].WardSlug)
	})
	return out
}

// wardName resolves a slug to its display name, falling back to the
// slug for unregistered wards. Callers must hold the lock.
func (s *Store) wardName(slug string) string {
	if w, ok := s.wards[slug]; ok {
		return w.Name
	}
	return slug
}

// WardName is the exported, locking variant of wardName.
func (s *Store) WardName(slug string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wardName(slug)
}
