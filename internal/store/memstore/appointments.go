package memstore

import (
	"context"
	"sync"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
)

// Appointments is an in-memory appointments.Repository.
type Appointments struct {
	mu   sync.RWMutex
	rows map[string]models.Appointment
}

func NewAppointments() *Appointments {
	return &Appointments{rows: make(map[string]models.Appointment)}
}

func (s *Appointments) Create(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt.EnsureID()
	if appt.Version == 0 {
		appt.Version = 1
	}
	s.rows[appt.ID] = *appt
	return nil
}

func (s *Appointments) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &row, nil
}

func (s *Appointments) List(_ context.Context, q appointments.Query) ([]models.Appointment, error) {
	s.mu.RLock()
	out := make([]models.Appointment, 0)
	for _, row := range s.rows {
		row := row
		if q.Filter.Match(&row) {
			out = append(out, row)
		}
	}
	s.mu.RUnlock()

	appointments.SortAppointments(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Appointments) Update(_ context.Context, appt *models.Appointment, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rows[appt.ID]
	if !ok {
		return models.ErrNotFound
	}
	if current.Version != expectedVersion {
		return models.ErrConflict
	}
	s.rows[appt.ID] = *appt
	return nil
}

func (s *Appointments) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}
