package memstore

import (
	"context"
	"sort"
	"sync"

	"medconnect-server/internal/models"
)

// Payments is an in-memory payments.Repository.
type Payments struct {
	mu   sync.RWMutex
	rows map[string]models.Payment
}

func NewPayments() *Payments {
	return &Payments{rows: make(map[string]models.Payment)}
}

func (s *Payments) Create(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.EnsureID()
	s.rows[p.ID] = *p
	return nil
}

func (s *Payments) FindByID(_ context.Context, id string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &row, nil
}

func (s *Payments) FindByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.OrderID == orderID {
			row := row
			return &row, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Payments) ListByPatient(_ context.Context, patientID string) ([]models.Payment, error) {
	s.mu.RLock()
	out := make([]models.Payment, 0)
	for _, row := range s.rows {
		if row.PatientID == patientID {
			out = append(out, row)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Payments) Save(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[p.ID]; !ok {
		return models.ErrNotFound
	}
	s.rows[p.ID] = *p
	return nil
}
