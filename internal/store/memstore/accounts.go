// Package memstore keeps every repository in process memory. It backs the
// "memory" database driver and the tests.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/models"
)

// Partition stores the accounts of one role. Records are copied in and out
// so callers never share memory with the store.
type Partition[T any, PT interface {
	*T
	models.Account
}] struct {
	role models.Role
	mu   sync.RWMutex
	rows map[string]T
}

func newPartition[T any, PT interface {
	*T
	models.Account
}](role models.Role) *Partition[T, PT] {
	return &Partition[T, PT]{role: role, rows: make(map[string]T)}
}

// NewPatients, NewDoctors and NewHospitals build empty partitions.
func NewPatients() *Partition[models.Patient, *models.Patient] {
	return newPartition[models.Patient, *models.Patient](models.RolePatient)
}

func NewDoctors() *Partition[models.Doctor, *models.Doctor] {
	return newPartition[models.Doctor, *models.Doctor](models.RoleDoctor)
}

func NewHospitals() *Partition[models.Hospital, *models.Hospital] {
	return newPartition[models.Hospital, *models.Hospital](models.RoleHospital)
}

func (p *Partition[T, PT]) Role() models.Role { return p.role }

func (p *Partition[T, PT]) cast(account models.Account) (PT, error) {
	v, ok := account.(PT)
	if !ok {
		var zero PT
		return zero, fmt.Errorf("%w: %T cannot be stored as %s", models.ErrInvalidRole, account, p.role)
	}
	return v, nil
}

func (p *Partition[T, PT]) Create(_ context.Context, account models.Account) error {
	v, err := p.cast(account)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	base := v.Base()
	base.EnsureID()
	for id, row := range p.rows {
		if PT(&row).Base().Email == base.Email && id != base.ID {
			return models.ErrDuplicateEmail
		}
	}
	p.rows[base.ID] = *v
	return nil
}

func (p *Partition[T, PT]) FindByID(_ context.Context, id string) (models.Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	row, ok := p.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return PT(&row), nil
}

func (p *Partition[T, PT]) FindByEmail(_ context.Context, email string) (models.Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, row := range p.rows {
		row := row
		if PT(&row).Base().Email == email {
			return PT(&row), nil
		}
	}
	return nil, models.ErrNotFound
}

func (p *Partition[T, PT]) Save(_ context.Context, account models.Account) error {
	v, err := p.cast(account)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := v.Base().ID
	if _, ok := p.rows[id]; !ok {
		return models.ErrNotFound
	}
	p.rows[id] = *v
	return nil
}

func (p *Partition[T, PT]) List(_ context.Context, q accounts.Query) ([]models.Account, int64, error) {
	matched := p.match(q.Filter)
	accounts.SortAccounts(matched, q.Sort)
	return accounts.Page(matched, q.Limit, q.Offset), int64(len(matched)), nil
}

func (p *Partition[T, PT]) Count(_ context.Context, f accounts.Filter) (int64, error) {
	return int64(len(p.match(f))), nil
}

func (p *Partition[T, PT]) match(f accounts.Filter) []models.Account {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Account, 0, len(p.rows))
	for _, row := range p.rows {
		row := row
		if f.Match(PT(&row)) {
			out = append(out, PT(&row))
		}
	}
	return out
}
