package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"medconnect-server/internal/models"
)

// Resolver finds, updates and deletes accounts without the caller knowing
// which partition backs an identity. When a role is known it goes straight
// to that partition; otherwise it probes patient, doctor, hospital in order.
type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Store returns the underlying Account Store.
func (r *Resolver) Store() *Store { return r.store }

// FindByID looks an account up by id. role may be empty.
func (r *Resolver) FindByID(ctx context.Context, id string, role models.Role) (models.Account, error) {
	return r.find(ctx, role, func(p Partition) (models.Account, error) {
		return p.FindByID(ctx, id)
	}, "account "+id)
}

// FindByEmail looks an account up by case-insensitive email. role may be empty.
func (r *Resolver) FindByEmail(ctx context.Context, email string, role models.Role) (models.Account, error) {
	email = models.NormalizeEmail(email)
	return r.find(ctx, role, func(p Partition) (models.Account, error) {
		return p.FindByEmail(ctx, email)
	}, "account with email "+email)
}

func (r *Resolver) find(ctx context.Context, role models.Role, lookup func(Partition) (models.Account, error), what string) (models.Account, error) {
	role, err := models.ParseRole(string(role))
	if err != nil {
		return nil, err
	}
	roles := models.Roles
	if role != "" {
		roles = []models.Role{role}
	}
	for _, candidate := range roles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		account, err := lookup(r.store.partitions[candidate])
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return account, nil
	}
	return nil, fmt.Errorf("%s: %w", what, models.ErrNotFound)
}

// UpdateByID applies mutate to the account and saves it. The role tag is
// restored after mutate runs, and a changed email must still be unique
// across every partition.
func (r *Resolver) UpdateByID(ctx context.Context, id string, role models.Role, mutate func(models.Account) error) (models.Account, error) {
	account, err := r.FindByID(ctx, id, role)
	if err != nil {
		return nil, err
	}
	base := account.Base()
	originalRole, originalEmail := base.Role, base.Email

	if err := mutate(account); err != nil {
		return nil, err
	}

	base.Role = originalRole
	base.ID = id
	base.Email = models.NormalizeEmail(base.Email)
	if base.Email != originalEmail {
		if err := r.store.ensureEmailFree(ctx, base.Email, id); err != nil {
			return nil, err
		}
	}
	base.Touch(r.store.now())

	if err := r.store.partitions[originalRole].Save(ctx, account); err != nil {
		return nil, fmt.Errorf("save %s %s: %w", originalRole, id, err)
	}
	return account, nil
}

// DeleteByID deactivates an account. Accounts are never removed from storage.
func (r *Resolver) DeleteByID(ctx context.Context, id string, role models.Role) (models.Account, error) {
	account, err := r.UpdateByID(ctx, id, role, func(a models.Account) error {
		a.Base().IsActive = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.store.log.Info().Str("account_id", id).Str("role", string(account.Base().Role)).Msg("account deactivated")
	return account, nil
}

// GetUserData returns the role view of account, or nil for a nil account.
func (r *Resolver) GetUserData(account models.Account) any {
	switch a := account.(type) {
	case *models.Patient:
		if a == nil {
			return nil
		}
	case *models.Doctor:
		if a == nil {
			return nil
		}
	case *models.Hospital:
		if a == nil {
			return nil
		}
	case nil:
		return nil
	}
	return r.store.RoleView(account)
}

// FindByRole lists accounts of a single role.
func (r *Resolver) FindByRole(ctx context.Context, role models.Role, q Query) ([]models.Account, int64, error) {
	p, err := r.store.Partition(role)
	if err != nil {
		return nil, 0, err
	}
	return p.List(ctx, q)
}

// FindAll lists matching accounts from every partition, queried
// concurrently, merged and then sorted and paged as one list.
func (r *Resolver) FindAll(ctx context.Context, q Query) ([]models.Account, int64, error) {
	type result struct {
		accounts []models.Account
		err      error
	}
	results := make([]result, len(models.Roles))
	inner := Query{Filter: q.Filter, Sort: q.Sort}

	var wg sync.WaitGroup
	for i, role := range models.Roles {
		wg.Add(1)
		go func(i int, p Partition) {
			defer wg.Done()
			list, _, err := p.List(ctx, inner)
			results[i] = result{accounts: list, err: err}
		}(i, r.store.partitions[role])
	}
	wg.Wait()

	var all []models.Account
	for _, res := range results {
		if res.err != nil {
			return nil, 0, res.err
		}
		all = append(all, res.accounts...)
	}
	SortAccounts(all, q.Sort)
	return Page(all, q.Limit, q.Offset), int64(len(all)), nil
}

// Count returns the number of accounts per role matching f.
func (r *Resolver) Count(ctx context.Context, f Filter) (map[models.Role]int64, error) {
	counts := make(map[models.Role]int64, len(models.Roles))
	for _, role := range models.Roles {
		n, err := r.store.partitions[role].Count(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", role, err)
		}
		counts[role] = n
	}
	return counts, nil
}

// IsPatient reports whether a is a patient account.
func IsPatient(a models.Account) bool {
	_, ok := a.(*models.Patient)
	return ok
}

func IsDoctor(a models.Account) bool {
	_, ok := a.(*models.Doctor)
	return ok
}

func IsHospital(a models.Account) bool {
	_, ok := a.(*models.Hospital)
	return ok
}
