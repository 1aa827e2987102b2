// Package gormstore implements the repositories on a SQL database through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/models"
)

// Partition stores the accounts of one role in that role's table.
type Partition[T any, PT interface {
	*T
	models.Account
}] struct {
	DB   *gorm.DB
	role models.Role
}

func NewPatients(db *gorm.DB) *Partition[models.Patient, *models.Patient] {
	return &Partition[models.Patient, *models.Patient]{DB: db, role: models.RolePatient}
}

func NewDoctors(db *gorm.DB) *Partition[models.Doctor, *models.Doctor] {
	return &Partition[models.Doctor, *models.Doctor]{DB: db, role: models.RoleDoctor}
}

func NewHospitals(db *gorm.DB) *Partition[models.Hospital, *models.Hospital] {
	return &Partition[models.Hospital, *models.Hospital]{DB: db, role: models.RoleHospital}
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

func (p *Partition[T, PT]) Create(ctx context.Context, account models.Account) error {
	v, err := p.cast(account)
	if err != nil {
		return err
	}
	if err := p.DB.WithContext(ctx).Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (p *Partition[T, PT]) FindByID(ctx context.Context, id string) (models.Account, error) {
	return p.first(ctx, "id = ?", id)
}

func (p *Partition[T, PT]) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return p.first(ctx, "email = ?", email)
}

func (p *Partition[T, PT]) first(ctx context.Context, query string, arg interface{}) (models.Account, error) {
	var row T
	if err := p.DB.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return PT(&row), nil
}

func (p *Partition[T, PT]) Save(ctx context.Context, account models.Account) error {
	v, err := p.cast(account)
	if err != nil {
		return err
	}
	if err := p.DB.WithContext(ctx).Save(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (p *Partition[T, PT]) List(ctx context.Context, q accounts.Query) ([]models.Account, int64, error) {
	db := applyAccountFilter(p.DB.WithContext(ctx).Model(new(T)), p.role, q.Filter)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(accountOrder(p.role, q.Sort))
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}

	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]models.Account, 0, len(rows))
	for i := range rows {
		out = append(out, PT(&rows[i]))
	}
	return out, total, nil
}

func (p *Partition[T, PT]) Count(ctx context.Context, f accounts.Filter) (int64, error) {
	var total int64
	err := applyAccountFilter(p.DB.WithContext(ctx).Model(new(T)), p.role, f).Count(&total).Error
	return total, err
}

func applyAccountFilter(db *gorm.DB, role models.Role, f accounts.Filter) *gorm.DB {
	if len(f.IDs) > 0 {
		db = db.Where("id IN ?", f.IDs)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.IsVerified != nil {
		db = db.Where("is_verified = ?", *f.IsVerified)
	}

	like := "%" + strings.ToLower(f.Search) + "%"
	searchCols := []string{"LOWER(name) LIKE @q", "email LIKE @q"}

	switch role {
	case models.RoleDoctor:
		if f.HospitalID != "" {
			db = db.Where("hospital_id = ?", f.HospitalID)
		}
		if f.Specialization != "" {
			db = db.Where("LOWER(specialization) = ?", strings.ToLower(f.Specialization))
		}
		if f.Department != "" {
			db = db.Where("LOWER(department) = ?", strings.ToLower(f.Department))
		}
		if f.MinRating != nil {
			db = db.Where("rating >= ?", *f.MinRating)
		}
		searchCols = append(searchCols, "LOWER(specialization) LIKE @q")
	case models.RoleHospital:
		if f.Type != "" {
			db = db.Where("LOWER(type) = ?", strings.ToLower(f.Type))
		}
		if f.City != "" {
			db = db.Where("LOWER(city) = ?", strings.ToLower(f.City))
		}
		if f.State != "" {
			db = db.Where("LOWER(state) = ?", strings.ToLower(f.State))
		}
		if f.Is24x7 != nil {
			db = db.Where("is24x7 = ?", *f.Is24x7)
		}
		if f.MinRating != nil {
			db = db.Where("rating >= ?", *f.MinRating)
		}
		searchCols = append(searchCols, "LOWER(hospital_name) LIKE @q", "LOWER(city) LIKE @q")
	}

	if f.Search != "" {
		db = db.Where("("+strings.Join(searchCols, " OR ")+")", map[string]interface{}{"q": like})
	}
	return db
}

func accountOrder(role models.Role, s accounts.Sort) string {
	switch s {
	case accounts.SortRatingDesc:
		if role != models.RolePatient {
			return "rating IS NULL, rating DESC, created_at DESC"
		}
	case accounts.SortNameAsc:
		return "name ASC"
	}
	return "created_at DESC"
}
