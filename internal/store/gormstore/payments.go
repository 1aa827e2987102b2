package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medconnect-server/internal/models"
)

// Payments is a gorm payments.Repository.
type Payments struct {
	DB *gorm.DB
}

func NewPayments(db *gorm.DB) *Payments {
	return &Payments{DB: db}
}

func (s *Payments) Create(ctx context.Context, p *models.Payment) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *Payments) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Payments) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return s.first(ctx, "order_id = ?", orderID)
}

func (s *Payments) first(ctx context.Context, query string, arg interface{}) (*models.Payment, error) {
	var p models.Payment
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Payments) ListByPatient(ctx context.Context, patientID string) ([]models.Payment, error) {
	var list []models.Payment
	err := s.DB.WithContext(ctx).Where("patient_id = ?", patientID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (s *Payments) Save(ctx context.Context, p *models.Payment) error {
	return s.DB.WithContext(ctx).Save(p).Error
}
