package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
)

// Appointments is a gorm appointments.Repository.
type Appointments struct {
	DB *gorm.DB
}

func NewAppointments(db *gorm.DB) *Appointments {
	return &Appointments{DB: db}
}

func (s *Appointments) Create(ctx context.Context, appt *models.Appointment) error {
	return s.DB.WithContext(ctx).Create(appt).Error
}

func (s *Appointments) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *Appointments) List(ctx context.Context, q appointments.Query) ([]models.Appointment, error) {
	db := s.DB.WithContext(ctx).Model(&models.Appointment{})
	f := q.Filter
	if f.PatientID != "" {
		db = db.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		db = db.Where("doctor_id = ?", f.DoctorID)
	}
	if f.HospitalID != "" {
		db = db.Where("hospital_id = ?", f.HospitalID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if f.From != nil {
		db = db.Where("appointment_date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("appointment_date <= ?", *f.To)
	}
	if f.ReminderSent != nil {
		db = db.Where("reminder_sent = ?", *f.ReminderSent)
	}

	if q.Sort == appointments.SortCreatedDesc {
		db = db.Order("created_at DESC")
	} else {
		db = db.Order("appointment_date ASC")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var list []models.Appointment
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Appointments) Update(ctx context.Context, appt *models.Appointment, expectedVersion int) error {
	res := s.DB.WithContext(ctx).
		Model(appt).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(appt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", appt.ID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrConflict
}

func (s *Appointments) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Appointment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
