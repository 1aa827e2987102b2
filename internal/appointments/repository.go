package appointments

import (
	"context"
	"sort"
	"time"

	"medconnect-server/internal/models"
)

// RecentLimit caps the "recent" listings.
const RecentLimit = 20

// Repository persists appointments.
type Repository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	// FindByID returns models.ErrNotFound on a miss.
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, q Query) ([]models.Appointment, error)
	// Update writes appt only if the stored version still equals
	// expectedVersion, returning models.ErrConflict otherwise. appt.Version
	// must already hold the new version.
	Update(ctx context.Context, appt *models.Appointment, expectedVersion int) error
	Delete(ctx context.Context, id string) error
}

// Sort orders appointment listings.
type Sort int

const (
	// SortDateAsc orders by appointment date, earliest first.
	SortDateAsc Sort = iota
	// SortCreatedDesc orders by booking time, newest first.
	SortCreatedDesc
)

// Filter narrows appointment listings. Zero fields match everything.
type Filter struct {
	PatientID    string
	DoctorID     string
	HospitalID   string
	Statuses     []models.AppointmentStatus
	From         *time.Time
	To           *time.Time
	ReminderSent *bool
}

type Query struct {
	Filter Filter
	Sort   Sort
	Limit  int
}

// Recent returns a query for the newest bookings matching f.
func Recent(f Filter) Query {
	return Query{Filter: f, Sort: SortCreatedDesc, Limit: RecentLimit}
}

// Match reports whether appt satisfies the filter.
func (f Filter) Match(appt *models.Appointment) bool {
	if f.PatientID != "" && appt.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && appt.DoctorID != f.DoctorID {
		return false
	}
	if f.HospitalID != "" && appt.HospitalID != f.HospitalID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if appt.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && appt.AppointmentDate.Before(*f.From) {
		return false
	}
	if f.To != nil && appt.AppointmentDate.After(*f.To) {
		return false
	}
	if f.ReminderSent != nil && appt.ReminderSent != *f.ReminderSent {
		return false
	}
	return true
}

// SortAppointments orders list in place.
func SortAppointments(list []models.Appointment, s Sort) {
	sort.SliceStable(list, func(i, j int) bool {
		if s == SortCreatedDesc {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].AppointmentDate.Before(list[j].AppointmentDate)
	})
}

// UniquePatients keeps the first appointment of every patient, preserving
// the order of list.
func UniquePatients(list []models.Appointment) []models.Appointment {
	seen := make(map[string]struct{}, len(list))
	out := make([]models.Appointment, 0, len(list))
	for _, appt := range list {
		if _, ok := seen[appt.PatientID]; ok {
			continue
		}
		seen[appt.PatientID] = struct{}{}
		out = append(out, appt)
	}
	return out
}

// IsParticipant reports whether the account id with role is the patient,
// doctor or hospital of appt.
func IsParticipant(appt *models.Appointment, role models.Role, id string) bool {
	switch role {
	case models.RolePatient:
		return appt.PatientID == id
	case models.RoleDoctor:
		return appt.DoctorID == id
	case models.RoleHospital:
		return appt.HospitalID == id
	}
	return false
}
