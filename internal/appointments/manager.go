// Package appointments manages bookings and their status lifecycle.
package appointments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/models"
	"medconnect-server/internal/notify"
	"medconnect-server/internal/utils"
)

const defaultNotifyTimeout = 10 * time.Second

// BookingInput describes a new appointment.
type BookingInput struct {
	PatientID       string                 `json:"patientId" validate:"required"`
	DoctorID        string                 `json:"doctorId" validate:"required"`
	HospitalID      string                 `json:"hospitalId" validate:"required"`
	AppointmentDate time.Time              `json:"appointmentDate" validate:"required"`
	AppointmentTime string                 `json:"appointmentTime" validate:"required,max=20"`
	AppointmentType models.AppointmentType `json:"appointmentType" validate:"omitempty,oneof=In-Person 'Video Consultation'"`
	Symptoms        string                 `json:"symptoms" validate:"max=2000"`
	IsFirstVisit    bool                   `json:"isFirstVisit"`
	ConsultationFee *float64               `json:"consultationFee" validate:"omitempty,gte=0"`
	PaymentStatus   models.PaymentStatus   `json:"paymentStatus" validate:"omitempty,oneof=unpaid paid refunded"`
}

// Patch updates the descriptive fields of an appointment. Status changes go
// through the lifecycle methods instead.
type Patch struct {
	AppointmentType *models.AppointmentType `json:"appointmentType" validate:"omitempty,oneof=In-Person 'Video Consultation'"`
	Symptoms        *string                 `json:"symptoms" validate:"omitempty,max=2000"`
	IsFirstVisit    *bool                   `json:"isFirstVisit"`
	ConsultationFee *float64                `json:"consultationFee" validate:"omitempty,gte=0"`
}

// Manager is the appointment lifecycle manager. Every write is committed
// before notifications go out, and notification failures are only logged.
type Manager struct {
	repo     Repository
	accounts *accounts.Resolver
	sender   notify.Sender
	log      zerolog.Logger

	// NotifyTimeout bounds one notification fan-out.
	NotifyTimeout time.Duration

	now      func() time.Time
	inflight sync.WaitGroup
}

func NewManager(repo Repository, resolver *accounts.Resolver, sender notify.Sender, logger zerolog.Logger) *Manager {
	return &Manager{
		repo:          repo,
		accounts:      resolver,
		sender:        sender,
		log:           logger.With().Str("component", "appointments").Logger(),
		NotifyTimeout: defaultNotifyTimeout,
		now:           time.Now,
	}
}

// Book creates a pending appointment after resolving the patient, doctor and
// hospital and copying their display fields.
func (m *Manager) Book(ctx context.Context, in BookingInput) (*models.Appointment, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	patientAcct, err := m.accounts.FindByID(ctx, in.PatientID, models.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("patient: %w", err)
	}
	doctorAcct, err := m.accounts.FindByID(ctx, in.DoctorID, models.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}
	hospitalAcct, err := m.accounts.FindByID(ctx, in.HospitalID, models.RoleHospital)
	if err != nil {
		return nil, fmt.Errorf("hospital: %w", err)
	}
	patient := patientAcct.(*models.Patient)
	doctor := doctorAcct.(*models.Doctor)
	hospital := hospitalAcct.(*models.Hospital)

	if doctor.HospitalID != hospital.ID {
		return nil, models.NewValidationError("doctorId", "does not belong to the selected hospital")
	}
	if !patient.IsActive || !doctor.IsActive || !hospital.IsActive {
		return nil, models.NewValidationError("appointment", "patient, doctor and hospital must all be active")
	}

	appt := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		HospitalID:      hospital.ID,
		HospitalName:    hospital.DisplayName(),
		HospitalAddress: hospital.Address,
		DoctorName:      doctor.Name,
		Specialization:  doctor.Specialization,
		PatientName:     patient.Name,
		PatientPhone:    patient.PhoneNumber,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: strings.TrimSpace(in.AppointmentTime),
		AppointmentType: in.AppointmentType,
		Status:          models.StatusPending,
		PaymentStatus:   in.PaymentStatus,
		ConsultationFee: doctor.ConsultationFee,
		IsFirstVisit:    in.IsFirstVisit,
		Symptoms:        in.Symptoms,
		Version:         1,
	}
	if appt.AppointmentType == "" {
		appt.AppointmentType = models.TypeInPerson
	}
	if appt.PaymentStatus == "" {
		appt.PaymentStatus = models.PaymentUnpaid
	}
	if in.ConsultationFee != nil {
		appt.ConsultationFee = *in.ConsultationFee
	}
	appt.EnsureID()
	appt.Touch(m.now())

	if err := m.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	m.log.Info().Str("appointment_id", appt.ID).Str("patient_id", appt.PatientID).Str("doctor_id", appt.DoctorID).Msg("appointment booked")
	m.notifyAsync(EventBooked, *appt)
	return appt, nil
}

// Get returns one appointment.
func (m *Manager) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return m.repo.FindByID(ctx, id)
}

// List returns appointments matching q.
func (m *Manager) List(ctx context.Context, q Query) ([]models.Appointment, error) {
	return m.repo.List(ctx, q)
}

// Confirm moves a pending or confirmed appointment to confirmed.
func (m *Manager) Confirm(ctx context.Context, id string) (*models.Appointment, error) {
	return m.transition(ctx, id, EventConfirmed, func(a *models.Appointment) error {
		a.Status = models.StatusConfirmed
		return nil
	})
}

// Cancel cancels a pending or confirmed appointment on behalf of the patient
// or the hospital.
func (m *Manager) Cancel(ctx context.Context, id string, by CancelledBy, reason string) (*models.Appointment, error) {
	status, err := by.Status()
	if err != nil {
		return nil, err
	}
	return m.transition(ctx, id, EventCancelled, func(a *models.Appointment) error {
		a.Status = status
		if reason = strings.TrimSpace(reason); reason != "" {
			a.CancellationReason = &reason
		} else {
			a.CancellationReason = nil
		}
		return nil
	})
}

// Reschedule moves an appointment to a new date and time. Whatever the prior
// status, the appointment ends up confirmed with no cancellation reason.
func (m *Manager) Reschedule(ctx context.Context, id string, date time.Time, timeOfDay string) (*models.Appointment, error) {
	timeOfDay = strings.TrimSpace(timeOfDay)
	if date.IsZero() {
		return nil, models.NewValidationError("appointmentDate", "is required")
	}
	if timeOfDay == "" {
		return nil, models.NewValidationError("appointmentTime", "is required")
	}
	return m.transition(ctx, id, EventRescheduled, func(a *models.Appointment) error {
		a.AppointmentDate = date
		a.AppointmentTime = timeOfDay
		a.Status = models.StatusConfirmed
		a.CancellationReason = nil
		a.ReminderSent = false
		return nil
	})
}

// Complete marks an appointment completed and stamps the completion time.
func (m *Manager) Complete(ctx context.Context, id string) (*models.Appointment, error) {
	return m.transition(ctx, id, EventCompleted, func(a *models.Appointment) error {
		now := m.now()
		a.Status = models.StatusCompleted
		a.CompletedAt = &now
		return nil
	})
}

// MarkPaid records a captured payment. A pending appointment becomes confirmed.
func (m *Manager) MarkPaid(ctx context.Context, id string) (*models.Appointment, error) {
	return m.transition(ctx, id, EventPaid, func(a *models.Appointment) error {
		a.PaymentStatus = models.PaymentPaid
		if a.Status == models.StatusPending {
			a.Status = models.StatusConfirmed
		}
		return nil
	})
}

// MarkRefunded records a refunded payment.
func (m *Manager) MarkRefunded(ctx context.Context, id string) (*models.Appointment, error) {
	return m.transition(ctx, id, EventRefunded, func(a *models.Appointment) error {
		a.PaymentStatus = models.PaymentRefunded
		return nil
	})
}

// MarkReminderSent flags that the upcoming-appointment reminder went out.
func (m *Manager) MarkReminderSent(ctx context.Context, id string) error {
	_, err := m.write(ctx, id, func(a *models.Appointment) error {
		a.ReminderSent = true
		return nil
	})
	return err
}

// Update applies a patch to the descriptive fields of an appointment.
func (m *Manager) Update(ctx context.Context, id string, p Patch) (*models.Appointment, error) {
	if err := utils.Validate(p); err != nil {
		return nil, err
	}
	return m.write(ctx, id, func(a *models.Appointment) error {
		if p.AppointmentType != nil {
			a.AppointmentType = *p.AppointmentType
		}
		if p.Symptoms != nil {
			a.Symptoms = *p.Symptoms
		}
		if p.IsFirstVisit != nil {
			a.IsFirstVisit = *p.IsFirstVisit
		}
		if p.ConsultationFee != nil {
			a.ConsultationFee = *p.ConsultationFee
		}
		return nil
	})
}

// Delete removes an appointment permanently.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	m.log.Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}

// Wait blocks until every in-flight notification fan-out has finished.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

func (m *Manager) transition(ctx context.Context, id string, ev Event, mutate func(*models.Appointment) error) (*models.Appointment, error) {
	var from models.AppointmentStatus
	appt, err := m.write(ctx, id, func(a *models.Appointment) error {
		from = a.Status
		if !rules[ev].allows(a.Status) {
			return fmt.Errorf("%w: cannot apply %s to a %s appointment", models.ErrInvalidTransition, ev, a.Status)
		}
		return mutate(a)
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().
		Str("appointment_id", appt.ID).
		Str("event", string(ev)).
		Str("from", string(from)).
		Str("to", string(appt.Status)).
		Msg("appointment updated")
	m.notifyAsync(ev, *appt)
	return appt, nil
}

// write loads, mutates and saves an appointment under the version guard.
func (m *Manager) write(ctx context.Context, id string, mutate func(*models.Appointment) error) (*models.Appointment, error) {
	appt, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := appt.Version
	if err := mutate(appt); err != nil {
		return nil, err
	}
	appt.Version = expected + 1
	appt.UpdatedAt = m.now()
	if err := m.repo.Update(ctx, appt, expected); err != nil {
		return nil, err
	}
	return appt, nil
}

// notifyAsync resolves the recipients of ev and sends to each of them in the
// background. The caller's context is not used: the request may already be
// finished when delivery happens.
func (m *Manager) notifyAsync(ev Event, appt models.Appointment) {
	r, ok := rules[ev]
	if !ok || m.sender == nil {
		return
	}

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.NotifyTimeout)
		defer cancel()

		msgs := make([]notify.Message, 0, len(r.notify))
		for _, p := range r.notify {
			id, role := recipientID(p, &appt)
			account, err := m.accounts.FindByID(ctx, id, role)
			if err != nil {
				m.log.Warn().Err(err).Str("event", string(ev)).Str("recipient_id", id).Msg("notification recipient lookup failed")
				continue
			}
			title, body := message(ev, p, &appt)
			msgs = append(msgs, notify.Message{
				RecipientID: id,
				Token:       account.Base().FCMToken,
				Title:       title,
				Body:        body,
				Type:        string(ev),
				Data:        map[string]string{"appointmentId": appt.ID, "status": string(appt.Status)},
			})
		}

		notify.LogOutcomes(m.log, string(ev), notify.Dispatch(ctx, m.sender, msgs))
	}()
}
