// Package jobs holds the background work scheduled next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
	"medconnect-server/internal/notify"
)

// AppointmentReminder pushes a reminder to patients shortly before a
// confirmed appointment.
type AppointmentReminder struct {
	Lifecycle *appointments.Manager
	Accounts  *accounts.Resolver
	Sender    notify.Sender
	// Window is how far ahead of now an appointment gets its reminder.
	Window time.Duration
	Log    zerolog.Logger

	now func() time.Time
}

// NewAppointmentReminder creates a new appointment reminder service
func NewAppointmentReminder(lifecycle *appointments.Manager, resolver *accounts.Resolver, sender notify.Sender, window time.Duration, logger zerolog.Logger) *AppointmentReminder {
	return &AppointmentReminder{
		Lifecycle: lifecycle,
		Accounts:  resolver,
		Sender:    sender,
		Window:    window,
		Log:       logger.With().Str("component", "reminder").Logger(),
		now:       time.Now,
	}
}

// Start schedules the reminder sweep every interval and returns the running
// scheduler. Stop it on shutdown.
func (r *AppointmentReminder) Start(interval time.Duration, timeout time.Duration) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.Log.Error().Err(err).Msg("appointment reminder sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule appointment reminders: %w", err)
	}

	scheduler.StartAsync()
	r.Log.Info().Dur("interval", interval).Dur("window", r.Window).Msg("appointment reminder job started")
	return scheduler, nil
}

// RunOnce sends reminders for confirmed appointments starting within the
// window that have not had one yet. It returns how many were sent. A failure
// on one appointment is logged and the sweep moves on.
func (r *AppointmentReminder) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	until := now.Add(r.Window)
	notSent := false

	due, err := r.Lifecycle.List(ctx, appointments.Query{
		Filter: appointments.Filter{
			Statuses:     []models.AppointmentStatus{models.StatusConfirmed},
			From:         &now,
			To:           &until,
			ReminderSent: &notSent,
		},
		Sort: appointments.SortDateAsc,
	})
	if err != nil {
		return 0, fmt.Errorf("query upcoming appointments: %w", err)
	}

	sent := 0
	for _, appt := range due {
		log := r.Log.With().Str("appointment_id", appt.ID).Str("patient_id", appt.PatientID).Logger()

		patient, err := r.Accounts.FindByID(ctx, appt.PatientID, models.RolePatient)
		if err != nil {
			log.Warn().Err(err).Msg("reminder patient lookup failed")
			continue
		}
		token := patient.Base().FCMToken
		if token == "" {
			continue
		}

		err = r.Sender.Send(ctx, notify.Message{
			RecipientID: appt.PatientID,
			Token:       token,
			Title:       "Appointment Reminder",
			Body:        fmt.Sprintf("You have an appointment at %s with Dr. %s. Please arrive 5 to 10 minutes early. Thank you!", appt.AppointmentTime, appt.DoctorName),
			Type:        "appointment_reminder",
			Data:        map[string]string{"appointmentId": appt.ID},
		})
		if err != nil {
			log.Warn().Err(err).Msg("reminder delivery failed")
			continue
		}

		if err := r.Lifecycle.MarkReminderSent(ctx, appt.ID); err != nil {
			log.Error().Err(err).Msg("failed to mark reminder as sent")
			continue
		}
		sent++
	}

	if sent > 0 {
		r.Log.Info().Int("sent", sent).Int("due", len(due)).Msg("appointment reminders sent")
	}
	return sent, nil
}
