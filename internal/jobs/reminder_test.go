package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
	"medconnect-server/internal/store/memstore"
	"medconnect-server/internal/testutil"
)

func TestRunOnceSendsDueReminders(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

	r := testutil.NewResolver()
	clinic := testutil.SeedClinic(t, r, "rem")
	manager := appointments.NewManager(memstore.NewAppointments(), r, nil, zerolog.Nop())

	noToken, err := r.Store().Create(ctx, accounts.SignupInput{
		Name:        "Ravi",
		Email:       "ravi@example.com",
		Password:    testutil.Password,
		Role:        string(models.RolePatient),
		PhoneNumber: "9876500000",
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}

	book := func(patientID string, at time.Time, confirm bool) string {
		appt, err := manager.Book(ctx, appointments.BookingInput{
			PatientID:       patientID,
			DoctorID:        clinic.Doctor.ID,
			HospitalID:      clinic.Hospital.ID,
			AppointmentDate: at,
			AppointmentTime: at.Format("03:04 PM"),
		})
		if err != nil {
			t.Fatalf("Book: %v", err)
		}
		if confirm {
			if _, err := manager.Confirm(ctx, appt.ID); err != nil {
				t.Fatalf("Confirm: %v", err)
			}
		}
		return appt.ID
	}

	due := book(clinic.Patient.ID, now.Add(30*time.Minute), true)
	book(clinic.Patient.ID, now.Add(3*time.Hour), true)
	book(clinic.Patient.ID, now.Add(20*time.Minute), false)
	book(noToken.Base().ID, now.Add(40*time.Minute), true)

	sender := &testutil.RecordingSender{}
	reminder := NewAppointmentReminder(manager, r, sender, time.Hour, zerolog.Nop())
	reminder.now = func() time.Time { return now }

	sent, err := reminder.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	msgs := sender.Sent()
	if len(msgs) != 1 || msgs[0].Data["appointmentId"] != due || msgs[0].Type != "appointment_reminder" {
		t.Fatalf("messages = %+v", msgs)
	}

	appt, _ := manager.Get(ctx, due)
	if !appt.ReminderSent {
		t.Error("reminder not recorded on the appointment")
	}

	sent, err = reminder.RunOnce(ctx)
	if err != nil || sent != 0 {
		t.Errorf("second sweep sent %d, %v, want 0", sent, err)
	}
}

func TestRunOnceContinuesAfterDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

	r := testutil.NewResolver()
	clinic := testutil.SeedClinic(t, r, "fail")
	manager := appointments.NewManager(memstore.NewAppointments(), r, nil, zerolog.Nop())

	appt, err := manager.Book(ctx, appointments.BookingInput{
		PatientID:       clinic.Patient.ID,
		DoctorID:        clinic.Doctor.ID,
		HospitalID:      clinic.Hospital.ID,
		AppointmentDate: now.Add(10 * time.Minute),
		AppointmentTime: "09:10 AM",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := manager.Confirm(ctx, appt.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	sender := &testutil.RecordingSender{Fail: map[string]bool{clinic.Patient.FCMToken: true}}
	reminder := NewAppointmentReminder(manager, r, sender, time.Hour, zerolog.Nop())
	reminder.now = func() time.Time { return now }

	sent, err := reminder.RunOnce(ctx)
	if err != nil || sent != 0 {
		t.Fatalf("RunOnce = %d, %v", sent, err)
	}
	stored, _ := manager.Get(ctx, appt.ID)
	if stored.ReminderSent {
		t.Error("failed reminder marked as sent")
	}
}
