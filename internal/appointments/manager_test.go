package appointments_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
	"medconnect-server/internal/store/memstore"
	"medconnect-server/internal/testutil"
)

type fixture struct {
	resolver *accounts.Resolver
	repo     *memstore.Appointments
	sender   *testutil.RecordingSender
	manager  *appointments.Manager
	clinic   testutil.Clinic
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		resolver: testutil.NewResolver(),
		repo:     memstore.NewAppointments(),
		sender:   &testutil.RecordingSender{},
	}
	f.clinic = testutil.SeedClinic(t, f.resolver, "t")
	f.manager = appointments.NewManager(f.repo, f.resolver, f.sender, zerolog.Nop())
	return f
}

func (f *fixture) book(t *testing.T) *models.Appointment {
	t.Helper()
	appt, err := f.manager.Book(context.Background(), appointments.BookingInput{
		PatientID:       f.clinic.Patient.ID,
		DoctorID:        f.clinic.Doctor.ID,
		HospitalID:      f.clinic.Hospital.ID,
		AppointmentDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "10:00 AM",
		Symptoms:        "chest pain",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	return appt
}

func TestBookDefaultsAndDenormalizes(t *testing.T) {
	f := setup(t)
	appt := f.book(t)

	if appt.Status != models.StatusPending || appt.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("status = %s/%s, want pending/unpaid", appt.Status, appt.PaymentStatus)
	}
	if appt.AppointmentType != models.TypeInPerson {
		t.Errorf("type = %q, want In-Person", appt.AppointmentType)
	}
	if appt.ConsultationFee != 500 {
		t.Errorf("fee = %v, want the doctor's fee", appt.ConsultationFee)
	}
	if appt.PatientName != f.clinic.Patient.Name || appt.DoctorName != f.clinic.Doctor.Name ||
		appt.HospitalName != f.clinic.Hospital.HospitalName || appt.Specialization != "Cardiology" {
		t.Errorf("display fields not copied: %+v", appt)
	}

	stored, err := f.manager.Get(context.Background(), appt.ID)
	if err != nil || stored.Version != 1 {
		t.Fatalf("Get = %+v, %v", stored, err)
	}

	f.manager.Wait()
	for _, id := range []string{f.clinic.Patient.ID, f.clinic.Doctor.ID, f.clinic.Hospital.ID} {
		msgs := f.sender.SentTo(id)
		if len(msgs) != 1 || msgs[0].Type != string(appointments.EventBooked) {
			t.Errorf("recipient %s got %+v, want one booking notification", id, msgs)
		}
	}
}

func TestBookRejectsDoctorFromAnotherHospital(t *testing.T) {
	f := setup(t)
	other := testutil.SeedClinic(t, f.resolver, "other")

	_, err := f.manager.Book(context.Background(), appointments.BookingInput{
		PatientID:       f.clinic.Patient.ID,
		DoctorID:        other.Doctor.ID,
		HospitalID:      f.clinic.Hospital.ID,
		AppointmentDate: time.Now().Add(24 * time.Hour),
		AppointmentTime: "09:00 AM",
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Book = %v, want *ValidationError", err)
	}
}

func TestBookUnknownDoctor(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Book(context.Background(), appointments.BookingInput{
		PatientID:       f.clinic.Patient.ID,
		DoctorID:        "missing",
		HospitalID:      f.clinic.Hospital.ID,
		AppointmentDate: time.Now(),
		AppointmentTime: "09:00 AM",
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Book = %v, want ErrNotFound", err)
	}
}

func TestCancelMapsCancelledBy(t *testing.T) {
	tests := []struct {
		by   appointments.CancelledBy
		want models.AppointmentStatus
	}{
		{appointments.CancelledByPatient, models.StatusCancelledByPatient},
		{appointments.CancelledByHospital, models.StatusCancelledByHospital},
	}
	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			f := setup(t)
			appt := f.book(t)

			got, err := f.manager.Cancel(context.Background(), appt.ID, tt.by, "  feeling better ")
			if err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
			if got.CancellationReason == nil || *got.CancellationReason != "feeling better" {
				t.Errorf("reason = %v", got.CancellationReason)
			}

			f.manager.Wait()
			if n := len(f.sender.SentTo(f.clinic.Doctor.ID)); n != 2 {
				t.Errorf("doctor got %d notifications, want booking and cancellation", n)
			}
		})
	}
}

func TestCancelRejectsUnknownParty(t *testing.T) {
	f := setup(t)
	appt := f.book(t)

	_, err := f.manager.Cancel(context.Background(), appt.ID, "doctor", "")
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "cancelledBy" {
		t.Fatalf("Cancel(doctor) = %v, want cancelledBy validation error", err)
	}

	stored, _ := f.manager.Get(context.Background(), appt.ID)
	if stored.Status != models.StatusPending {
		t.Errorf("status changed to %s", stored.Status)
	}
}

func TestTerminalStatesRejectConfirmAndCancel(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	appt := f.book(t)

	if _, err := f.manager.Complete(ctx, appt.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := f.manager.Confirm(ctx, appt.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Confirm completed = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.manager.Cancel(ctx, appt.ID, appointments.CancelledByPatient, ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Cancel completed = %v, want ErrInvalidTransition", err)
	}
}

func TestRescheduleAlwaysConfirms(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	appt := f.book(t)

	if _, err := f.manager.Cancel(ctx, appt.ID, appointments.CancelledByHospital, "doctor away"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	newDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := f.manager.Reschedule(ctx, appt.ID, newDate, "11:30 AM")
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if got.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", got.Status)
	}
	if got.CancellationReason != nil {
		t.Errorf("reason = %q, want cleared", *got.CancellationReason)
	}
	if !got.AppointmentDate.Equal(newDate) || got.AppointmentTime != "11:30 AM" {
		t.Errorf("date/time = %v %s", got.AppointmentDate, got.AppointmentTime)
	}

	if _, err := f.manager.Reschedule(ctx, appt.ID, time.Time{}, "11:30 AM"); err == nil {
		t.Error("Reschedule without a date accepted")
	}
}

func TestCompleteStampsCompletedAt(t *testing.T) {
	f := setup(t)
	appt := f.book(t)

	got, err := f.manager.Complete(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != models.StatusCompleted || got.CompletedAt == nil {
		t.Errorf("Complete = %s, completedAt %v", got.Status, got.CompletedAt)
	}
}

func TestMarkPaidConfirmsPending(t *testing.T) {
	f := setup(t)
	appt := f.book(t)

	got, err := f.manager.MarkPaid(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if got.PaymentStatus != models.PaymentPaid || got.Status != models.StatusConfirmed {
		t.Errorf("MarkPaid = %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	appt := f.book(t)

	stale, _ := f.repo.FindByID(ctx, appt.ID)
	if _, err := f.manager.Confirm(ctx, appt.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	stale.Status = models.StatusCancelledByPatient
	stale.Version++
	if err := f.repo.Update(ctx, stale, stale.Version-1); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("Update with stale version = %v, want ErrConflict", err)
	}

	stored, _ := f.manager.Get(ctx, appt.ID)
	if stored.Status != models.StatusConfirmed || stored.Version != 2 {
		t.Errorf("stored = %s v%d, want confirmed v2", stored.Status, stored.Version)
	}
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	f := setup(t)
	f.sender.Fail = map[string]bool{f.clinic.Patient.FCMToken: true}

	appt := f.book(t)
	if _, err := f.manager.Cancel(context.Background(), appt.ID, appointments.CancelledByPatient, ""); err != nil {
		t.Fatalf("Cancel with failing sender: %v", err)
	}
	f.manager.Wait()

	if n := len(f.sender.SentTo(f.clinic.Patient.ID)); n != 0 {
		t.Errorf("patient deliveries = %d, want 0", n)
	}
	if n := len(f.sender.SentTo(f.clinic.Doctor.ID)); n != 2 {
		t.Errorf("doctor deliveries = %d, want 2", n)
	}
}

func TestListAndUniquePatients(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	first := f.book(t)
	f.book(t)

	list, err := f.manager.List(ctx, appointments.Query{
		Filter: appointments.Filter{HospitalID: f.clinic.Hospital.ID},
		Sort:   appointments.SortCreatedDesc,
	})
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %d, %v", len(list), err)
	}

	unique := appointments.UniquePatients(list)
	if len(unique) != 1 || unique[0].ID != list[0].ID {
		t.Errorf("UniquePatients kept %+v, want the first listed appointment", unique)
	}

	if err := f.manager.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.manager.Get(ctx, first.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get deleted = %v, want ErrNotFound", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		ev     appointments.Event
		status models.AppointmentStatus
		want   bool
	}{
		{appointments.EventConfirmed, models.StatusPending, true},
		{appointments.EventConfirmed, models.StatusCancelledByPatient, false},
		{appointments.EventCancelled, models.StatusConfirmed, true},
		{appointments.EventCancelled, models.StatusCompleted, false},
		{appointments.EventRescheduled, models.StatusCompleted, true},
		{appointments.Event("unknown"), models.StatusPending, false},
	}
	for _, tt := range tests {
		if got := appointments.CanTransition(tt.ev, tt.status); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.ev, tt.status, got, tt.want)
		}
	}
}

func TestIsParticipant(t *testing.T) {
	appt := &models.Appointment{PatientID: "p", DoctorID: "d", HospitalID: "h"}
	if !appointments.IsParticipant(appt, models.RoleDoctor, "d") {
		t.Error("doctor not recognized")
	}
	if appointments.IsParticipant(appt, models.RolePatient, "d") {
		t.Error("doctor id accepted as patient")
	}
}
