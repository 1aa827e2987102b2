package mongostore

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
)

func TestAppointmentFilter(t *testing.T) {
	if got := appointmentFilter(appointments.Filter{}); len(got) != 0 {
		t.Errorf("empty filter = %v, want match-all", got)
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	notSent := false
	got := appointmentFilter(appointments.Filter{
		HospitalID:   "h1",
		Statuses:     []models.AppointmentStatus{models.StatusConfirmed},
		From:         &from,
		ReminderSent: &notSent,
	})

	if got["hospitalId"] != "h1" {
		t.Errorf("hospitalId = %v", got["hospitalId"])
	}
	if _, ok := got["patientId"]; ok {
		t.Error("unset patientId added to the filter")
	}
	status, ok := got["status"].(bson.M)
	if !ok || len(status["$in"].([]models.AppointmentStatus)) != 1 {
		t.Errorf("status = %v", got["status"])
	}
	date, ok := got["appointmentDate"].(bson.M)
	if !ok || date["$gte"] != from {
		t.Errorf("appointmentDate = %v", got["appointmentDate"])
	}
	if _, ok := date["$lte"]; ok {
		t.Error("upper bound added without To")
	}
	if got["reminderSent"] != false {
		t.Errorf("reminderSent = %v", got["reminderSent"])
	}
}

func TestVersionGuard(t *testing.T) {
	got := versionGuard("appt-1", 3)
	if got["_id"] != "appt-1" || got["version"] != 3 {
		t.Errorf("versionGuard = %v", got)
	}
}
