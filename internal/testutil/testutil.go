// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/models"
	"medconnect-server/internal/notify"
	"medconnect-server/internal/store/memstore"
)

// Password is the password of every seeded account.
const Password = "secret123"

// NewResolver returns a resolver over empty in-memory partitions.
func NewResolver() *accounts.Resolver {
	store := accounts.NewStore(memstore.NewPatients(), memstore.NewDoctors(), memstore.NewHospitals(), zerolog.Nop())
	return accounts.NewResolver(store)
}

// Clinic is one hospital with one doctor and one patient.
type Clinic struct {
	Patient  *models.Patient
	Doctor   *models.Doctor
	Hospital *models.Hospital
}

// SeedClinic creates a hospital, a doctor working there and a patient. Every
// account gets a device token named after its role.
func SeedClinic(t testing.TB, r *accounts.Resolver, prefix string) Clinic {
	t.Helper()
	ctx := context.Background()

	hospital := create(t, r, accounts.SignupInput{
		Name:               "Admin " + prefix,
		Email:              prefix + "-hospital@example.com",
		Password:           Password,
		Role:               string(models.RoleHospital),
		PhoneNumber:        "0801234567",
		Address:            "1 MG Road",
		HospitalName:       "City Care " + prefix,
		RegistrationNumber: "REG-" + prefix,
		City:               "Pune",
	})
	doctor := create(t, r, accounts.SignupInput{
		Name:            "Dr. Mehta " + prefix,
		Email:           prefix + "-doctor@example.com",
		Password:        Password,
		Role:            string(models.RoleDoctor),
		PhoneNumber:     "9000000001",
		HospitalID:      hospital.Base().ID,
		Specialization:  "Cardiology",
		Qualification:   "MD",
		Department:      "Cardiology",
		ConsultationFee: 500,
	})
	patient := create(t, r, accounts.SignupInput{
		Name:        "Asha " + prefix,
		Email:       prefix + "-patient@example.com",
		Password:    Password,
		Role:        string(models.RolePatient),
		PhoneNumber: "9876543210",
	})

	for _, a := range []models.Account{hospital, doctor, patient} {
		role := a.Base().Role
		_, err := r.UpdateByID(ctx, a.Base().ID, role, func(acc models.Account) error {
			acc.Base().FCMToken = prefix + "-" + string(role) + "-token"
			return nil
		})
		if err != nil {
			t.Fatalf("set device token: %v", err)
		}
	}

	return Clinic{
		Patient:  reload(t, r, patient).(*models.Patient),
		Doctor:   reload(t, r, doctor).(*models.Doctor),
		Hospital: reload(t, r, hospital).(*models.Hospital),
	}
}

func create(t testing.TB, r *accounts.Resolver, in accounts.SignupInput) models.Account {
	t.Helper()
	a, err := r.Store().Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create %s %s: %v", in.Role, in.Email, err)
	}
	return a
}

func reload(t testing.TB, r *accounts.Resolver, a models.Account) models.Account {
	t.Helper()
	got, err := r.FindByID(context.Background(), a.Base().ID, a.Base().Role)
	if err != nil {
		t.Fatalf("reload %s: %v", a.Base().ID, err)
	}
	return got
}

// ErrDeliveryFailed is what RecordingSender returns for failing tokens.
var ErrDeliveryFailed = errors.New("delivery failed")

// RecordingSender records every delivered message. Sends to a token listed
// in Fail return ErrDeliveryFailed instead.
type RecordingSender struct {
	Fail map[string]bool

	mu   sync.Mutex
	sent []notify.Message
}

func (s *RecordingSender) Send(_ context.Context, msg notify.Message) error {
	if s.Fail[msg.Token] {
		return ErrDeliveryFailed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (s *RecordingSender) Sent() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Message(nil), s.sent...)
}

// SentTo returns the delivered messages for one recipient.
func (s *RecordingSender) SentTo(recipientID string) []notify.Message {
	var out []notify.Message
	for _, m := range s.Sent() {
		if m.RecipientID == recipientID {
			out = append(out, m)
		}
	}
	return out
}
