package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"patient", RolePatient, false},
		{" Doctor ", RoleDoctor, false},
		{"HOSPITAL", RoleHospital, false},
		{"", "", false},
		{"admin", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%q) error = %v, want ErrInvalidRole", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	var u BaseAccount
	if _, err := u.CheckPassword("anything"); !errors.Is(err, ErrNoSecretSet) {
		t.Fatalf("CheckPassword without hash: got %v, want ErrNoSecretSet", err)
	}

	if err := u.SetPassword("s3cret!"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.Password == "s3cret!" {
		t.Fatal("password stored in plain text")
	}

	ok, err := u.CheckPassword("s3cret!")
	if err != nil || !ok {
		t.Fatalf("CheckPassword(correct) = %v, %v", ok, err)
	}
	ok, err = u.CheckPassword("wrong")
	if err != nil || ok {
		t.Fatalf("CheckPassword(wrong) = %v, %v", ok, err)
	}
}

func TestRoleViewHidesSecrets(t *testing.T) {
	p := &Patient{BaseAccount: BaseAccount{
		Name:     "Asha",
		Email:    "asha@example.com",
		Role:     RolePatient,
		Password: "bcrypt-hash-value",
		FCMToken: "device-token",
		IsActive: true,
	}}

	for _, v := range []any{p, p.RoleView()} {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		s := string(raw)
		if strings.Contains(s, "bcrypt-hash-value") || strings.Contains(s, "device-token") {
			t.Errorf("serialized account leaks secrets: %s", s)
		}
	}
}

func TestPatientAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		dob  *time.Time
		want *int
	}{
		{"unknown", nil, nil},
		{"birthday passed", ptr(time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC)), ptr(34)},
		{"birthday today", ptr(time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)), ptr(34)},
		{"birthday ahead", ptr(time.Date(1990, 12, 1, 0, 0, 0, 0, time.UTC)), ptr(33)},
		{"future date", ptr(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&Patient{DateOfBirth: tt.dob}).Age(now)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("Age = %d, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Fatalf("Age = %v, want %d", got, *tt.want)
			}
		})
	}
}

func TestHospitalDisplayName(t *testing.T) {
	h := &Hospital{BaseAccount: BaseAccount{Name: "Owner"}}
	if h.DisplayName() != "Owner" {
		t.Errorf("DisplayName without hospital name = %q", h.DisplayName())
	}
	h.HospitalName = "City Care"
	if h.DisplayName() != "City Care" {
		t.Errorf("DisplayName = %q, want City Care", h.DisplayName())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("cancelledBy", "must be either 'patient' or 'hospital'")
	want := "validation failed: cancelledBy must be either 'patient' or 'hospital'"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func ptr[T any](v T) *T { return &v }
