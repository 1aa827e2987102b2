// Package accounts stores patients, doctors and hospitals in per-role
// partitions and resolves identities across them.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// SignupInput carries the attributes of a new account. Role-specific fields
// are ignored for other roles.
type SignupInput struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=patient doctor hospital"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,min=7,max=20"`
	Address         string `json:"address" validate:"max=255"`
	ProfilePicture  string `json:"profilePicture"`

	// Patient
	DateOfBirth      string                  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender           string                  `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	BloodGroup       string                  `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Height           float64                 `json:"height" validate:"gte=0"`
	Weight           float64                 `json:"weight" validate:"gte=0"`
	EmergencyContact models.EmergencyContact `json:"emergencyContact"`
	MedicalInfo      models.MedicalInfo      `json:"medicalInfo"`

	// Doctor
	HospitalID          string  `json:"hospitalId" validate:"required_if=Role doctor"`
	Specialization      string  `json:"specialization" validate:"required_if=Role doctor"`
	Qualification       string  `json:"qualification" validate:"required_if=Role doctor"`
	Department          string  `json:"department" validate:"required_if=Role doctor"`
	LicenseNumber       string  `json:"licenseNumber"`
	Experience          int     `json:"experience" validate:"gte=0"`
	HospitalAffiliation string  `json:"hospitalAffiliation"`
	ConsultationFee     float64 `json:"consultationFee" validate:"gte=0"`
	AvailableHours      string  `json:"availableHours"`

	// Hospital
	HospitalName         string                 `json:"hospitalName" validate:"required_if=Role hospital"`
	RegistrationNumber   string                 `json:"registrationNumber" validate:"required_if=Role hospital"`
	Description          string                 `json:"description"`
	Facilities           []string               `json:"facilities"`
	Departments          []string               `json:"departments"`
	OperatingHours       map[string]interface{} `json:"operatingHours"`
	EmergencyPhoneNumber string                 `json:"emergencyPhoneNumber"`
	Website              string                 `json:"website" validate:"omitempty,url"`
	City                 string                 `json:"city"`
	State                string                 `json:"state"`
	ZipCode              string                 `json:"zipCode"`
	BedCount             int                    `json:"bedCount" validate:"gte=0"`
	ICUBedCount          int                    `json:"icuBedCount" validate:"gte=0"`
	EmergencyBedCount    int                    `json:"emergencyBedCount" validate:"gte=0"`
	HasEmergency         bool                   `json:"hasEmergency"`
	Is24x7               bool                   `json:"is24x7"`
	Type                 string                 `json:"type"`
}

// Store is the Account Store: one Partition per role sharing the base-field
// contract and a single email namespace.
type Store struct {
	partitions map[models.Role]Partition
	log        zerolog.Logger
	now        func() time.Time
}

// NewStore wires the three role partitions.
func NewStore(patients, doctors, hospitals Partition, logger zerolog.Logger) *Store {
	return &Store{
		partitions: map[models.Role]Partition{
			models.RolePatient:  patients,
			models.RoleDoctor:   doctors,
			models.RoleHospital: hospitals,
		},
		log: logger.With().Str("component", "accounts").Logger(),
		now: time.Now,
	}
}

// Partition returns the storage for role.
func (s *Store) Partition(role models.Role) (Partition, error) {
	p, ok := s.partitions[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidRole, role)
	}
	return p, nil
}

// Create validates the input, hashes the password and persists a new account
// in the partition chosen by its role.
func (s *Store) Create(ctx context.Context, in SignupInput) (models.Account, error) {
	in.Email = models.NormalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.Name = strings.TrimSpace(in.Name)

	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	partition, err := s.Partition(role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	if role == models.RoleDoctor {
		if _, err := s.partitions[models.RoleHospital].FindByID(ctx, in.HospitalID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NewValidationError("hospitalId", "does not reference an existing hospital")
			}
			return nil, err
		}
	}

	account, err := buildAccount(role, in)
	if err != nil {
		return nil, err
	}

	base := account.Base()
	if err := base.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	base.EnsureID()
	base.Touch(s.now())

	if err := partition.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create %s: %w", role, err)
	}

	s.log.Info().Str("account_id", base.ID).Str("role", string(role)).Msg("account created")
	return account, nil
}

// VerifySecret compares a candidate password with the stored hash.
func (s *Store) VerifySecret(account models.Account, candidate string) (bool, error) {
	return account.Base().CheckPassword(candidate)
}

// RoleView projects an account into its response shape.
func (s *Store) RoleView(account models.Account) any {
	return account.RoleView()
}

// ensureEmailFree fails with models.ErrDuplicateEmail when any partition
// holds the email under an id other than exceptID.
func (s *Store) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	for _, role := range models.Roles {
		existing, err := s.partitions[role].FindByEmail(ctx, email)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if existing.Base().ID != exceptID {
			return models.ErrDuplicateEmail
		}
	}
	return nil
}

func buildAccount(role models.Role, in SignupInput) (models.Account, error) {
	base := models.BaseAccount{
		Name:           in.Name,
		Email:          in.Email,
		Role:           role,
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		Address:        in.Address,
		ProfilePicture: in.ProfilePicture,
		IsActive:       true,
	}

	switch role {
	case models.RolePatient:
		p := &models.Patient{
			BaseAccount:      base,
			Gender:           models.Gender(in.Gender),
			BloodGroup:       in.BloodGroup,
			Height:           in.Height,
			Weight:           in.Weight,
			EmergencyContact: in.EmergencyContact,
			MedicalInfo:      in.MedicalInfo,
		}
		if in.DateOfBirth != "" {
			dob, err := time.Parse(time.DateOnly, in.DateOfBirth)
			if err != nil {
				return nil, models.NewValidationError("dateOfBirth", "must be a date formatted as 2006-01-02")
			}
			p.DateOfBirth = &dob
		}
		return p, nil
	case models.RoleDoctor:
		return &models.Doctor{
			BaseAccount:         base,
			HospitalID:          in.HospitalID,
			Specialization:      in.Specialization,
			Qualification:       in.Qualification,
			LicenseNumber:       in.LicenseNumber,
			Experience:          in.Experience,
			HospitalAffiliation: in.HospitalAffiliation,
			ConsultationFee:     in.ConsultationFee,
			AvailableHours:      in.AvailableHours,
			Department:          in.Department,
			IsAvailable:         true,
		}, nil
	case models.RoleHospital:
		return &models.Hospital{
			BaseAccount:          base,
			HospitalName:         in.HospitalName,
			RegistrationNumber:   in.RegistrationNumber,
			Description:          in.Description,
			Facilities:           in.Facilities,
			Departments:          in.Departments,
			OperatingHours:       in.OperatingHours,
			EmergencyPhoneNumber: in.EmergencyPhoneNumber,
			Website:              in.Website,
			City:                 in.City,
			State:                in.State,
			ZipCode:              in.ZipCode,
			BedCount:             in.BedCount,
			ICUBedCount:          in.ICUBedCount,
			EmergencyBedCount:    in.EmergencyBedCount,
			IsOpen:               true,
			HasEmergency:         in.HasEmergency,
			Is24x7:               in.Is24x7,
			Type:                 in.Type,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrInvalidRole, role)
}
