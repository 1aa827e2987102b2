package accounts

import (
	"time"

	"medconnect-server/internal/models"
	"medconnect-server/internal/utils"
)

// ProfileUpdate is a partial update of an account. Nil fields are left
// untouched, and fields that do not belong to the account's role are ignored.
type ProfileUpdate struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,min=7,max=20"`
	Address        *string `json:"address" validate:"omitempty,max=255"`
	ProfilePicture *string `json:"profilePicture"`

	// Patient
	DateOfBirth      *string                  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender           *string                  `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	BloodGroup       *string                  `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Height           *float64                 `json:"height" validate:"omitempty,gte=0"`
	Weight           *float64                 `json:"weight" validate:"omitempty,gte=0"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
	MedicalInfo      *models.MedicalInfo      `json:"medicalInfo"`

	// Doctor
	Specialization      *string  `json:"specialization" validate:"omitempty,min=2"`
	Qualification       *string  `json:"qualification"`
	LicenseNumber       *string  `json:"licenseNumber"`
	Experience          *int     `json:"experience" validate:"omitempty,gte=0"`
	HospitalAffiliation *string  `json:"hospitalAffiliation"`
	ConsultationFee     *float64 `json:"consultationFee" validate:"omitempty,gte=0"`
	AvailableHours      *string  `json:"availableHours"`
	Department          *string  `json:"department" validate:"omitempty,min=2"`
	IsAvailable         *bool    `json:"isAvailable"`

	// Hospital
	HospitalName         *string                `json:"hospitalName" validate:"omitempty,min=2"`
	RegistrationNumber   *string                `json:"registrationNumber" validate:"omitempty,min=2"`
	Description          *string                `json:"description"`
	Facilities           []string               `json:"facilities"`
	Departments          []string               `json:"departments"`
	OperatingHours       map[string]interface{} `json:"operatingHours"`
	Logo                 *string                `json:"logo"`
	CoverPhoto           *string                `json:"coverPhoto"`
	EmergencyPhoneNumber *string                `json:"emergencyPhoneNumber"`
	Website              *string                `json:"website" validate:"omitempty,url"`
	City                 *string                `json:"city"`
	State                *string                `json:"state"`
	ZipCode              *string                `json:"zipCode"`
	BedCount             *int                   `json:"bedCount" validate:"omitempty,gte=0"`
	ICUBedCount          *int                   `json:"icuBedCount" validate:"omitempty,gte=0"`
	EmergencyBedCount    *int                   `json:"emergencyBedCount" validate:"omitempty,gte=0"`
	IsOpen               *bool                  `json:"isOpen"`
	HasEmergency         *bool                  `json:"hasEmergency"`
	Is24x7               *bool                  `json:"is24x7"`
	Type                 *string                `json:"type"`
	Accreditations       []string               `json:"accreditations"`
	Images               []string               `json:"images"`
}

// Apply validates the update and writes it onto account. It is meant to be
// used as the mutate function of Resolver.UpdateByID.
func (u ProfileUpdate) Apply(account models.Account) error {
	if err := utils.Validate(u); err != nil {
		return err
	}

	base := account.Base()
	set(&base.Name, u.Name)
	set(&base.Email, u.Email)
	set(&base.PhoneNumber, u.PhoneNumber)
	set(&base.Address, u.Address)
	set(&base.ProfilePicture, u.ProfilePicture)

	switch a := account.(type) {
	case *models.Patient:
		if u.DateOfBirth != nil {
			dob, err := time.Parse(time.DateOnly, *u.DateOfBirth)
			if err != nil {
				return models.NewValidationError("dateOfBirth", "must be a date formatted as 2006-01-02")
			}
			a.DateOfBirth = &dob
		}
		if u.Gender != nil {
			a.Gender = models.Gender(*u.Gender)
		}
		set(&a.BloodGroup, u.BloodGroup)
		set(&a.Height, u.Height)
		set(&a.Weight, u.Weight)
		set(&a.EmergencyContact, u.EmergencyContact)
		set(&a.MedicalInfo, u.MedicalInfo)
	case *models.Doctor:
		set(&a.Specialization, u.Specialization)
		set(&a.Qualification, u.Qualification)
		set(&a.LicenseNumber, u.LicenseNumber)
		set(&a.Experience, u.Experience)
		set(&a.HospitalAffiliation, u.HospitalAffiliation)
		set(&a.ConsultationFee, u.ConsultationFee)
		set(&a.AvailableHours, u.AvailableHours)
		set(&a.Department, u.Department)
		set(&a.IsAvailable, u.IsAvailable)
	case *models.Hospital:
		set(&a.HospitalName, u.HospitalName)
		set(&a.RegistrationNumber, u.RegistrationNumber)
		set(&a.Description, u.Description)
		set(&a.Logo, u.Logo)
		set(&a.CoverPhoto, u.CoverPhoto)
		set(&a.EmergencyPhoneNumber, u.EmergencyPhoneNumber)
		set(&a.Website, u.Website)
		set(&a.City, u.City)
		set(&a.State, u.State)
		set(&a.ZipCode, u.ZipCode)
		set(&a.BedCount, u.BedCount)
		set(&a.ICUBedCount, u.ICUBedCount)
		set(&a.EmergencyBedCount, u.EmergencyBedCount)
		set(&a.IsOpen, u.IsOpen)
		set(&a.HasEmergency, u.HasEmergency)
		set(&a.Is24x7, u.Is24x7)
		set(&a.Type, u.Type)
		if u.Facilities != nil {
			a.Facilities = u.Facilities
		}
		if u.Departments != nil {
			a.Departments = u.Departments
		}
		if u.OperatingHours != nil {
			a.OperatingHours = u.OperatingHours
		}
		if u.Accreditations != nil {
			a.Accreditations = u.Accreditations
		}
		if u.Images != nil {
			a.Images = u.Images
		}
	default:
		return models.ErrInvalidRole
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
