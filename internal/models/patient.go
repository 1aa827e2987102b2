package models

import "time"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// EmergencyContact is the person to call for a patient.
type EmergencyContact struct {
	Name  string `gorm:"size:100" json:"name,omitempty" bson:"name,omitempty"`
	Phone string `gorm:"size:20" json:"phone,omitempty" bson:"phone,omitempty"`
}

// MedicalInfo carries the patient's self-reported history.
type MedicalInfo struct {
	Allergies   []string `gorm:"serializer:json" json:"allergies" bson:"allergies"`
	Medications []string `gorm:"serializer:json" json:"medications" bson:"medications"`
	Conditions  []string `gorm:"serializer:json" json:"conditions" bson:"conditions"`
}

// Patient is an account that books appointments.
type Patient struct {
	BaseAccount      `bson:",inline"`
	DateOfBirth      *time.Time       `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Gender           Gender           `gorm:"size:10" json:"gender,omitempty" bson:"gender,omitempty"`
	BloodGroup       string           `gorm:"size:3" json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty"`
	Height           float64          `json:"height,omitempty" bson:"height,omitempty"`
	Weight           float64          `json:"weight,omitempty" bson:"weight,omitempty"`
	EmergencyContact EmergencyContact `gorm:"embedded;embeddedPrefix:emergency_" json:"emergencyContact" bson:"emergencyContact"`
	MedicalInfo      MedicalInfo      `gorm:"embedded;embeddedPrefix:medical_" json:"medicalInfo" bson:"medicalInfo"`
}

func (Patient) TableName() string { return "patients" }

// PatientView is the response shape of a patient.
type PatientView struct {
	BaseView
	DateOfBirth      *time.Time       `json:"dateOfBirth,omitempty"`
	Age              *int             `json:"age,omitempty"`
	Gender           Gender           `json:"gender,omitempty"`
	BloodGroup       string           `json:"bloodGroup,omitempty"`
	Height           float64          `json:"height,omitempty"`
	Weight           float64          `json:"weight,omitempty"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	MedicalInfo      MedicalInfo      `json:"medicalInfo"`
}

func (p *Patient) account() {}

func (p *Patient) RoleView() any {
	return PatientView{
		BaseView:         p.BaseView(),
		DateOfBirth:      p.DateOfBirth,
		Age:              p.Age(time.Now()),
		Gender:           p.Gender,
		BloodGroup:       p.BloodGroup,
		Height:           p.Height,
		Weight:           p.Weight,
		EmergencyContact: p.EmergencyContact,
		MedicalInfo:      p.MedicalInfo,
	}
}

// Age returns the patient's age in whole years at now, or nil when the date
// of birth is unknown.
func (p *Patient) Age(now time.Time) *int {
	if p.DateOfBirth == nil || p.DateOfBirth.IsZero() {
		return nil
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}
