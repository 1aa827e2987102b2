package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending             AppointmentStatus = "pending"
	StatusConfirmed           AppointmentStatus = "confirmed"
	StatusCompleted           AppointmentStatus = "completed"
	StatusCancelledByPatient  AppointmentStatus = "cancelledByPatient"
	StatusCancelledByHospital AppointmentStatus = "cancelledByHospital"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelledByPatient, StatusCancelledByHospital:
		return true
	}
	return false
}

// AppointmentType is how the consultation takes place.
type AppointmentType string

const (
	TypeInPerson AppointmentType = "In-Person"
	TypeVideo    AppointmentType = "Video Consultation"
)

func (t AppointmentType) Valid() bool {
	return t == TypeInPerson || t == TypeVideo
}

// PaymentStatus of an appointment.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentUnpaid || p == PaymentPaid || p == PaymentRefunded
}

// Appointment links one patient, one doctor and one hospital. The display
// fields are copied at booking time and never re-synced.
type Appointment struct {
	BaseModel          `bson:",inline"`
	PatientID          string            `gorm:"size:36;index;not null" json:"patientId" bson:"patientId"`
	HospitalID         string            `gorm:"size:36;index;not null" json:"hospitalId" bson:"hospitalId"`
	DoctorID           string            `gorm:"size:36;index;not null" json:"doctorId" bson:"doctorId"`
	HospitalName       string            `gorm:"size:255" json:"hospitalName" bson:"hospitalName"`
	HospitalAddress    string            `gorm:"size:255" json:"hospitalAddress" bson:"hospitalAddress"`
	DoctorName         string            `gorm:"size:100" json:"doctorName" bson:"doctorName"`
	Specialization     string            `gorm:"size:100" json:"specialization" bson:"specialization"`
	PatientName        string            `gorm:"size:100" json:"patientName" bson:"patientName"`
	PatientPhone       string            `gorm:"size:20" json:"patientPhone" bson:"patientPhone"`
	AppointmentDate    time.Time         `gorm:"index;not null" json:"appointmentDate" bson:"appointmentDate"`
	AppointmentTime    string            `gorm:"size:20" json:"appointmentTime" bson:"appointmentTime"`
	AppointmentType    AppointmentType   `gorm:"size:32;default:'In-Person'" json:"appointmentType" bson:"appointmentType"`
	Status             AppointmentStatus `gorm:"size:32;index;default:'pending'" json:"status" bson:"status"`
	CancellationReason *string           `gorm:"size:500" json:"cancellationReason" bson:"cancellationReason"`
	PaymentStatus      PaymentStatus     `gorm:"size:16;default:'unpaid'" json:"paymentStatus" bson:"paymentStatus"`
	ConsultationFee    float64           `json:"consultationFee" bson:"consultationFee"`
	IsFirstVisit       bool              `json:"isFirstVisit" bson:"isFirstVisit"`
	Symptoms           string            `gorm:"type:text" json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	CompletedAt        *time.Time        `json:"completedAt" bson:"completedAt"`
	ReminderSent       bool              `gorm:"index" json:"reminderSent" bson:"reminderSent"`
	// Version increments on every write and guards concurrent transitions.
	Version int `gorm:"not null;default:1" json:"version" bson:"version"`
}
