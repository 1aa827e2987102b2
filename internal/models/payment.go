package models

type PaymentRecordStatus string

const (
	PaymentCreated    PaymentRecordStatus = "created"
	PaymentAuthorized PaymentRecordStatus = "authorized"
	PaymentCaptured   PaymentRecordStatus = "captured"
	PaymentRefund     PaymentRecordStatus = "refunded"
	PaymentFailed     PaymentRecordStatus = "failed"
)

// Payment is one gateway order and what became of it.
type Payment struct {
	BaseModel        `bson:",inline"`
	PatientID        string              `gorm:"size:36;index;not null" json:"patientId" bson:"patientId"`
	AppointmentID    *string             `gorm:"size:36;index" json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	OrderID          string              `gorm:"size:64;uniqueIndex;not null" json:"orderId" bson:"orderId"`
	GatewayPaymentID string              `gorm:"size:64" json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	Signature        string              `gorm:"size:128" json:"-" bson:"signature,omitempty"`
	Amount           float64             `json:"amount" bson:"amount"`
	Currency         string              `gorm:"size:3;default:'INR'" json:"currency" bson:"currency"`
	Status           PaymentRecordStatus `gorm:"size:16;default:'created'" json:"status" bson:"status"`
	PaymentMethod    string              `gorm:"size:16" json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	RefundID         string              `gorm:"size:64" json:"refundId,omitempty" bson:"refundId,omitempty"`
	RefundAmount     float64             `json:"refundAmount,omitempty" bson:"refundAmount,omitempty"`
	RefundReason     string              `gorm:"size:255" json:"refundReason,omitempty" bson:"refundReason,omitempty"`
}
