// Package payments creates gateway orders for appointments, verifies
// completed checkouts and issues refunds.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
)

const currencyINR = "INR"

// Repository persists payment records.
type Repository interface {
	Create(ctx context.Context, p *models.Payment) error
	// FindByID and FindByOrderID return models.ErrNotFound on a miss.
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	// ListByPatient returns the patient's payments, newest first.
	ListByPatient(ctx context.Context, patientID string) ([]models.Payment, error)
	Save(ctx context.Context, p *models.Payment) error
}

// VerifyInput is the checkout result posted back by the client.
type VerifyInput struct {
	OrderID       string `json:"razorpay_order_id" binding:"required"`
	PaymentID     string `json:"razorpay_payment_id" binding:"required"`
	Signature     string `json:"razorpay_signature" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"omitempty,oneof=card upi netbanking wallet"`
}

// Service ties the gateway, the payment records and the appointment
// lifecycle together.
type Service struct {
	repo      Repository
	gateway   Gateway
	lifecycle *appointments.Manager
	keyID     string
	keySecret string
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, gateway Gateway, lifecycle *appointments.Manager, keyID, keySecret string, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		lifecycle: lifecycle,
		keyID:     keyID,
		keySecret: keySecret,
		log:       logger.With().Str("component", "payments").Logger(),
		now:       time.Now,
	}
}

// KeyID is the public gateway key the client needs to open checkout.
func (s *Service) KeyID() string { return s.keyID }

// CreateOrder opens a gateway order for amount rupees and records it.
func (s *Service) CreateOrder(ctx context.Context, patientID string, amount float64, appointmentID string) (*models.Payment, Order, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, Order{}, models.NewValidationError("amount", "must be greater than 0")
	}

	var apptRef *string
	if appointmentID = strings.TrimSpace(appointmentID); appointmentID != "" {
		appt, err := s.lifecycle.Get(ctx, appointmentID)
		if err != nil {
			return nil, Order{}, err
		}
		if appt.PatientID != patientID {
			return nil, Order{}, fmt.Errorf("appointment %s: %w", appointmentID, models.ErrForbidden)
		}
		apptRef = &appointmentID
	}

	now := s.now()
	order, err := s.gateway.CreateOrder(ctx, toPaise(amount), currencyINR, fmt.Sprintf("receipt_%d", now.UnixMilli()))
	if err != nil {
		return nil, Order{}, err
	}

	payment := &models.Payment{
		PatientID:     patientID,
		AppointmentID: apptRef,
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      order.Currency,
		Status:        models.PaymentCreated,
	}
	payment.EnsureID()
	payment.Touch(now)
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, Order{}, fmt.Errorf("store payment: %w", err)
	}

	s.log.Info().Str("payment_id", payment.ID).Str("order_id", order.ID).Str("patient_id", patientID).Msg("payment order created")
	return payment, order, nil
}

// Verify checks the checkout signature, captures the payment and marks the
// linked appointment as paid. Repeating a successful verification returns
// the captured payment unchanged; a payment that was captured for another
// gateway payment or already refunded yields models.ErrConflict. A bad
// signature only marks an open order as failed.
func (s *Service) Verify(ctx context.Context, patientID string, in VerifyInput) (*models.Payment, error) {
	payment, err := s.repo.FindByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if payment.PatientID != patientID {
		return nil, fmt.Errorf("payment %s: %w", payment.ID, models.ErrForbidden)
	}

	if !VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.keySecret) {
		if payment.Status == models.PaymentCreated {
			payment.Status = models.PaymentFailed
			payment.Touch(s.now())
			if err := s.repo.Save(ctx, payment); err != nil {
				s.log.Error().Err(err).Str("payment_id", payment.ID).Msg("failed to record failed payment")
			}
		}
		return nil, models.ErrInvalidSignature
	}

	switch {
	case payment.Status == models.PaymentCaptured && payment.GatewayPaymentID == in.PaymentID:
		return payment, nil
	case payment.Status != models.PaymentCreated && payment.Status != models.PaymentFailed:
		return nil, fmt.Errorf("payment %s is %s: %w", payment.ID, payment.Status, models.ErrConflict)
	}

	payment.GatewayPaymentID = in.PaymentID
	payment.Signature = in.Signature
	payment.PaymentMethod = in.PaymentMethod
	payment.Status = models.PaymentCaptured
	payment.Touch(s.now())
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	if payment.AppointmentID != nil {
		if _, err := s.lifecycle.MarkPaid(ctx, *payment.AppointmentID); err != nil {
			return nil, fmt.Errorf("mark appointment paid: %w", err)
		}
	}

	s.log.Info().Str("payment_id", payment.ID).Str("gateway_payment_id", in.PaymentID).Msg("payment captured")
	return payment, nil
}

// History lists the patient's payments, newest first.
func (s *Service) History(ctx context.Context, patientID string) ([]models.Payment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Get returns one of the patient's payments.
func (s *Service) Get(ctx context.Context, patientID, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.PatientID != patientID {
		return nil, fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
	}
	return payment, nil
}

// Refund returns amount rupees of a captured payment to the patient. A zero
// amount refunds the full payment.
func (s *Service) Refund(ctx context.Context, patientID, id string, amount float64, reason string) (*models.Payment, error) {
	payment, err := s.Get(ctx, patientID, id)
	if err != nil {
		return nil, err
	}
	switch payment.Status {
	case models.PaymentRefund:
		return nil, models.NewValidationError("paymentId", "payment has already been refunded")
	case models.PaymentCaptured:
	default:
		return nil, models.NewValidationError("paymentId", "only captured payments can be refunded")
	}
	if amount < 0 || amount > payment.Amount {
		return nil, models.NewValidationError("amount", "must be between 0 and the paid amount")
	}
	if amount == 0 {
		amount = payment.Amount
	}

	refund, err := s.gateway.Refund(ctx, payment.GatewayPaymentID, toPaise(amount), map[string]string{"reason": reason})
	if err != nil {
		return nil, err
	}

	payment.Status = models.PaymentRefund
	payment.RefundID = refund.ID
	payment.RefundAmount = amount
	payment.RefundReason = reason
	payment.Touch(s.now())
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("store refund: %w", err)
	}

	if payment.AppointmentID != nil {
		if _, err := s.lifecycle.MarkRefunded(ctx, *payment.AppointmentID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("mark appointment refunded: %w", err)
		}
	}

	s.log.Info().Str("payment_id", payment.ID).Str("refund_id", refund.ID).Float64("amount", amount).Msg("payment refunded")
	return payment, nil
}

func toPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
