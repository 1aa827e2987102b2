package payments_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
	"medconnect-server/internal/payments"
	"medconnect-server/internal/store/memstore"
	"medconnect-server/internal/testutil"
)

const keySecret = "rzp-test-secret"

type fakeGateway struct {
	mu      sync.Mutex
	orders  int
	refunds []int64
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (payments.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders++
	return payments.Order{ID: fmt.Sprintf("order_%d", g.orders), Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (g *fakeGateway) Refund(_ context.Context, paymentID string, amount int64, _ map[string]string) (payments.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, amount)
	return payments.Refund{ID: "rfnd_" + paymentID, Amount: amount}, nil
}

type fixture struct {
	svc     *payments.Service
	gateway *fakeGateway
	manager *appointments.Manager
	clinic  testutil.Clinic
	appt    *models.Appointment
}

func setup(t *testing.T) *fixture {
	t.Helper()
	r := testutil.NewResolver()
	clinic := testutil.SeedClinic(t, r, "pay")
	manager := appointments.NewManager(memstore.NewAppointments(), r, &testutil.RecordingSender{}, zerolog.Nop())
	t.Cleanup(manager.Wait)

	appt, err := manager.Book(context.Background(), appointments.BookingInput{
		PatientID:       clinic.Patient.ID,
		DoctorID:        clinic.Doctor.ID,
		HospitalID:      clinic.Hospital.ID,
		AppointmentDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "04:00 PM",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	gw := &fakeGateway{}
	return &fixture{
		svc:     payments.NewService(memstore.NewPayments(), gw, manager, "rzp_test_key", keySecret, zerolog.Nop()),
		gateway: gw,
		manager: manager,
		clinic:  clinic,
		appt:    appt,
	}
}

func (f *fixture) capture(t *testing.T) *models.Payment {
	t.Helper()
	ctx := context.Background()
	payment, order, err := f.svc.CreateOrder(ctx, f.clinic.Patient.ID, 500, f.appt.ID)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount != 50000 || payment.Status != models.PaymentCreated {
		t.Fatalf("order = %+v, payment status %s", order, payment.Status)
	}

	captured, err := f.svc.Verify(ctx, f.clinic.Patient.ID, payments.VerifyInput{
		OrderID:   order.ID,
		PaymentID: "pay_1",
		Signature: payments.Sign(order.ID, "pay_1", keySecret),
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return captured
}

func TestSignature(t *testing.T) {
	const want = "52115a0d3400de9e86aade1f1b6eba9e8974604f4e267a9e9a16633a4c8dd2cb"
	if got := payments.Sign("order_1", "pay_1", "secret"); got != want {
		t.Fatalf("Sign = %s, want %s", got, want)
	}
	if !payments.VerifySignature("order_1", "pay_1", want, "secret") {
		t.Error("valid signature rejected")
	}
	if payments.VerifySignature("order_1", "pay_2", want, "secret") {
		t.Error("signature accepted for another payment")
	}
}

func TestVerifyCapturesAndMarksAppointmentPaid(t *testing.T) {
	f := setup(t)
	payment := f.capture(t)

	if payment.Status != models.PaymentCaptured || payment.GatewayPaymentID != "pay_1" {
		t.Errorf("payment = %s/%s", payment.Status, payment.GatewayPaymentID)
	}

	appt, err := f.manager.Get(context.Background(), f.appt.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if appt.PaymentStatus != models.PaymentPaid || appt.Status != models.StatusConfirmed {
		t.Errorf("appointment = %s/%s, want confirmed/paid", appt.Status, appt.PaymentStatus)
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	payment, order, err := f.svc.CreateOrder(ctx, f.clinic.Patient.ID, 250, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err = f.svc.Verify(ctx, f.clinic.Patient.ID, payments.VerifyInput{
		OrderID:   order.ID,
		PaymentID: "pay_x",
		Signature: "forged",
	})
	if !errors.Is(err, models.ErrInvalidSignature) {
		t.Fatalf("Verify = %v, want ErrInvalidSignature", err)
	}

	stored, err := f.svc.Get(ctx, f.clinic.Patient.ID, payment.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != models.PaymentFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}

	retried, err := f.svc.Verify(ctx, f.clinic.Patient.ID, payments.VerifyInput{
		OrderID:   order.ID,
		PaymentID: "pay_x",
		Signature: payments.Sign(order.ID, "pay_x", keySecret),
	})
	if err != nil || retried.Status != models.PaymentCaptured {
		t.Errorf("retry after failure = %v, %v, want captured", retried, err)
	}
}

func TestBadSignatureLeavesCapturedPayment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	payment := f.capture(t)

	_, err := f.svc.Verify(ctx, f.clinic.Patient.ID, payments.VerifyInput{
		OrderID:   payment.OrderID,
		PaymentID: "pay_1",
		Signature: "forged",
	})
	if !errors.Is(err, models.ErrInvalidSignature) {
		t.Fatalf("Verify = %v, want ErrInvalidSignature", err)
	}

	stored, _ := f.svc.Get(ctx, f.clinic.Patient.ID, payment.ID)
	if stored.Status != models.PaymentCaptured {
		t.Errorf("status = %s, want captured", stored.Status)
	}
}

func TestVerifyIsIdempotentAndClosedAfterRefund(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	payment := f.capture(t)

	again := payments.VerifyInput{
		OrderID:   payment.OrderID,
		PaymentID: "pay_1",
		Signature: payments.Sign(payment.OrderID, "pay_1", keySecret),
	}
	repeated, err := f.svc.Verify(ctx, f.clinic.Patient.ID, again)
	if err != nil || repeated.Status != models.PaymentCaptured {
		t.Fatalf("repeated Verify = %v, %v", repeated, err)
	}

	other := payments.VerifyInput{
		OrderID:   payment.OrderID,
		PaymentID: "pay_2",
		Signature: payments.Sign(payment.OrderID, "pay_2", keySecret),
	}
	if _, err := f.svc.Verify(ctx, f.clinic.Patient.ID, other); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Verify with another gateway payment = %v, want ErrConflict", err)
	}

	if _, err := f.svc.Refund(ctx, f.clinic.Patient.ID, payment.ID, 0, ""); err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if _, err := f.svc.Verify(ctx, f.clinic.Patient.ID, again); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("Verify after refund = %v, want ErrConflict", err)
	}

	stored, _ := f.svc.Get(ctx, f.clinic.Patient.ID, payment.ID)
	if stored.Status != models.PaymentRefund {
		t.Errorf("status = %s, want refunded", stored.Status)
	}
	appt, _ := f.manager.Get(ctx, f.appt.ID)
	if appt.PaymentStatus != models.PaymentRefunded {
		t.Errorf("appointment payment status = %s, want refunded", appt.PaymentStatus)
	}

	var ve *models.ValidationError
	if _, err := f.svc.Refund(ctx, f.clinic.Patient.ID, payment.ID, 0, ""); !errors.As(err, &ve) {
		t.Errorf("second Refund = %v, want validation error", err)
	}
	if len(f.gateway.refunds) != 1 {
		t.Errorf("gateway refunds = %v, want one", f.gateway.refunds)
	}
}

func TestCreateOrderChecksOwnershipAndAmount(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	var ve *models.ValidationError
	if _, _, err := f.svc.CreateOrder(ctx, f.clinic.Patient.ID, 0, ""); !errors.As(err, &ve) {
		t.Errorf("CreateOrder(0) = %v, want validation error", err)
	}
	if _, _, err := f.svc.CreateOrder(ctx, "someone-else", 100, f.appt.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("CreateOrder for another patient's appointment = %v, want ErrForbidden", err)
	}
}

func TestRefundOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	payment := f.capture(t)

	refunded, err := f.svc.Refund(ctx, f.clinic.Patient.ID, payment.ID, 0, "doctor unavailable")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != models.PaymentRefund || refunded.RefundAmount != 500 {
		t.Errorf("refund = %s %v", refunded.Status, refunded.RefundAmount)
	}
	if len(f.gateway.refunds) != 1 || f.gateway.refunds[0] != 50000 {
		t.Errorf("gateway refunds = %v, want [50000]", f.gateway.refunds)
	}

	var ve *models.ValidationError
	if _, err := f.svc.Refund(ctx, f.clinic.Patient.ID, payment.ID, 0, ""); !errors.As(err, &ve) {
		t.Errorf("second Refund = %v, want validation error", err)
	}

	appt, _ := f.manager.Get(ctx, f.appt.ID)
	if appt.PaymentStatus != models.PaymentRefunded {
		t.Errorf("appointment payment status = %s, want refunded", appt.PaymentStatus)
	}
}

func TestGetHidesOtherPatientsPayments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	payment := f.capture(t)

	if _, err := f.svc.Get(ctx, "someone-else", payment.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}

	history, err := f.svc.History(ctx, f.clinic.Patient.ID)
	if err != nil || len(history) != 1 {
		t.Errorf("History = %d, %v", len(history), err)
	}
}
