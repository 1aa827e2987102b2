package payments

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is a gateway order awaiting payment.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Refund is a gateway refund receipt.
type Refund struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

// Gateway is the payment provider. Amounts are in the smallest currency
// unit (paise).
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error)
	Refund(ctx context.Context, paymentID string, amount int64, notes map[string]string) (Refund, error)
}

// RazorpayGateway talks to the Razorpay REST API.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (Order, error) {
	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return Order{}, fmt.Errorf("razorpay create order: response has no id")
	}
	return Order{ID: id, Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (g *RazorpayGateway) Refund(_ context.Context, paymentID string, amount int64, notes map[string]string) (Refund, error) {
	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := g.client.Payment.Refund(paymentID, int(amount), data, nil)
	if err != nil {
		return Refund{}, fmt.Errorf("razorpay refund: %w", err)
	}
	id, _ := body["id"].(string)
	return Refund{ID: id, Amount: amount}, nil
}
