package handlers

import (
	"github.com/gin-gonic/gin"

	"medconnect-server/internal/middleware"
	"medconnect-server/internal/payments"
	"medconnect-server/internal/utils"
)

// PaymentHandler handles Razorpay checkout, history and refunds.
type PaymentHandler struct {
	Payments *payments.Service
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *payments.Service) *PaymentHandler {
	return &PaymentHandler{Payments: service}
}

// CreateOrderRequest represents the request body for opening a checkout.
type CreateOrderRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	AppointmentID string  `json:"appointmentId"`
}

// CreateOrderResponse carries what the client needs to open checkout.
type CreateOrderResponse struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	KeyID     string `json:"keyId"`
	PaymentID string `json:"paymentId"`
}

// CreateOrder opens a gateway order for the caller.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	payment, order, err := h.Payments.CreateOrder(c.Request.Context(), userID, req.Amount, req.AppointmentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Order created successfully", CreateOrderResponse{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		KeyID:     h.Payments.KeyID(),
		PaymentID: payment.ID,
	})
}

// VerifyPayment checks the checkout signature and captures the payment.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req payments.VerifyInput
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	payment, err := h.Payments.Verify(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment verified successfully", payment)
}

// GetHistory lists the caller's payments.
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	list, err := h.Payments.History(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment history retrieved successfully", list)
}

// GetPayment returns one of the caller's payments.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	payment, err := h.Payments.Get(c.Request.Context(), userID, c.Param("paymentId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment retrieved successfully", payment)
}

// RefundRequest represents the request body for a refund. A missing amount
// refunds the full payment.
type RefundRequest struct {
	PaymentID string  `json:"paymentId" binding:"required"`
	Amount    float64 `json:"amount" binding:"gte=0"`
	Reason    string  `json:"reason" binding:"max=500"`
}

// Refund refunds one of the caller's captured payments.
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	payment, err := h.Payments.Refund(c.Request.Context(), userID, req.PaymentID, req.Amount, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Refund processed successfully", payment)
}
