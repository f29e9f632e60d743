package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PaymentHandler creates payment intents and records payment outcomes.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{service: service, validate: validate}
}

// RegisterRoutes registers the payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	payment := router.Group("/payment")
	payment.Get("/config", h.HandleConfig)
	payment.Post("/create-payment-intent", authRequired, h.HandleCreatePaymentIntent)
	payment.Put("/update-status/:orderId", authRequired, h.HandleUpdateStatus)
}

// HandleConfig returns the key clients confirm payments with.
func (h *PaymentHandler) HandleConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"publishableKey": h.service.PublishableKey()})
}

// CreatePaymentIntentRequest is the body of POST /payment/create-payment-intent.
type CreatePaymentIntentRequest struct {
	OrderID string          `json:"orderId" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"gt=0"`
}

// HandleCreatePaymentIntent creates a payment intent for one of the caller's orders and returns
// its client secret.
func (h *PaymentHandler) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req CreatePaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return invalid(c, err)
	}

	intent, err := h.service.CreatePaymentIntent(c.UserContext(), middleware.UserID(c), req.OrderID, req.Amount)
	middleware.RecordOrderOperation("create_payment_intent", err == nil)
	if err != nil {
		return fail(c, "Could not create payment intent", err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"clientSecret": intent.ClientSecret,
	})
}

// UpdatePaymentStatusRequest is the body of PUT /payment/update-status/:orderId.
type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"required"`
}

// HandleUpdateStatus records a payment outcome once the processor agrees with it.
func (h *PaymentHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return invalid(c, err)
	}

	order, err := h.service.UpdatePaymentStatus(c.UserContext(), middleware.UserID(c), middleware.IsAdmin(c), c.Params("orderId"), req.PaymentStatus)
	middleware.RecordOrderOperation("update_payment_status", err == nil)
	if err != nil {
		return fail(c, "Could not update payment status", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}
