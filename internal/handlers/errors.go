package handlers

import (
	"errors"
	"log"

	"storefront/internal/cart"
	"storefront/internal/gateway"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUserExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrTotalMismatch),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrNotCancellable),
		errors.Is(err, services.ErrNotDeletable),
		errors.Is(err, services.ErrInvalidPaymentStatus),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrOrderNotPayable),
		errors.Is(err, services.ErrPaymentNotVerified),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidItem):
		return fiber.StatusBadRequest
	case errors.Is(err, gateway.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	}
	var perr *gateway.ProcessorError
	if errors.As(err, &perr) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// fail logs err and writes it with the status statusFor picks.
func fail(c *fiber.Ctx, message string, err error) error {
	status := statusFor(err)
	log.Printf("%s: %v", message, err)
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

func invalid(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  validation.Errors(err),
	})
}
