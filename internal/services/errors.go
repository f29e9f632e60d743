package services

import "errors"

// Errors returned by the services. Handlers map them onto HTTP status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")

	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("not allowed to access this order")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrTotalMismatch     = errors.New("order total does not match current prices")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("order status transition not allowed")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
	ErrNotDeletable      = errors.New("only delivered or cancelled orders can be deleted")

	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrAmountMismatch       = errors.New("amount does not match order total")
	ErrAlreadyPaid          = errors.New("order is already paid")
	ErrOrderNotPayable      = errors.New("order cannot be paid")
	ErrPaymentNotVerified   = errors.New("payment status not confirmed by the processor")
)
