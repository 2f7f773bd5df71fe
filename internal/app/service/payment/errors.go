package payment

import "errors"

var (
	// ErrInvalidTransition is a permanent rejection: the requested status
	// change violates the transition table and must not be blindly retried.
	ErrInvalidTransition = errors.New("payment: invalid status transition")
	// ErrPaymentNotFound means no live payment exists for the id.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrOrderNotFound means the order backing a payment request is missing
	// or belongs to a different user.
	ErrOrderNotFound = errors.New("payment: order not found")
	// ErrDuplicatePayment means the order already has a payment.
	ErrDuplicatePayment = errors.New("payment: order already paid")
)
