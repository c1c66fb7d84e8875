package domain

import "errors"

var (
	ErrOrderIDRequired = errors.New("payment: order_id is required")
	ErrAlreadyPaid     = errors.New("payment: order is already paid")
	ErrPaymentNotFound = errors.New("payment: payment not found")
)
