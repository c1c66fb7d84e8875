package domain

import "time"

const EventTypePaymentPaid = "payment.paid"

// PaidEventSchemaVersion is bumped whenever the snapshot layout changes.
// Consumers pin against it instead of the internal row layout.
const PaidEventSchemaVersion = 1

// PaymentPaid is the wire snapshot staged in the outbox when a payment
// transitions to PAID.
type PaymentPaid struct {
	SchemaVersion int       `json:"schema_version"`
	PayID         int64     `json:"pay_id"`
	OrderID       string    `json:"order_id"`
	Status        Status    `json:"status"`
	PaidAt        time.Time `json:"paid_at"`
}

func NewPaymentPaid(p Payment) PaymentPaid {
	return PaymentPaid{
		SchemaVersion: PaidEventSchemaVersion,
		PayID:         p.PayID,
		OrderID:       p.OrderID,
		Status:        p.Status,
		PaidAt:        p.UpdatedAt,
	}
}
