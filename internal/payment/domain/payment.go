package domain

import "time"

type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
)

type Payment struct {
	PayID     int64
	OrderID   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkPaid flips the status once. The second return reports whether the
// payment actually transitioned; an already-paid payment is left untouched.
func (p *Payment) MarkPaid(now time.Time) bool {
	if p.Status == StatusPaid {
		return false
	}
	p.Status = StatusPaid
	p.UpdatedAt = now
	return true
}
