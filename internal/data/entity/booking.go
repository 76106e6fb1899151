package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// TimeStatus classifies a booking relative to a point in time. It is derived
// at read time, never stored.
type TimeStatus string

const (
	TimeStatusPast      TimeStatus = "past"
	TimeStatusOngoing   TimeStatus = "ongoing"
	TimeStatusUpcoming  TimeStatus = "upcoming"
	TimeStatusCancelled TimeStatus = "cancelled"
)

// Payment is the payment sub-state embedded in a booking. The booking owns it
// exclusively; it is never shared between bookings.
type Payment struct {
	Reference string        `db:"payment_reference"`
	Amount    float64       `db:"payment_amount"`
	Status    PaymentStatus `db:"payment_status"`
	PaidAt    *time.Time    `db:"paid_at"`
}

type Booking struct {
	Base
	LotID      uuid.UUID     `db:"lot_id"`
	SpotNumber int           `db:"spot_number"`
	StartTime  time.Time     `db:"start_time"`
	EndTime    time.Time     `db:"end_time"`
	BookerID   uuid.UUID     `db:"booker_id"`
	VehicleID  *uuid.UUID    `db:"vehicle_id"`
	Payment    Payment       `db:"payment"`
	Status     BookingStatus `db:"status"`
}

// Range returns the booked interval as a half-open range.
func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

var (
	ErrNotBooker      = fmt.Errorf("only the original booker may cancel")
	ErrAlreadyStarted = fmt.Errorf("cannot cancel a booking that has started")
	ErrNotCancellable = fmt.Errorf("booking is not in a cancellable state")
)

// CancellableBy checks the cancellation guard: only the original booker,
// only strictly before the start time, only while still booked.
func (b *Booking) CancellableBy(actorID uuid.UUID, now time.Time) error {
	if actorID != b.BookerID {
		return ErrNotBooker
	}
	if b.Status != BookingStatusBooked {
		return ErrNotCancellable
	}
	if !now.Before(b.StartTime) {
		return ErrAlreadyStarted
	}
	return nil
}

// MarkPaymentSuccess applies the pending/failed → success transition.
// Replaying a success event for an already-successful payment is a no-op so
// provider retries never error and never overwrite the original paid
// timestamp. A payment marked failed still moves to success: the provider
// can confirm a charge after an earlier failure event, and success wins.
// Returns whether the state changed.
func (b *Booking) MarkPaymentSuccess(now time.Time) (bool, error) {
	if b.Payment.Status == PaymentStatusSuccess {
		return false, nil
	}
	b.Payment.Status = PaymentStatusSuccess
	paidAt := now
	b.Payment.PaidAt = &paidAt
	return true, nil
}

// MarkPaymentFailed applies the pending → failed transition, idempotently.
func (b *Booking) MarkPaymentFailed() (bool, error) {
	switch b.Payment.Status {
	case PaymentStatusFailed:
		return false, nil
	case PaymentStatusSuccess:
		return false, fmt.Errorf("payment %s already succeeded", b.Payment.Reference)
	}
	b.Payment.Status = PaymentStatusFailed
	return true, nil
}

// TimeStatusAt classifies the booking against a single now snapshot.
// Callers classifying a whole result set must reuse one snapshot so the set
// is internally consistent.
func (b *Booking) TimeStatusAt(now time.Time) TimeStatus {
	if b.Status == BookingStatusCancelled {
		return TimeStatusCancelled
	}
	switch {
	case b.EndTime.Before(now):
		return TimeStatusPast
	case !b.StartTime.After(now):
		return TimeStatusOngoing
	default:
		return TimeStatusUpcoming
	}
}
