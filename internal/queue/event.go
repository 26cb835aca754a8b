// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// Queue names.  Both are declared durable by publisher and consumer.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a booking is finalized.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without calling back into the booking service.
type BookingConfirmedEvent struct {
	BookingID        string   `json:"booking_id"`
	ConfirmationCode string   `json:"confirmation_code"`
	UserID           uint64   `json:"user_id"`
	CinemaID         uint64   `json:"cinema_id"`
	CinemaName       string   `json:"cinema_name"`
	MovieID          uint64   `json:"movie_id"`
	MovieTitle       string   `json:"movie_title"`
	Showtime         string   `json:"showtime"`
	SeatLabels       []string `json:"seats"`
	SnackCount       int      `json:"snack_count"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	PaymentMethod    string   `json:"payment_method"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a finalized booking is cancelled
// and its seats are released.
type BookingCancelledEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	MovieID     uint64   `json:"movie_id"`
	Showtime    string   `json:"showtime"`
	SeatLabels  []string `json:"seats"`
	CancelledAt string   `json:"cancelled_at"`
}

// NewBookingConfirmedEvent builds the event for a committed booking.
func NewBookingConfirmedEvent(rec model.BookingRecord) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:        rec.ID,
		ConfirmationCode: rec.ConfirmationCode,
		UserID:           rec.UserID,
		CinemaID:         rec.CinemaID,
		CinemaName:       rec.CinemaName,
		MovieID:          rec.MovieID,
		MovieTitle:       rec.MovieTitle,
		Showtime:         rec.Showtime.UTC().Format(time.RFC3339),
		SeatLabels:       rec.SeatLabels(),
		SnackCount:       len(rec.Snacks),
		TotalAmountCents: int64(rec.TotalCents),
		PaymentMethod:    string(rec.PaymentMethod),
		ConfirmedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewBookingCancelledEvent builds the event for a cancelled booking.
func NewBookingCancelledEvent(rec model.BookingRecord, at time.Time) BookingCancelledEvent {
	return BookingCancelledEvent{
		BookingID:   rec.ID,
		UserID:      rec.UserID,
		MovieID:     rec.MovieID,
		Showtime:    rec.Showtime.UTC().Format(time.RFC3339),
		SeatLabels:  rec.SeatLabels(),
		CancelledAt: at.UTC().Format(time.RFC3339),
	}
}
