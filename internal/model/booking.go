package model

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of a booking.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "OPEN"
	StatusPaid      OrderStatus = "PAID"
	StatusFinalized OrderStatus = "FINALIZED"
	StatusAbandoned OrderStatus = "ABANDONED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod is a declared payment channel.  The empty value means no
// payment has been recorded yet.
type PaymentMethod string

const (
	PaymentGCash      PaymentMethod = "GCash"
	PaymentPayMaya    PaymentMethod = "PayMaya"
	PaymentCreditCard PaymentMethod = "Credit Card"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentGCash, PaymentPayMaya, PaymentCreditCard}

// ParsePaymentMethod matches a method name case-insensitively.
func ParsePaymentMethod(name string) (PaymentMethod, bool) {
	name = strings.TrimSpace(name)
	for _, m := range PaymentMethods {
		if strings.EqualFold(string(m), name) {
			return m, true
		}
	}
	return "", false
}

// BookingRecord is the immutable snapshot of a finalized booking.  It is
// what the inventory keeps in its booking list and what the sales report
// reduces over.
type BookingRecord struct {
	ID               string         `json:"id"`
	ConfirmationCode string         `json:"confirmation_code"`
	UserID           uint64         `json:"user_id"`
	CinemaID         uint64         `json:"cinema_id"`
	CinemaName       string         `json:"cinema_name"`
	MovieID          uint64         `json:"movie_id"`
	MovieTitle       string         `json:"movie_title"`
	Showtime         time.Time      `json:"showtime"`
	Seats            []SeatInstance `json:"seats"`
	Snacks           []Snack        `json:"snacks"`
	TotalCents       Cents          `json:"total_cents"`
	PaymentMethod    PaymentMethod  `json:"payment_method"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Showing returns the showing the booking was made for.
func (b BookingRecord) Showing() Showing {
	return NewShowing(b.CinemaID, b.MovieID, b.Showtime)
}

// SeatLabels returns the labels of the booked seats in selection order.
func (b BookingRecord) SeatLabels() []string {
	out := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		out = append(out, s.Label)
	}
	return out
}
