package booking

import "errors"

var (
	// ErrCapacityExceeded is returned when a seventh seat is added.
	ErrCapacityExceeded = errors.New("booking already holds the maximum number of seats")
	// ErrDuplicateSeat is returned when the same seat is selected twice.
	ErrDuplicateSeat = errors.New("seat already selected in this booking")
	// ErrWrongShowing is returned for a seat of another movie or showtime.
	ErrWrongShowing = errors.New("seat belongs to a different showing")
	// ErrSeatOccupied is returned for a seat resolved as occupied.
	ErrSeatOccupied = errors.New("seat is already taken")
	// ErrOrderClosed is returned for mutations once the booking has left
	// the open state.
	ErrOrderClosed = errors.New("booking can no longer be changed")
	// ErrSnackUnavailable is returned for a snack taken off the menu.
	ErrSnackUnavailable = errors.New("snack is not available")
	// ErrInvalidPaymentMethod is returned for a method outside GCash,
	// PayMaya and Credit Card.
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	// ErrPaymentDeclined is returned when the payment outcome is a
	// failure.  The booking stays open.
	ErrPaymentDeclined = errors.New("payment was declined")
	// ErrEmptyOrder is returned when paying for a booking without seats.
	ErrEmptyOrder = errors.New("booking has no seats")
	// ErrNotPaid is returned when committing a booking that is not paid.
	ErrNotPaid = errors.New("booking is not paid")
	// ErrAlreadyFinalized is returned when abandoning or committing a
	// finalized booking.
	ErrAlreadyFinalized = errors.New("booking is already finalized")
	// ErrNotFinalized is returned when cancelling a booking that was
	// never finalized.
	ErrNotFinalized = errors.New("booking is not finalized")
)
