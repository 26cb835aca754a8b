package inventory

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownShowing is returned when the showtime is not in the
	// movie's published schedule.
	ErrUnknownShowing = errors.New("showtime is not scheduled for this movie")
	// ErrUnpaidFinalization is returned when finalize is called before a
	// successful payment was recorded.
	ErrUnpaidFinalization = errors.New("booking must be paid before it can be finalized")
	// ErrSeatUnavailable is returned when a requested seat is already
	// occupied for the showing.
	ErrSeatUnavailable = errors.New("seat is no longer available")
	ErrBookingNotFound = errors.New("booking not found")
)

// SeatConflictError lists the seats that were already taken when a
// booking was committed.  It matches ErrSeatUnavailable with errors.Is.
type SeatConflictError struct {
	Labels []string
}

func (e *SeatConflictError) Error() string {
	return ErrSeatUnavailable.Error() + ": " + strings.Join(e.Labels, ",")
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatUnavailable }
