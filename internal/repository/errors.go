// Package repository holds the in-memory stores for the catalog
// (cinemas, movies, snacks) and customers.  The sentinel values below
// allow higher layers such as handlers to distinguish between failure
// scenarios without inspecting messages.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

var (
	ErrCinemaNotFound    = errors.New("cinema not found")
	ErrMovieNotFound     = errors.New("movie not found")
	ErrSnackNotFound     = errors.New("snack not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrDuplicateShowtime = errors.New("showtime already scheduled")
	ErrShowtimeNotFound  = errors.New("showtime not scheduled")
)
