package model

import "time"

// Showing is a (movie, showtime) pair.  It is not stored on its own; it
// partitions seat occupancy.  CinemaID is carried along because a movie
// belongs to exactly one cinema for its lifetime.
type Showing struct {
	CinemaID uint64    `json:"cinema_id"`
	MovieID  uint64    `json:"movie_id"`
	Showtime time.Time `json:"showtime"`
}

// ShowingKey is the comparable form of a Showing used for map lookups.
type ShowingKey struct {
	CinemaID uint64
	MovieID  uint64
	Showtime int64
}

// NewShowing builds a Showing with a normalised showtime.
func NewShowing(cinemaID, movieID uint64, showtime time.Time) Showing {
	return Showing{CinemaID: cinemaID, MovieID: movieID, Showtime: NormalizeShowtime(showtime)}
}

// Key returns the occupancy partition key of the showing.
func (s Showing) Key() ShowingKey {
	return ShowingKey{CinemaID: s.CinemaID, MovieID: s.MovieID, Showtime: NormalizeShowtime(s.Showtime).Unix()}
}

// SeatKey returns the identity of the seat with the given label in this
// showing.
func (s Showing) SeatKey(label string) SeatKey {
	k := s.Key()
	return SeatKey{Label: label, CinemaID: k.CinemaID, MovieID: k.MovieID, Showtime: k.Showtime}
}

// NormalizeShowtime drops sub-second precision and converts to UTC so
// that equal wall-clock showtimes compare equal regardless of location.
func NormalizeShowtime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
