package model

import (
	"sort"
	"time"
)

// Movie is a showable item.  A movie belongs to one cinema for its
// whole lifetime; its schedule is owned by the movie repository.
type Movie struct {
	ID              uint64      `json:"id"`
	CinemaID        uint64      `json:"cinema_id"`
	Title           string      `json:"title"`
	Genre           string      `json:"genre"`
	DurationMinutes int         `json:"duration_minutes"`
	Director        string      `json:"director"`
	Synopsis        string      `json:"synopsis"`
	Rating          string      `json:"rating"`
	IsActive        bool        `json:"is_active"`
	Showtimes       []time.Time `json:"showtimes"`
	CreatedAt       time.Time   `json:"created_at"`
}

// HasShowtime reports whether t is one of the published showtimes.
func (m Movie) HasShowtime(t time.Time) bool {
	want := NormalizeShowtime(t)
	for _, s := range m.Showtimes {
		if s.Equal(want) {
			return true
		}
	}
	return false
}

// SortedShowtimes returns the schedule in ascending order.
func (m Movie) SortedShowtimes() []time.Time {
	out := append([]time.Time{}, m.Showtimes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
