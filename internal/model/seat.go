package model

import "time"

// Tier is the pricing class of a seat.
type Tier string

const (
	TierStandard Tier = "STANDARD"
	TierDeluxe   Tier = "DELUXE"
)

// tierPrices is the static tier -> price lookup.  Prices are not stored
// per seat.
var tierPrices = map[Tier]Cents{
	TierStandard: 20000,
	TierDeluxe:   30000,
}

// Price returns the ticket price for the tier.  Unknown tiers cost nothing.
func (t Tier) Price() Cents { return tierPrices[t] }

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierDeluxe:
		return "Deluxe"
	case TierStandard:
		return "Standard"
	}
	return string(t)
}

// TemplateSeat is one entry of a cinema's fixed seat layout.
//
// Fields:
//
//	Label  – row letter(s) followed by the column number, e.g. "A1".
//	Row    – row label, e.g. "A".
//	Column – 1-based column number within the row.
//	Tier   – pricing tier of the seat.
type TemplateSeat struct {
	Label  string `json:"label"`
	Row    string `json:"row"`
	Column int    `json:"column"`
	Tier   Tier   `json:"tier"`
}

// Price returns the tier price of the seat.
func (s TemplateSeat) Price() Cents { return s.Tier.Price() }

// SeatKey identifies a seat instance.  Two instances are the same seat
// iff label, cinema, movie and showtime all match.  It is a comparable
// value and can be used directly as a map key.
type SeatKey struct {
	Label    string
	CinemaID uint64
	MovieID  uint64
	Showtime int64 // unix seconds, see NormalizeShowtime
}

// SeatInstance is a template seat bound to one showing.  Occupied is
// derived from the inventory's occupancy set at resolve time.
type SeatInstance struct {
	Label    string    `json:"label"`
	Row      string    `json:"row"`
	Column   int       `json:"column"`
	Tier     Tier      `json:"tier"`
	CinemaID uint64    `json:"cinema_id"`
	MovieID  uint64    `json:"movie_id"`
	Showtime time.Time `json:"showtime"`
	Occupied bool      `json:"occupied"`
}

// NewSeatInstance copies a template seat into the given showing.  The
// copy starts unoccupied.
func NewSeatInstance(t TemplateSeat, sh Showing) SeatInstance {
	return SeatInstance{
		Label:    t.Label,
		Row:      t.Row,
		Column:   t.Column,
		Tier:     t.Tier,
		CinemaID: sh.CinemaID,
		MovieID:  sh.MovieID,
		Showtime: sh.Showtime,
	}
}

// Key returns the composite identity of the seat.
func (s SeatInstance) Key() SeatKey {
	return SeatKey{
		Label:    s.Label,
		CinemaID: s.CinemaID,
		MovieID:  s.MovieID,
		Showtime: NormalizeShowtime(s.Showtime).Unix(),
	}
}

// Showing returns the showing the seat belongs to.
func (s SeatInstance) Showing() Showing {
	return NewShowing(s.CinemaID, s.MovieID, s.Showtime)
}

// Price returns the tier price of the seat.
func (s SeatInstance) Price() Cents { return s.Tier.Price() }
