// Package inventory owns seat occupancy and the list of finalized
// bookings.  It resolves per-showing seat availability from a cinema's
// template and commits paid bookings with a check-and-set against the
// occupancy set, so a seat is never sold twice for the same showing.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/booking"
	"github.com/iliyamo/cinebook/internal/model"
)

// MovieSource loads movies with their schedules.
type MovieSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

// CinemaSource loads cinemas with their seat templates.
type CinemaSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Cinema, error)
}

// UserStore records finalized bookings on the customer.
type UserStore interface {
	AddBooking(ctx context.Context, userID uint64, bookingID string) error
}

// EventPublisher is notified after a booking is committed or cancelled.
// Failures are logged and never undo the commit.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, rec model.BookingRecord) error
	PublishBookingCancelled(ctx context.Context, rec model.BookingRecord) error
}

type nopPublisher struct{}

func (nopPublisher) PublishBookingConfirmed(context.Context, model.BookingRecord) error { return nil }
func (nopPublisher) PublishBookingCancelled(context.Context, model.BookingRecord) error { return nil }

// Inventory is the single owner of occupancy and the booking list.  One
// mutex spans the occupancy check, the occupancy write and both booking
// list appends.
type Inventory struct {
	movies    MovieSource
	cinemas   CinemaSource
	users     UserStore
	publisher EventPublisher
	log       *logrus.Entry

	mu        sync.Mutex
	occupancy map[model.ShowingKey]map[string]string // seat label -> booking id
	bookings  []model.BookingRecord
	orders    map[string]*booking.Order
}

// Option configures an Inventory.
type Option func(*Inventory)

// WithPublisher sets the event publisher used after commit and cancel.
func WithPublisher(p EventPublisher) Option {
	return func(inv *Inventory) {
		if p != nil {
			inv.publisher = p
		}
	}
}

// WithLogger sets the logger entry.
func WithLogger(l *logrus.Entry) Option {
	return func(inv *Inventory) {
		if l != nil {
			inv.log = l
		}
	}
}

// New returns an empty inventory over the given catalog stores.
func New(movies MovieSource, cinemas CinemaSource, users UserStore, opts ...Option) *Inventory {
	inv := &Inventory{
		movies:    movies,
		cinemas:   cinemas,
		users:     users,
		publisher: nopPublisher{},
		log:       logrus.WithField("component", "inventory"),
		occupancy: make(map[model.ShowingKey]map[string]string),
		orders:    make(map[string]*booking.Order),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// LookupShowing validates that showtime is published for the movie and
// returns the showing together with the movie and its cinema.
func (inv *Inventory) LookupShowing(ctx context.Context, movieID uint64, showtime time.Time) (model.Showing, *model.Movie, *model.Cinema, error) {
	movie, err := inv.movies.GetByID(ctx, movieID)
	if err != nil {
		return model.Showing{}, nil, nil, err
	}
	if !movie.HasShowtime(showtime) {
		return model.Showing{}, nil, nil, ErrUnknownShowing
	}
	cinema, err := inv.cinemas.GetByID(ctx, movie.CinemaID)
	if err != nil {
		return model.Showing{}, nil, nil, err
	}
	return model.NewShowing(cinema.ID, movie.ID, showtime), movie, cinema, nil
}

// Resolve materializes the seat list of a showing.  Every call builds
// fresh instances from the template and marks the labels present in the
// occupancy set; the caller may modify the result freely.
func (inv *Inventory) Resolve(ctx context.Context, movieID uint64, showtime time.Time) ([]model.SeatInstance, error) {
	sh, _, cinema, err := inv.LookupShowing(ctx, movieID, showtime)
	if err != nil {
		return nil, err
	}
	tpl := cinema.Template()

	inv.mu.Lock()
	occ := inv.occupancy[sh.Key()]
	seats := make([]model.SeatInstance, 0, len(tpl))
	for _, t := range tpl {
		s := model.NewSeatInstance(t, sh)
		_, s.Occupied = occ[t.Label]
		seats = append(seats, s)
	}
	inv.mu.Unlock()
	return seats, nil
}

// IsOccupied reports whether label is sold for the showing.
func (inv *Inventory) IsOccupied(sh model.Showing, label string) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	_, ok := inv.occupancy[sh.Key()][label]
	return ok
}

// OccupiedLabels returns the sold labels of a showing in sorted order.
func (inv *Inventory) OccupiedLabels(sh model.Showing) []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	occ := inv.occupancy[sh.Key()]
	out := make([]string, 0, len(occ))
	for l := range occ {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Finalize commits a paid order.  Either the seats are occupied, the
// record is appended to the global list and the customer's list, and the
// order becomes FINALIZED, or none of that happens and an error is
// returned.  Finalize must not be retried after it succeeded.
func (inv *Inventory) Finalize(ctx context.Context, order *booking.Order) (model.BookingRecord, error) {
	sh := order.Showing()
	movie, err := inv.movies.GetByID(ctx, sh.MovieID)
	if err != nil {
		return model.BookingRecord{}, err
	}
	if !movie.HasShowtime(sh.Showtime) {
		return model.BookingRecord{}, ErrUnknownShowing
	}
	cinema, err := inv.cinemas.GetByID(ctx, sh.CinemaID)
	if err != nil {
		return model.BookingRecord{}, err
	}

	var rec model.BookingRecord
	inv.mu.Lock()
	err = order.Commit(func(snap booking.Snapshot) error {
		key := snap.Showing.Key()
		occ := inv.occupancy[key]
		var taken []string
		for _, s := range snap.Seats {
			if _, ok := occ[s.Label]; ok {
				taken = append(taken, s.Label)
			}
		}
		if len(taken) > 0 {
			return &SeatConflictError{Labels: taken}
		}
		if err := inv.users.AddBooking(ctx, snap.UserID, snap.ID); err != nil {
			return err
		}
		if occ == nil {
			occ = make(map[string]string, len(snap.Seats))
			inv.occupancy[key] = occ
		}
		for _, s := range snap.Seats {
			occ[s.Label] = snap.ID
		}
		rec = recordFrom(snap, cinema, movie)
		inv.bookings = append(inv.bookings, rec)
		inv.orders[snap.ID] = order
		return nil
	})
	inv.mu.Unlock()

	if err != nil {
		if errors.Is(err, booking.ErrNotPaid) {
			return model.BookingRecord{}, ErrUnpaidFinalization
		}
		return model.BookingRecord{}, err
	}

	inv.log.WithFields(logrus.Fields{
		"booking_id": rec.ID,
		"user_id":    rec.UserID,
		"movie_id":   rec.MovieID,
		"showtime":   rec.Showtime.Format(time.RFC3339),
		"seats":      rec.SeatLabels(),
		"total":      rec.TotalCents.String(),
	}).Info("booking finalized")
	if err := inv.publisher.PublishBookingConfirmed(ctx, rec); err != nil {
		inv.log.WithError(err).WithField("booking_id", rec.ID).Warn("publish booking confirmed failed")
	}
	return rec, nil
}

func recordFrom(snap booking.Snapshot, cinema *model.Cinema, movie *model.Movie) model.BookingRecord {
	return model.BookingRecord{
		ID:               snap.ID,
		ConfirmationCode: snap.ConfirmationCode,
		UserID:           snap.UserID,
		CinemaID:         cinema.ID,
		CinemaName:       cinema.Name,
		MovieID:          movie.ID,
		MovieTitle:       movie.Title,
		Showtime:         snap.Showing.Showtime,
		Seats:            snap.Seats,
		Snacks:           snap.Snacks,
		TotalCents:       snap.TotalCents,
		PaymentMethod:    snap.PaymentMethod,
		CreatedAt:        snap.CreatedAt,
	}
}

// Cancel removes a finalized booking from the global list and releases
// its seats for the showing.  The customer's booking list is append-only
// and keeps the id.
func (inv *Inventory) Cancel(ctx context.Context, bookingID string) (model.BookingRecord, error) {
	inv.mu.Lock()
	idx := -1
	for i, b := range inv.bookings {
		if b.ID == bookingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		inv.mu.Unlock()
		return model.BookingRecord{}, ErrBookingNotFound
	}
	rec := inv.bookings[idx]
	inv.bookings = append(inv.bookings[:idx], inv.bookings[idx+1:]...)
	key := rec.Showing().Key()
	if occ := inv.occupancy[key]; occ != nil {
		for _, s := range rec.Seats {
			if occ[s.Label] == rec.ID {
				delete(occ, s.Label)
			}
		}
		if len(occ) == 0 {
			delete(inv.occupancy, key)
		}
	}
	if o, ok := inv.orders[rec.ID]; ok {
		_ = o.MarkCancelled()
		delete(inv.orders, rec.ID)
	}
	inv.mu.Unlock()

	inv.log.WithFields(logrus.Fields{
		"booking_id": rec.ID,
		"seats":      rec.SeatLabels(),
	}).Info("booking cancelled, seats released")
	if err := inv.publisher.PublishBookingCancelled(ctx, rec); err != nil {
		inv.log.WithError(err).WithField("booking_id", rec.ID).Warn("publish booking cancelled failed")
	}
	return rec, nil
}

// Booking returns the finalized booking with the given id.
func (inv *Inventory) Booking(id string) (model.BookingRecord, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, b := range inv.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return model.BookingRecord{}, fmt.Errorf("booking %s: %w", id, ErrBookingNotFound)
}

// Bookings returns a copy of the global booking list in commit order.
func (inv *Inventory) Bookings() []model.BookingRecord {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return append([]model.BookingRecord{}, inv.bookings...)
}

// BookingsForUser returns the user's finalized bookings in commit order.
func (inv *Inventory) BookingsForUser(userID uint64) []model.BookingRecord {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := []model.BookingRecord{}
	for _, b := range inv.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// BookingsByShowDate returns bookings whose showtime falls on the given
// calendar day in loc.
func (inv *Inventory) BookingsByShowDate(day time.Time, loc *time.Location) []model.BookingRecord {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := []model.BookingRecord{}
	for _, b := range inv.bookings {
		by, bm, bd := b.Showtime.In(loc).Date()
		if by == y && bm == m && bd == d {
			out = append(out, b)
		}
	}
	return out
}
