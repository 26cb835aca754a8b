// Package service is the application boundary used by the HTTP handlers:
// it ties the catalog stores, the order aggregate and the inventory
// together and publishes booking events.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/booking"
	"github.com/iliyamo/cinebook/internal/inventory"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/report"
	"github.com/iliyamo/cinebook/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("booking not found")
	ErrSeatNotFound  = errors.New("seat does not exist in this cinema")
	// ErrNotSelected is returned when removing a seat or snack that is
	// not part of the order.
	ErrNotSelected = errors.New("item is not selected")
)

// ShowingInfo describes one scheduled showing of a movie.
type ShowingInfo struct {
	MovieID        uint64    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	CinemaID       uint64    `json:"cinema_id"`
	CinemaName     string    `json:"cinema_name"`
	Showtime       time.Time `json:"showtime"`
	SeatsTotal     int       `json:"seats_total"`
	SeatsAvailable int       `json:"seats_available"`
}

// BookingService implements the customer booking workflow.  Orders are
// kept in memory for the lifetime of the process, keyed by id.
type BookingService struct {
	cinemas  *repository.CinemaRepo
	movies   *repository.MovieRepo
	snacks   *repository.SnackRepo
	users    *repository.UserRepo
	inv      *inventory.Inventory
	reportTZ *time.Location
	now      func() time.Time
	log      *logrus.Entry

	mu     sync.RWMutex
	orders map[string]*booking.Order
}

// Deps groups the collaborators of BookingService.
type Deps struct {
	Cinemas   *repository.CinemaRepo
	Movies    *repository.MovieRepo
	Snacks    *repository.SnackRepo
	Users     *repository.UserRepo
	Inventory *inventory.Inventory
	ReportTZ  *time.Location
	Now       func() time.Time
}

func NewBookingService(d Deps) *BookingService {
	if d.ReportTZ == nil {
		d.ReportTZ = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &BookingService{
		cinemas:  d.Cinemas,
		movies:   d.Movies,
		snacks:   d.Snacks,
		users:    d.Users,
		inv:      d.Inventory,
		reportTZ: d.ReportTZ,
		now:      d.Now,
		log:      logrus.WithField("component", "booking-service"),
		orders:   make(map[string]*booking.Order),
	}
}

// ReportLocation is the zone used for report day boundaries.
func (s *BookingService) ReportLocation() *time.Location { return s.reportTZ }

// ListShowings returns the movie's schedule in ascending order with the
// number of free seats per showing.
func (s *BookingService) ListShowings(ctx context.Context, movieID uint64) ([]ShowingInfo, error) {
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	cinema, err := s.cinemas.GetByID(ctx, movie.CinemaID)
	if err != nil {
		return nil, err
	}
	total := len(cinema.Template())
	out := make([]ShowingInfo, 0, len(movie.Showtimes))
	for _, st := range movie.SortedShowtimes() {
		sh := model.NewShowing(cinema.ID, movie.ID, st)
		out = append(out, ShowingInfo{
			MovieID:        movie.ID,
			MovieTitle:     movie.Title,
			CinemaID:       cinema.ID,
			CinemaName:     cinema.DisplayName(),
			Showtime:       sh.Showtime,
			SeatsTotal:     total,
			SeatsAvailable: total - len(s.inv.OccupiedLabels(sh)),
		})
	}
	return out, nil
}

// ResolveSeats returns the seat map of a showing.
func (s *BookingService) ResolveSeats(ctx context.Context, movieID uint64, showtime time.Time) ([]model.SeatInstance, error) {
	return s.inv.Resolve(ctx, movieID, showtime)
}

// StartBooking opens an order for userID on a published showing.
func (s *BookingService) StartBooking(ctx context.Context, userID, movieID uint64, showtime time.Time) (booking.Snapshot, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return booking.Snapshot{}, err
	}
	sh, movie, _, err := s.inv.LookupShowing(ctx, movieID, showtime)
	if err != nil {
		return booking.Snapshot{}, err
	}
	if !movie.IsActive {
		return booking.Snapshot{}, repository.ErrMovieNotFound
	}
	o := booking.New(userID, sh, s.now())
	s.mu.Lock()
	s.orders[o.ID()] = o
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"booking_id": o.ID(),
		"user_id":    userID,
		"movie_id":   movieID,
		"showtime":   sh.Showtime.Format(time.RFC3339),
	}).Debug("booking started")
	return o.Snapshot(), nil
}

// order returns the caller's order.  Orders of other users are
// reported as forbidden.
func (s *BookingService) order(userID uint64, orderID string) (*booking.Order, error) {
	s.mu.RLock()
	o, ok := s.orders[orderID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.UserID() != userID {
		return nil, repository.ErrForbidden
	}
	return o, nil
}

// GetOrder returns a snapshot of the caller's order in any state.
func (s *BookingService) GetOrder(ctx context.Context, userID uint64, orderID string) (booking.Snapshot, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	return o.Snapshot(), nil
}

// AddSeat selects the seat with label for the order's showing and
// returns the new total.  Seats already sold are rejected immediately;
// Finalize re-checks under the inventory lock.
func (s *BookingService) AddSeat(ctx context.Context, userID uint64, orderID, label string) (model.Cents, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return 0, err
	}
	seat, err := s.seatFor(ctx, o.Showing(), label)
	if err != nil {
		return 0, err
	}
	seat.Occupied = s.inv.IsOccupied(o.Showing(), seat.Label)
	if err := o.AddSeat(seat); err != nil {
		return o.Total(), err
	}
	return o.Total(), nil
}

// RemoveSeat deselects the seat with label and returns the new total.
func (s *BookingService) RemoveSeat(ctx context.Context, userID uint64, orderID, label string) (model.Cents, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return 0, err
	}
	seat, err := s.seatFor(ctx, o.Showing(), label)
	if err != nil {
		return 0, err
	}
	if !o.RemoveSeat(seat) {
		return o.Total(), notRemoved(o)
	}
	return o.Total(), nil
}

func (s *BookingService) seatFor(ctx context.Context, sh model.Showing, label string) (model.SeatInstance, error) {
	cinema, err := s.cinemas.GetByID(ctx, sh.CinemaID)
	if err != nil {
		return model.SeatInstance{}, err
	}
	t, ok := cinema.TemplateSeat(strings.ToUpper(strings.TrimSpace(label)))
	if !ok {
		return model.SeatInstance{}, ErrSeatNotFound
	}
	return model.NewSeatInstance(t, sh), nil
}

func notRemoved(o *booking.Order) error {
	if o.Status() != model.StatusOpen {
		return booking.ErrOrderClosed
	}
	return ErrNotSelected
}

// AddSnack appends a snack from the catalog and returns the new total.
func (s *BookingService) AddSnack(ctx context.Context, userID uint64, orderID string, snackID uint64) (model.Cents, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return 0, err
	}
	snack, err := s.snacks.GetByID(ctx, snackID)
	if err != nil {
		return o.Total(), err
	}
	if err := o.AddSnack(snack); err != nil {
		return o.Total(), err
	}
	return o.Total(), nil
}

// RemoveSnack removes one unit of a snack and returns the new total.
func (s *BookingService) RemoveSnack(ctx context.Context, userID uint64, orderID string, snackID uint64) (model.Cents, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return 0, err
	}
	if !o.RemoveSnack(snackID) {
		return o.Total(), notRemoved(o)
	}
	return o.Total(), nil
}

// RecordPayment records the outcome reported by the payment collaborator.
func (s *BookingService) RecordPayment(ctx context.Context, userID uint64, orderID string, p booking.PaymentOutcome) error {
	o, err := s.order(userID, orderID)
	if err != nil {
		return err
	}
	if err := o.RecordPayment(p); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"booking_id": orderID, "method": p.Method, "total": o.Total().String()}).Info("payment recorded")
	return nil
}

// Finalize commits a paid order to the inventory.
func (s *BookingService) Finalize(ctx context.Context, userID uint64, orderID string) (model.BookingRecord, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return model.BookingRecord{}, err
	}
	return s.inv.Finalize(ctx, o)
}

// Cancel ends an order.  An order that was never finalized is
// abandoned; a finalized one is removed from the booking list and its
// seats are released.
func (s *BookingService) Cancel(ctx context.Context, userID uint64, orderID string) (booking.Snapshot, error) {
	o, err := s.order(userID, orderID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	switch o.Status() {
	case model.StatusFinalized:
		if _, err := s.inv.Cancel(ctx, orderID); err != nil {
			return booking.Snapshot{}, err
		}
	default:
		if err := o.Abandon(); err != nil {
			return booking.Snapshot{}, err
		}
	}
	return o.Snapshot(), nil
}

// Abandon discards an unfinalized order.
func (s *BookingService) Abandon(ctx context.Context, userID uint64, orderID string) error {
	o, err := s.order(userID, orderID)
	if err != nil {
		return err
	}
	return o.Abandon()
}

// ListSnacks returns the snacks that can currently be ordered.
func (s *BookingService) ListSnacks(ctx context.Context) ([]model.Snack, error) {
	return s.snacks.ListAvailable(ctx)
}

// BookingsForUser returns the user's finalized bookings, newest first.
func (s *BookingService) BookingsForUser(ctx context.Context, userID uint64) []model.BookingRecord {
	out := s.inv.BookingsForUser(userID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// BookingsByShowDate returns bookings whose showtime falls on day in the
// report zone.
func (s *BookingService) BookingsByShowDate(ctx context.Context, day time.Time) []model.BookingRecord {
	return s.inv.BookingsByShowDate(day, s.reportTZ)
}

// SalesReport aggregates bookings created between from and to
// (inclusive calendar days in the report zone).
func (s *BookingService) SalesReport(ctx context.Context, from, to time.Time) report.SalesReport {
	return report.Generate(s.inv.Bookings(), from, to, s.reportTZ)
}
