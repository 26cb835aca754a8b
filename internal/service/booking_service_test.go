package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinebook/internal/booking"
	"github.com/iliyamo/cinebook/internal/inventory"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

var (
	showtime = time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC)
	now      = time.Date(2026, 4, 30, 10, 0, 0, 0, time.UTC)
)

type env struct {
	svc     *BookingService
	movieID uint64
	alice   uint64
	bob     uint64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	cinemas := repository.NewCinemaRepo()
	movies := repository.NewMovieRepo(cinemas)
	users := repository.NewUserRepo()
	snacks := repository.NewSnackRepo(repository.DefaultSnacks())

	c := model.NewCinema("Cinema 1", "", 0, false, nil, 0)
	require.NoError(t, cinemas.Create(ctx, c))
	m := &model.Movie{CinemaID: c.ID, Title: "Heneral Luna", IsActive: true,
		Showtimes: []time.Time{showtime.Add(3 * time.Hour), showtime}}
	require.NoError(t, movies.Create(ctx, m))

	alice, err := users.Create(ctx, "alice", "pw", "Alice", "", "", false, bcrypt.MinCost)
	require.NoError(t, err)
	bob, err := users.CreateGuest(ctx, "Bob", "", "")
	require.NoError(t, err)

	inv := inventory.New(movies, cinemas, users)
	svc := NewBookingService(Deps{
		Cinemas: cinemas, Movies: movies, Snacks: snacks, Users: users, Inventory: inv,
		Now: func() time.Time { return now },
	})
	return &env{svc: svc, movieID: m.ID, alice: alice.ID, bob: bob.ID}
}

func TestFullBookingFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	shows, err := e.svc.ListShowings(ctx, e.movieID)
	require.NoError(t, err)
	require.Len(t, shows, 2)
	assert.Equal(t, showtime, shows[0].Showtime)
	assert.Equal(t, 100, shows[0].SeatsAvailable)

	snap, err := e.svc.StartBooking(ctx, e.alice, e.movieID, showtime)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, snap.Status)

	total, err := e.svc.AddSeat(ctx, e.alice, snap.ID, "a1")
	require.NoError(t, err)
	assert.Equal(t, model.Cents(20000), total)
	total, err = e.svc.AddSeat(ctx, e.alice, snap.ID, "H1")
	require.NoError(t, err)
	assert.Equal(t, model.Cents(50000), total)
	total, err = e.svc.AddSnack(ctx, e.alice, snap.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.Cents(62000), total)

	_, err = e.svc.AddSeat(ctx, e.alice, snap.ID, "Z99")
	assert.ErrorIs(t, err, ErrSeatNotFound)
	_, err = e.svc.AddSnack(ctx, e.alice, snap.ID, 404)
	assert.ErrorIs(t, err, repository.ErrSnackNotFound)

	_, err = e.svc.Finalize(ctx, e.alice, snap.ID)
	assert.ErrorIs(t, err, inventory.ErrUnpaidFinalization)

	require.NoError(t, e.svc.RecordPayment(ctx, e.alice, snap.ID, booking.PaymentOutcome{Method: "GCash", Succeeded: true}))
	rec, err := e.svc.Finalize(ctx, e.alice, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cents(62000), rec.TotalCents)

	shows, err = e.svc.ListShowings(ctx, e.movieID)
	require.NoError(t, err)
	assert.Equal(t, 98, shows[0].SeatsAvailable)
	assert.Equal(t, 100, shows[1].SeatsAvailable)

	seats, err := e.svc.ResolveSeats(ctx, e.movieID, showtime)
	require.NoError(t, err)
	assert.True(t, seats[0].Occupied)

	mine := e.svc.BookingsForUser(ctx, e.alice)
	require.Len(t, mine, 1)
	assert.Equal(t, rec.ID, mine[0].ID)

	rep := e.svc.SalesReport(ctx, now, now)
	assert.Equal(t, 1, rep.TotalBookings)
	assert.Equal(t, model.Cents(62000), rep.TotalRevenue)
	assert.Len(t, e.svc.BookingsByShowDate(ctx, showtime), 1)
}

func TestOccupiedSeatRejectedAtSelection(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.svc.StartBooking(ctx, e.alice, e.movieID, showtime)
	require.NoError(t, err)
	_, err = e.svc.AddSeat(ctx, e.alice, first.ID, "C5")
	require.NoError(t, err)
	require.NoError(t, e.svc.RecordPayment(ctx, e.alice, first.ID, booking.PaymentOutcome{Method: "PayMaya", Succeeded: true}))
	_, err = e.svc.Finalize(ctx, e.alice, first.ID)
	require.NoError(t, err)

	second, err := e.svc.StartBooking(ctx, e.bob, e.movieID, showtime)
	require.NoError(t, err)
	_, err = e.svc.AddSeat(ctx, e.bob, second.ID, "C5")
	assert.ErrorIs(t, err, booking.ErrSeatOccupied)
	total, err := e.svc.AddSeat(ctx, e.bob, second.ID, "C6")
	require.NoError(t, err)
	assert.Equal(t, model.Cents(20000), total)
}

func TestOwnershipAndLookup(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	snap, err := e.svc.StartBooking(ctx, e.alice, e.movieID, showtime)
	require.NoError(t, err)

	_, err = e.svc.GetOrder(ctx, e.bob, snap.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = e.svc.AddSeat(ctx, e.bob, snap.ID, "A1")
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = e.svc.GetOrder(ctx, e.alice, "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = e.svc.StartBooking(ctx, e.alice, e.movieID, showtime.Add(time.Minute))
	assert.ErrorIs(t, err, inventory.ErrUnknownShowing)
	_, err = e.svc.StartBooking(ctx, 999, e.movieID, showtime)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestRemoveItems(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	snap, err := e.svc.StartBooking(ctx, e.alice, e.movieID, showtime)
	require.NoError(t, err)
	_, err = e.svc.AddSeat(ctx, e.alice, snap.ID, "J1")
	require.NoError(t, err)
	_, err = e.svc.AddSnack(ctx, e.alice, snap.ID, 5)
	require.NoError(t, err)

	total, err := e.svc.RemoveSeat(ctx, e.alice, snap.ID, "J1")
	require.NoError(t, err)
	assert.Equal(t, model.Cents(8000), total)
	_, err = e.svc.RemoveSeat(ctx, e.alice, snap.ID, "J1")
	assert.ErrorIs(t, err, ErrNotSelected)

	total, err = e.svc.RemoveSnack(ctx, e.alice, snap.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, model.Cents(0), total)

	require.NoError(t, e.svc.Abandon(ctx, e.alice, snap.ID))
	_, err = e.svc.RemoveSnack(ctx, e.alice, snap.ID, 5)
	assert.ErrorIs(t, err, booking.ErrOrderClosed)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	open, err := e.svc.StartBooking(ctx, e.alice, e.movieID, showtime)
	require.NoError(t, err)
	snap, err := e.svc.Cancel(ctx, e.alice, open.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, snap.Status)

	done, err := e.svc.StartBooking(ctx, e.alice, e.movieID, showtime)
	require.NoError(t, err)
	_, err = e.svc.AddSeat(ctx, e.alice, done.ID, "D4")
	require.NoError(t, err)
	require.NoError(t, e.svc.RecordPayment(ctx, e.alice, done.ID, booking.PaymentOutcome{Method: "Credit Card", Succeeded: true}))
	_, err = e.svc.Finalize(ctx, e.alice, done.ID)
	require.NoError(t, err)

	snap, err = e.svc.Cancel(ctx, e.alice, done.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, snap.Status)
	assert.Empty(t, e.svc.BookingsForUser(ctx, e.alice))

	seats, err := e.svc.ResolveSeats(ctx, e.movieID, showtime)
	require.NoError(t, err)
	for _, s := range seats {
		assert.False(t, s.Occupied, s.Label)
	}

	_, err = e.svc.Cancel(ctx, e.alice, done.ID)
	assert.ErrorIs(t, err, booking.ErrOrderClosed)
}
