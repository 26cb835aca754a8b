// Package booking implements the in-progress booking (order) aggregate:
// seat and snack selection for one customer and one showing, the running
// total, and the payment/finalization state machine.
package booking

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinebook/internal/model"
)

// MaxSeats is the hard per-booking seat cap.
const MaxSeats = 6

// PaymentOutcome is the result reported by whatever payment collaborator
// the caller uses.  The aggregate only records it.
type PaymentOutcome struct {
	Method    string
	Succeeded bool
}

// Order accumulates selections for one showing.  The showing is fixed at
// construction.  All methods are safe for concurrent use.
//
// State machine: OPEN -> PAID -> FINALIZED -> CANCELLED, and
// OPEN|PAID -> ABANDONED.  Selections can only change while OPEN.
type Order struct {
	mu sync.Mutex

	id        string
	code      string
	userID    uint64
	showing   model.Showing
	seats     []model.SeatInstance
	snacks    []model.Snack
	total     model.Cents
	method    model.PaymentMethod
	status    model.OrderStatus
	createdAt time.Time
}

// Snapshot is a point-in-time copy of an order.
type Snapshot struct {
	ID               string               `json:"id"`
	ConfirmationCode string               `json:"confirmation_code"`
	UserID           uint64               `json:"user_id"`
	Showing          model.Showing        `json:"showing"`
	Seats            []model.SeatInstance `json:"seats"`
	Snacks           []model.Snack        `json:"snacks"`
	TotalCents       model.Cents          `json:"total_cents"`
	PaymentMethod    model.PaymentMethod  `json:"payment_method,omitempty"`
	Status           model.OrderStatus    `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
}

// New starts an open order for userID on the given showing.
func New(userID uint64, showing model.Showing, now time.Time) *Order {
	id := uuid.NewString()
	return &Order{
		id:        id,
		code:      ConfirmationCode(id),
		userID:    userID,
		showing:   model.NewShowing(showing.CinemaID, showing.MovieID, showing.Showtime),
		seats:     []model.SeatInstance{},
		snacks:    []model.Snack{},
		status:    model.StatusOpen,
		createdAt: now.UTC(),
	}
}

// ConfirmationCode derives the customer-facing code from a booking id:
// "CDO" followed by the first eight characters of the id, upper-cased.
func ConfirmationCode(id string) string {
	prefix := id
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "CDO" + strings.ToUpper(prefix)
}

func (o *Order) ID() string               { return o.id }
func (o *Order) ConfirmationCode() string { return o.code }
func (o *Order) UserID() uint64           { return o.userID }
func (o *Order) Showing() model.Showing   { return o.showing }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }

// Status returns the current lifecycle state.
func (o *Order) Status() model.OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Total returns the current total.
func (o *Order) Total() model.Cents {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.total
}

// Seats returns a copy of the selected seats in selection order.
func (o *Order) Seats() []model.SeatInstance {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.SeatInstance{}, o.seats...)
}

// Snacks returns a copy of the selected snacks in selection order.
func (o *Order) Snacks() []model.Snack {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.Snack{}, o.snacks...)
}

// Snapshot returns a consistent copy of the whole order.
func (o *Order) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Order) snapshotLocked() Snapshot {
	return Snapshot{
		ID:               o.id,
		ConfirmationCode: o.code,
		UserID:           o.userID,
		Showing:          o.showing,
		Seats:            append([]model.SeatInstance{}, o.seats...),
		Snacks:           append([]model.Snack{}, o.snacks...),
		TotalCents:       o.total,
		PaymentMethod:    o.method,
		Status:           o.status,
		CreatedAt:        o.createdAt,
	}
}

// AddSeat selects a seat.  On any error the order is unchanged.
func (o *Order) AddSeat(seat model.SeatInstance) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != model.StatusOpen {
		return ErrOrderClosed
	}
	if seat.Showing().Key() != o.showing.Key() {
		return ErrWrongShowing
	}
	if seat.Occupied {
		return ErrSeatOccupied
	}
	key := seat.Key()
	for _, s := range o.seats {
		if s.Key() == key {
			return ErrDuplicateSeat
		}
	}
	if len(o.seats) >= MaxSeats {
		return ErrCapacityExceeded
	}
	seat.Showtime = o.showing.Showtime
	o.seats = append(o.seats, seat)
	o.recompute()
	return nil
}

// RemoveSeat deselects the seat equal to seat and reports whether one
// was removed.  Nothing is removed once the order has left OPEN.
func (o *Order) RemoveSeat(seat model.SeatInstance) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != model.StatusOpen {
		return false
	}
	key := seat.Key()
	for i, s := range o.seats {
		if s.Key() == key {
			o.seats = append(o.seats[:i], o.seats[i+1:]...)
			o.recompute()
			return true
		}
	}
	return false
}

// AddSnack appends a snack.  There is no cap on snack count.
func (o *Order) AddSnack(snack model.Snack) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != model.StatusOpen {
		return ErrOrderClosed
	}
	if !snack.IsAvailable {
		return ErrSnackUnavailable
	}
	o.snacks = append(o.snacks, snack)
	o.recompute()
	return nil
}

// RemoveSnack removes the first selected snack with the given id.
func (o *Order) RemoveSnack(snackID uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != model.StatusOpen {
		return false
	}
	for i, s := range o.snacks {
		if s.ID == snackID {
			o.snacks = append(o.snacks[:i], o.snacks[i+1:]...)
			o.recompute()
			return true
		}
	}
	return false
}

// recompute writes total = sum of seat prices + sum of snack prices.
// Callers hold o.mu.
func (o *Order) recompute() {
	var total model.Cents
	for _, s := range o.seats {
		total += s.Price()
	}
	for _, s := range o.snacks {
		total += s.Price
	}
	o.total = total
}

// RecordPayment records a payment outcome.  A successful outcome moves
// the order to PAID; a declined one leaves it OPEN.
func (o *Order) RecordPayment(p PaymentOutcome) error {
	method, ok := model.ParsePaymentMethod(p.Method)
	if !ok {
		return ErrInvalidPaymentMethod
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != model.StatusOpen {
		return ErrOrderClosed
	}
	if len(o.seats) == 0 {
		return ErrEmptyOrder
	}
	if !p.Succeeded {
		return ErrPaymentDeclined
	}
	o.method = method
	o.status = model.StatusPaid
	return nil
}

// Abandon discards an order that was never finalized.  It is terminal and
// has no inventory effect.
func (o *Order) Abandon() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.status {
	case model.StatusOpen, model.StatusPaid:
		o.status = model.StatusAbandoned
		return nil
	case model.StatusFinalized:
		return ErrAlreadyFinalized
	}
	return ErrOrderClosed
}

// Commit runs fn with a snapshot of a paid order while holding the order
// lock, and marks the order FINALIZED when fn succeeds.  fn must not call
// back into the order.
func (o *Order) Commit(fn func(Snapshot) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.status {
	case model.StatusPaid:
	case model.StatusFinalized:
		return ErrAlreadyFinalized
	default:
		return ErrNotPaid
	}
	if err := fn(o.snapshotLocked()); err != nil {
		return err
	}
	o.status = model.StatusFinalized
	return nil
}

// MarkCancelled moves a finalized order to CANCELLED.
func (o *Order) MarkCancelled() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != model.StatusFinalized {
		return ErrNotFinalized
	}
	o.status = model.StatusCancelled
	return nil
}
