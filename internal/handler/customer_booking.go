package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/booking"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/service"
)

// CustomerHandler drives the booking workflow for the authenticated
// customer.  Every handler checks the order belongs to the caller.
type CustomerHandler struct {
	Svc *service.BookingService
}

func NewCustomerHandler(svc *service.BookingService) *CustomerHandler {
	return &CustomerHandler{Svc: svc}
}

type startBookingReq struct {
	MovieID  uint64    `json:"movie_id" validate:"required"`
	Showtime time.Time `json:"showtime" validate:"required"`
}

type addSeatReq struct {
	Label string `json:"label" validate:"required,seatlabel"`
}

type addSnackReq struct {
	SnackID uint64 `json:"snack_id" validate:"required"`
}

type paymentReq struct {
	Method string `json:"method" validate:"required,paymethod"`
	// Succeeded is the outcome reported by the payment simulation.
	// Omitted means approved.
	Succeeded *bool `json:"succeeded"`
}

type totalResp struct {
	BookingID  string      `json:"booking_id"`
	TotalCents model.Cents `json:"total_cents"`
	Total      string      `json:"total"`
}

// orderView adds the formatted total to a snapshot.
type orderView struct {
	booking.Snapshot
	Total string `json:"total"`
}

func viewOf(s booking.Snapshot) orderView {
	return orderView{Snapshot: s, Total: s.TotalCents.String()}
}

func (h *CustomerHandler) total(c echo.Context, id string, total model.Cents, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, totalResp{BookingID: id, TotalCents: total, Total: total.String()})
}

// StartBooking opens an order on a showing.
func (h *CustomerHandler) StartBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	var req startBookingReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	snap, err := h.Svc.StartBooking(c.Request().Context(), uid, req.MovieID, req.Showtime)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(snap))
}

func (h *CustomerHandler) unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// GetBooking returns the caller's order in any state.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	snap, err := h.Svc.GetOrder(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(snap))
}

// AddSeat selects a seat by label.
func (h *CustomerHandler) AddSeat(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	var req addSeatReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	id := c.Param("id")
	total, err := h.Svc.AddSeat(c.Request().Context(), uid, id, req.Label)
	return h.total(c, id, total, err)
}

// RemoveSeat deselects the seat in the :label path parameter.
func (h *CustomerHandler) RemoveSeat(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	id := c.Param("id")
	total, err := h.Svc.RemoveSeat(c.Request().Context(), uid, id, c.Param("label"))
	return h.total(c, id, total, err)
}

// AddSnack appends one snack.
func (h *CustomerHandler) AddSnack(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	var req addSnackReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	id := c.Param("id")
	total, err := h.Svc.AddSnack(c.Request().Context(), uid, id, req.SnackID)
	return h.total(c, id, total, err)
}

// RemoveSnack removes one unit of the snack in :snackID.
func (h *CustomerHandler) RemoveSnack(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	snackID, err := strconv.ParseUint(c.Param("snackID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid snack id"})
	}
	id := c.Param("id")
	total, err := h.Svc.RemoveSnack(c.Request().Context(), uid, id, snackID)
	return h.total(c, id, total, err)
}

// Pay records the payment outcome.
func (h *CustomerHandler) Pay(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	var req paymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	outcome := booking.PaymentOutcome{Method: req.Method, Succeeded: req.Succeeded == nil || *req.Succeeded}
	id := c.Param("id")
	if err := h.Svc.RecordPayment(c.Request().Context(), uid, id, outcome); err != nil {
		return writeError(c, err)
	}
	snap, err := h.Svc.GetOrder(c.Request().Context(), uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(snap))
}

// Finalize commits a paid order and returns the booking record.
func (h *CustomerHandler) Finalize(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	rec, err := h.Svc.Finalize(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking": rec,
		"total":   rec.TotalCents.String(),
	})
}

// Cancel abandons an unfinalized order or cancels a finalized booking,
// releasing its seats.
func (h *CustomerHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	snap, err := h.Svc.Cancel(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(snap))
}

// MyBookings lists the caller's finalized bookings, newest first.
func (h *CustomerHandler) MyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return h.unauthorized(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.Svc.BookingsForUser(c.Request().Context(), uid)})
}
