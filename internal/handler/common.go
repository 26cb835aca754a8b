// Package handler exposes the HTTP handlers of the booking API.
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/booking"
	"github.com/iliyamo/cinebook/internal/inventory"
	"github.com/iliyamo/cinebook/internal/logging"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

var seatLabelRe = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9]{1,3}$`)

var paymentMethodFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, ok := model.ParsePaymentMethod(fl.Field().String())
	return ok
}

var seatLabelFunc validator.Func = func(fl validator.FieldLevel) bool {
	return seatLabelRe.MatchString(fl.Field().String())
}

// NewValidator returns a validator with the custom "paymethod" and
// "seatlabel" tags registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("paymethod", paymentMethodFunc)
	_ = v.RegisterValidation("seatlabel", seatLabelFunc)
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// bindValid binds the request body into dst and validates it.  It writes
// the 400 response itself and returns false on failure.
func bindValid(c echo.Context, dst interface{}) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[jsonFieldName(fe)] = fe.Tag()
			}
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

func jsonFieldName(fe validator.FieldError) string {
	return toSnake(fe.Field())
}

// toSnake turns a Go field name such as SnackID into snack_id.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := s[i-1] >= 'a' && s[i-1] <= 'z'
			nextLower := i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// getUserID returns the authenticated user id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// parseShowtime accepts RFC 3339 timestamps.  An unescaped "+" in a
// query string arrives as a space, so spaces are read back as "+".
func parseShowtime(raw string) (time.Time, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "+")
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("showtime must be RFC 3339, e.g. 2026-05-01T19:30:00+08:00")
	}
	return model.NormalizeShowtime(t), nil
}

// parseDate parses YYYY-MM-DD in loc; an empty string means today.
func parseDate(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

// indexToRowLabel converts a zero-based index to a row label: A..Z, AA, AB...
func indexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

type errMapping struct {
	err    error
	status int
}

var errorStatus = []errMapping{
	{repository.ErrForbidden, http.StatusForbidden},
	{repository.ErrInvalidCredentials, http.StatusUnauthorized},

	{repository.ErrCinemaNotFound, http.StatusNotFound},
	{repository.ErrMovieNotFound, http.StatusNotFound},
	{repository.ErrSnackNotFound, http.StatusNotFound},
	{repository.ErrUserNotFound, http.StatusNotFound},
	{repository.ErrShowtimeNotFound, http.StatusNotFound},
	{inventory.ErrUnknownShowing, http.StatusNotFound},
	{inventory.ErrBookingNotFound, http.StatusNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound},
	{service.ErrSeatNotFound, http.StatusNotFound},
	{service.ErrNotSelected, http.StatusNotFound},

	{booking.ErrCapacityExceeded, http.StatusConflict},
	{booking.ErrDuplicateSeat, http.StatusConflict},
	{booking.ErrWrongShowing, http.StatusConflict},
	{booking.ErrSeatOccupied, http.StatusConflict},
	{booking.ErrOrderClosed, http.StatusConflict},
	{booking.ErrSnackUnavailable, http.StatusConflict},
	{booking.ErrEmptyOrder, http.StatusConflict},
	{booking.ErrAlreadyFinalized, http.StatusConflict},
	{booking.ErrNotFinalized, http.StatusConflict},
	{inventory.ErrUnpaidFinalization, http.StatusConflict},
	{inventory.ErrSeatUnavailable, http.StatusConflict},
	{repository.ErrUsernameTaken, http.StatusConflict},
	{repository.ErrDuplicateShowtime, http.StatusConflict},
	{repository.ErrConflict, http.StatusConflict},

	{booking.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{booking.ErrPaymentDeclined, http.StatusPaymentRequired},
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": msg}.  Seat conflicts also list
// the taken labels.  Unmapped errors are logged and hidden.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).WithError(err).Error("unhandled error")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	body := echo.Map{"error": err.Error()}
	var conflict *inventory.SeatConflictError
	if errors.As(err, &conflict) {
		body["seats"] = conflict.Labels
	}
	return c.JSON(status, body)
}
