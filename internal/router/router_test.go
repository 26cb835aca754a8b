package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/inventory"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

const testSecret = "router-test-secret"

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	return newAPIWithCache(t, nil)
}

func newAPIWithCache(t *testing.T, cache echo.MiddlewareFunc) *api {
	t.Helper()
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 60, BcryptCost: bcrypt.MinCost, ReportTZ: time.UTC}

	cinemas := repository.NewCinemaRepo()
	movies := repository.NewMovieRepo(cinemas)
	snacks := repository.NewSnackRepo(repository.DefaultSnacks())
	users := repository.NewUserRepo()
	_, err := users.Create(context.Background(), "admin", "admin123", "Administrator", "", "", true, cfg.BcryptCost)
	require.NoError(t, err)

	inv := inventory.New(movies, cinemas, users)
	svc := service.NewBookingService(service.Deps{
		Cinemas: cinemas, Movies: movies, Snacks: snacks, Users: users,
		Inventory: inv, ReportTZ: time.UTC,
	})
	e := New(Handlers{
		Auth:      handler.NewAuthHandler(cfg, users),
		Public:    handler.NewPublicHandler(cinemas, movies, svc),
		Customer:  handler.NewCustomerHandler(svc),
		Admin:     handler.NewAdminHandler(cinemas, movies, svc, nil),
		JWTSecret: testSecret,
		Cache:     cache,
	})
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authBody struct {
	User struct {
		ID   uint64 `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
}

func (a *api) login(username, password string) string {
	rec := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[authBody](a.t, rec).Access.Token
}

func (a *api) register(username string) string {
	rec := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": username, "password": "secret123", "full_name": "Test " + username,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](a.t, rec).Access.Token
}

// seedShowing creates a cinema with the default layout and one movie
// with a single showtime.
func (a *api) seedShowing(admin string, st time.Time) uint64 {
	rec := a.do(http.MethodPost, "/v1/admin/cinemas", admin, map[string]any{"name": "Cinema 1"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	cinemaID := decode[struct {
		ID uint64 `json:"id"`
	}](a.t, rec).ID

	rec = a.do(http.MethodPost, "/v1/admin/movies", admin, map[string]any{
		"cinema_id": cinemaID,
		"title":     "The Long Night",
		"genre":     "Drama",
		"showtimes": []time.Time{st},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		ID uint64 `json:"id"`
	}](a.t, rec).ID
}

type orderBody struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
}

type totalBody struct {
	TotalCents int64 `json:"total_cents"`
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin", "admin123")
	st := time.Date(2030, 5, 1, 19, 30, 0, 0, time.UTC)
	movieID := a.seedShowing(admin, st)
	alice := a.register("alice")

	rec := a.do(http.MethodPost, "/v1/bookings", alice, map[string]any{"movie_id": movieID, "showtime": st})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[orderBody](t, rec)
	assert.Equal(t, "OPEN", order.Status)
	base := "/v1/bookings/" + order.ID

	rec = a.do(http.MethodPost, base+"/seats", alice, map[string]string{"label": "A1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(20000), decode[totalBody](t, rec).TotalCents)

	rec = a.do(http.MethodPost, base+"/seats", alice, map[string]string{"label": "J1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(50000), decode[totalBody](t, rec).TotalCents)

	rec = a.do(http.MethodPost, base+"/snacks", alice, map[string]uint64{"snack_id": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(62000), decode[totalBody](t, rec).TotalCents)

	rec = a.do(http.MethodDelete, base+"/seats/J1", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(32000), decode[totalBody](t, rec).TotalCents)

	rec = a.do(http.MethodPost, base+"/finalize", alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "unpaid order must not finalize")

	rec = a.do(http.MethodPost, base+"/payment", alice, map[string]any{"method": "GCash", "succeeded": false})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = a.do(http.MethodPost, base+"/payment", alice, map[string]any{"method": "gcash"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PAID", decode[orderBody](t, rec).Status)

	rec = a.do(http.MethodPost, base+"/finalize", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	seatsPath := fmt.Sprintf("/v1/movies/%d/seats?showtime=%s", movieID, st.Format(time.RFC3339))
	rec = a.do(http.MethodGet, seatsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	seatMap := decode[struct {
		Available int `json:"available"`
		Items     []struct {
			Label    string `json:"label"`
			Occupied bool   `json:"occupied"`
		} `json:"items"`
	}](t, rec)
	assert.Equal(t, 99, seatMap.Available)
	for _, s := range seatMap.Items {
		assert.Equal(t, s.Label == "A1", s.Occupied, s.Label)
	}

	rec = a.do(http.MethodGet, "/v1/my-bookings", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[struct {
		Items []struct {
			ID         string `json:"id"`
			TotalCents int64  `json:"total_cents"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, order.ID, mine.Items[0].ID)
	assert.Equal(t, int64(32000), mine.Items[0].TotalCents)

	today := time.Now().UTC().Format("2006-01-02")
	rec = a.do(http.MethodGet, "/v1/admin/reports/sales?from="+today+"&to="+today, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rep := decode[struct {
		TotalBookings int   `json:"total_bookings"`
		TotalRevenue  int64 `json:"total_revenue_cents"`
	}](t, rec)
	assert.Equal(t, 1, rep.TotalBookings)
	assert.Equal(t, int64(32000), rep.TotalRevenue)

	rec = a.do(http.MethodGet, "/v1/admin/bookings?date=2030-05-01", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	byDate := decode[struct {
		Items []json.RawMessage `json:"items"`
	}](t, rec)
	assert.Len(t, byDate.Items, 1)
}

func TestSoldSeatIsRejected(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin", "admin123")
	st := time.Date(2030, 5, 2, 13, 0, 0, 0, time.UTC)
	movieID := a.seedShowing(admin, st)

	alice := a.register("alice")
	bob := a.register("bob")

	start := func(token string) string {
		rec := a.do(http.MethodPost, "/v1/bookings", token, map[string]any{"movie_id": movieID, "showtime": st})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return "/v1/bookings/" + decode[orderBody](t, rec).ID
	}
	aliceOrder := start(alice)
	bobOrder := start(bob)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, aliceOrder+"/seats", alice, map[string]string{"label": "B2"}).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, bobOrder+"/seats", bob, map[string]string{"label": "B2"}).Code)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, aliceOrder+"/payment", alice, map[string]string{"method": "PayMaya"}).Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, aliceOrder+"/finalize", alice, nil).Code)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, bobOrder+"/payment", bob, map[string]string{"method": "Credit Card"}).Code)
	rec := a.do(http.MethodPost, bobOrder+"/finalize", bob, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[struct {
		Seats []string `json:"seats"`
	}](t, rec)
	assert.Equal(t, []string{"B2"}, body.Seats)

	carol := a.register("carol")
	carolOrder := start(carol)
	rec = a.do(http.MethodPost, carolOrder+"/seats", carol, map[string]string{"label": "B2"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, aliceOrder, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "orders are private to their owner")
}

func TestCancelReleasesSeatOverHTTP(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin", "admin123")
	st := time.Date(2030, 6, 1, 21, 0, 0, 0, time.UTC)
	movieID := a.seedShowing(admin, st)
	alice := a.register("alice")

	rec := a.do(http.MethodPost, "/v1/bookings", alice, map[string]any{"movie_id": movieID, "showtime": st})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/v1/bookings/" + decode[orderBody](t, rec).ID
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, path+"/seats", alice, map[string]string{"label": "C3"}).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, path+"/payment", alice, map[string]string{"method": "GCash"}).Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, path+"/finalize", alice, nil).Code)

	rec = a.do(http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CANCELLED", decode[orderBody](t, rec).Status)

	seatsPath := fmt.Sprintf("/v1/movies/%d/seats?showtime=%s", movieID, st.Format(time.RFC3339))
	seatMap := decode[struct {
		Available int `json:"available"`
	}](t, a.do(http.MethodGet, seatsPath, "", nil))
	assert.Equal(t, 100, seatMap.Available)
}

func TestRequestValidation(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin", "admin123")
	st := time.Date(2030, 7, 1, 18, 0, 0, 0, time.UTC)
	movieID := a.seedShowing(admin, st)
	alice := a.register("alice")

	rec := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, rec).Fields
	assert.Equal(t, "required", fields["password"])

	rec = a.do(http.MethodPost, "/v1/bookings", alice, map[string]any{"movie_id": movieID, "showtime": st})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/v1/bookings/" + decode[orderBody](t, rec).ID

	rec = a.do(http.MethodPost, path+"/seats", alice, map[string]string{"label": "not a seat"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, path+"/seats", alice, map[string]string{"label": "Z9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, path+"/payment", alice, map[string]string{"method": "Cash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/v1/bookings", alice, map[string]any{"movie_id": movieID, "showtime": st.Add(time.Hour)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthGuards(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/my-bookings", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/me", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/admin/cinemas", alice, map[string]string{"name": "X"}).Code)

	rec := a.do(http.MethodPost, "/v1/auth/guest", "", map[string]string{"full_name": "Walk In"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	guest := decode[authBody](t, rec)
	assert.Equal(t, "CUSTOMER", guest.User.Role)

	rec = a.do(http.MethodGet, "/v1/me", guest.Access.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLiveAvailabilityRoutesSkipCache(t *testing.T) {
	marker := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-Cache", "MISS")
			return next(c)
		}
	}
	a := newAPIWithCache(t, marker)
	admin := a.login("admin", "admin123")
	st := time.Date(2030, 8, 1, 20, 0, 0, 0, time.UTC)
	movieID := a.seedShowing(admin, st)
	alice := a.register("alice")

	rec := a.do(http.MethodGet, "/v1/movies", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	showings := fmt.Sprintf("/v1/movies/%d/showings", movieID)
	rec = a.do(http.MethodGet, showings, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec = a.do(http.MethodPost, "/v1/bookings", alice, map[string]any{"movie_id": movieID, "showtime": st})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/v1/bookings/" + decode[orderBody](t, rec).ID
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, path+"/seats", alice, map[string]string{"label": "D4"}).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, path+"/payment", alice, map[string]string{"method": "GCash"}).Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, path+"/finalize", alice, nil).Code)

	rec = a.do(http.MethodGet, showings, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[struct {
		Items []struct {
			SeatsAvailable int `json:"seats_available"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 99, list.Items[0].SeatsAvailable)
}
