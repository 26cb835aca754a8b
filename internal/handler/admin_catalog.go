package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/logging"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

// Purger drops cached catalog responses after a mutation.
type Purger interface {
	Purge(ctx context.Context) error
}

// AdminHandler serves catalog management and reporting for ADMIN users.
type AdminHandler struct {
	Cinemas *repository.CinemaRepo
	Movies  *repository.MovieRepo
	Svc     *service.BookingService
	Cache   Purger
	Now     func() time.Time
}

func NewAdminHandler(cinemas *repository.CinemaRepo, movies *repository.MovieRepo, svc *service.BookingService, cache Purger) *AdminHandler {
	return &AdminHandler{Cinemas: cinemas, Movies: movies, Svc: svc, Cache: cache, Now: time.Now}
}

type createCinemaReq struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Capacity    int    `json:"capacity" validate:"omitempty,min=1"`
	Has3D       bool   `json:"has_3d"`
	// Rows and Columns describe the seat grid; zero selects the 10x10
	// default layout.
	Rows    int `json:"rows" validate:"omitempty,min=1,max=52"`
	Columns int `json:"columns" validate:"omitempty,min=1,max=50"`
}

type createMovieReq struct {
	CinemaID        uint64      `json:"cinema_id" validate:"required"`
	Title           string      `json:"title" validate:"required,max=200"`
	Genre           string      `json:"genre" validate:"max=50"`
	DurationMinutes int         `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	Director        string      `json:"director" validate:"max=100"`
	Synopsis        string      `json:"synopsis" validate:"max=2000"`
	Rating          string      `json:"rating" validate:"max=10"`
	IsActive        *bool       `json:"is_active"`
	Showtimes       []time.Time `json:"showtimes"`
}

type updateMovieReq struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Genre           *string `json:"genre" validate:"omitempty,max=50"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	Director        *string `json:"director" validate:"omitempty,max=100"`
	Synopsis        *string `json:"synopsis" validate:"omitempty,max=2000"`
	Rating          *string `json:"rating" validate:"omitempty,max=10"`
	IsActive        *bool   `json:"is_active"`
}

type showtimeReq struct {
	Showtime time.Time `json:"showtime" validate:"required"`
}

func (h *AdminHandler) purge(c echo.Context) {
	if h.Cache == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Cache.Purge(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("catalog cache purge failed")
	}
}

// CreateCinema adds a venue and generates its seat template.
func (h *AdminHandler) CreateCinema(c echo.Context) error {
	var req createCinemaReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	var rows []string
	cols := req.Columns
	if req.Rows > 0 {
		rows = make([]string, req.Rows)
		for i := range rows {
			rows[i] = indexToRowLabel(i)
		}
		if cols == 0 {
			cols = model.DefaultColumns
		}
	}
	cin := model.NewCinema(req.Name, req.Description, req.Capacity, req.Has3D, rows, cols)
	if err := h.Cinemas.Create(c.Request().Context(), cin); err != nil {
		return writeError(c, err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, toPublicCinema(cin))
}

// CreateMovie adds a movie to a cinema.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	m := &model.Movie{
		CinemaID:        req.CinemaID,
		Title:           req.Title,
		Genre:           req.Genre,
		DurationMinutes: req.DurationMinutes,
		Director:        req.Director,
		Synopsis:        req.Synopsis,
		Rating:          req.Rating,
		IsActive:        req.IsActive == nil || *req.IsActive,
		Showtimes:       dedupeShowtimes(req.Showtimes),
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return writeError(c, err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, m)
}

func dedupeShowtimes(in []time.Time) []time.Time {
	seen := make(map[int64]bool, len(in))
	out := make([]time.Time, 0, len(in))
	for _, t := range in {
		t = model.NormalizeShowtime(t)
		if seen[t.Unix()] {
			continue
		}
		seen[t.Unix()] = true
		out = append(out, t)
	}
	return out
}

// UpdateMovie applies a partial update.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateMovieReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	m, err := h.Movies.Update(c.Request().Context(), id, repository.MovieUpdate{
		Title:           req.Title,
		Genre:           req.Genre,
		DurationMinutes: req.DurationMinutes,
		Director:        req.Director,
		Synopsis:        req.Synopsis,
		Rating:          req.Rating,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	h.purge(c)
	return c.JSON(http.StatusOK, m)
}

// DeleteMovie removes a movie and detaches it from its cinema.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	h.purge(c)
	return c.NoContent(http.StatusNoContent)
}

// AddShowtime schedules a new showtime.
func (h *AdminHandler) AddShowtime(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req showtimeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Movies.AddShowtime(ctx, id, req.Showtime); err != nil {
		return writeError(c, err)
	}
	h.purge(c)
	times, err := h.Movies.ListShowtimes(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie_id": id, "showtimes": times})
}

// RemoveShowtime unschedules ?showtime=RFC3339.  Open orders on that
// showing can no longer be finalized.
func (h *AdminHandler) RemoveShowtime(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	st, err := parseShowtime(c.QueryParam("showtime"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Movies.RemoveShowtime(c.Request().Context(), id, st); err != nil {
		return writeError(c, err)
	}
	h.purge(c)
	return c.NoContent(http.StatusNoContent)
}

// BookingsByDate lists bookings whose showtime falls on ?date=YYYY-MM-DD
// (today when omitted) in the report time zone.
func (h *AdminHandler) BookingsByDate(c echo.Context) error {
	day, err := parseDate(c.QueryParam("date"), h.Svc.ReportLocation(), h.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	items := h.Svc.BookingsByShowDate(c.Request().Context(), day)
	return c.JSON(http.StatusOK, echo.Map{"date": day.Format("2006-01-02"), "items": items})
}

// SalesReport aggregates bookings created between ?from and ?to
// (YYYY-MM-DD, inclusive; both default to today).
func (h *AdminHandler) SalesReport(c echo.Context) error {
	loc := h.Svc.ReportLocation()
	now := h.Now()
	from, err := parseDate(c.QueryParam("from"), loc, now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := parseDate(c.QueryParam("to"), loc, now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not be before from"})
	}
	return c.JSON(http.StatusOK, h.Svc.SalesReport(c.Request().Context(), from, to))
}
