package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

// PublicHandler serves the unauthenticated catalog: cinemas, movies,
// showings, seat maps and snacks.
type PublicHandler struct {
	Cinemas *repository.CinemaRepo
	Movies  *repository.MovieRepo
	Svc     *service.BookingService
}

func NewPublicHandler(cinemas *repository.CinemaRepo, movies *repository.MovieRepo, svc *service.BookingService) *PublicHandler {
	return &PublicHandler{Cinemas: cinemas, Movies: movies, Svc: svc}
}

// PublicCinema is the public view of a cinema.
type PublicCinema struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description,omitempty"`
	Capacity    int      `json:"capacity"`
	Has3D       bool     `json:"has_3d"`
	Rows        []string `json:"rows"`
	Columns     int      `json:"columns"`
	MovieIDs    []uint64 `json:"movie_ids"`
}

func toPublicCinema(c *model.Cinema) PublicCinema {
	ids := c.MovieIDs
	if ids == nil {
		ids = []uint64{}
	}
	return PublicCinema{
		ID:          c.ID,
		Name:        c.Name,
		DisplayName: c.DisplayName(),
		Description: c.Description,
		Capacity:    c.Capacity,
		Has3D:       c.Has3D,
		Rows:        c.Rows,
		Columns:     c.Columns,
		MovieIDs:    ids,
	}
}

// seatView is one entry of a seat map.
type seatView struct {
	Label      string      `json:"label"`
	Row        string      `json:"row"`
	Column     int         `json:"column"`
	Tier       model.Tier  `json:"tier"`
	PriceCents model.Cents `json:"price_cents"`
	Price      string      `json:"price"`
	Occupied   bool        `json:"occupied"`
}

// ListCinemas returns all cinemas.
func (h *PublicHandler) ListCinemas(c echo.Context) error {
	cinemas, err := h.Cinemas.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]PublicCinema, 0, len(cinemas))
	for _, cin := range cinemas {
		out = append(out, toPublicCinema(cin))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetCinema returns one cinema.
func (h *PublicHandler) GetCinema(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cin, err := h.Cinemas.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPublicCinema(cin))
}

// ListMovies returns active movies.  Optional query parameters:
// cinema_id, genre (case-insensitive) and q (title or director).
func (h *PublicHandler) ListMovies(c echo.Context) error {
	var f repository.MovieFilter
	if raw := c.QueryParam("cinema_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema_id"})
		}
		f.CinemaID = id
	}
	f.Genre = c.QueryParam("genre")
	f.Search = c.QueryParam("q")
	movies, err := h.Movies.Filter(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	for _, m := range movies {
		m.Showtimes = m.SortedShowtimes()
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

// GetMovie returns one movie with its schedule in ascending order.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	m.Showtimes = m.SortedShowtimes()
	return c.JSON(http.StatusOK, m)
}

// ListShowings returns the movie's showings with seat availability.
func (h *PublicHandler) ListShowings(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	shows, err := h.Svc.ListShowings(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shows})
}

// GetSeats returns the seat map of /movies/:id/seats?showtime=RFC3339.
func (h *PublicHandler) GetSeats(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	st, err := parseShowtime(c.QueryParam("showtime"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	seats, err := h.Svc.ResolveSeats(c.Request().Context(), id, st)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]seatView, 0, len(seats))
	free := 0
	for _, s := range seats {
		if !s.Occupied {
			free++
		}
		out = append(out, seatView{
			Label:      s.Label,
			Row:        s.Row,
			Column:     s.Column,
			Tier:       s.Tier,
			PriceCents: s.Price(),
			Price:      s.Price().String(),
			Occupied:   s.Occupied,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie_id":  id,
		"showtime":  st.Format(time.RFC3339),
		"available": free,
		"items":     out,
	})
}

// ListSnacks returns the snacks that can be ordered.
func (h *PublicHandler) ListSnacks(c echo.Context) error {
	snacks, err := h.Svc.ListSnacks(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": snacks})
}
