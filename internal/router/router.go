// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
)

// Handlers groups everything the routes need.  Cache and RateLimit may
// be pass-through middleware when Redis is unavailable.
type Handlers struct {
	Auth      *handler.AuthHandler
	Public    *handler.PublicHandler
	Customer  *handler.CustomerHandler
	Admin     *handler.AdminHandler
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// New builds an echo instance with the validator, the common middleware
// and every route registered.
func New(h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, h.JWTSecret)
	RegisterPublic(e, h.Public, passThrough(h.Cache))
	RegisterCustomer(e, h.Customer, h.JWTSecret, passThrough(h.RateLimit))
	RegisterAdmin(e, h.Admin, h.JWTSecret)
	return e
}

func passThrough(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login, registration and the guest flow under
// /v1/auth, plus the authenticated /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/guest", a.Guest)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
}

// RegisterPublic registers the catalog browse endpoints.  Showings and
// the seat map carry live availability and skip the response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/cinemas", p.ListCinemas, cache)
	g.GET("/cinemas/:id", p.GetCinema, cache)
	g.GET("/movies", p.ListMovies, cache)
	g.GET("/movies/:id", p.GetMovie, cache)
	g.GET("/movies/:id/showings", p.ListShowings)
	g.GET("/snacks", p.ListSnacks, cache)
	g.GET("/movies/:id/seats", p.GetSeats)
}

// RegisterCustomer registers the booking workflow.  Any authenticated
// user can book; admins included.  Mutations are rate limited.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("/bookings", h.StartBooking, limit)
	g.GET("/bookings/:id", h.GetBooking)
	g.POST("/bookings/:id/seats", h.AddSeat, limit)
	g.DELETE("/bookings/:id/seats/:label", h.RemoveSeat, limit)
	g.POST("/bookings/:id/snacks", h.AddSnack, limit)
	g.DELETE("/bookings/:id/snacks/:snackID", h.RemoveSnack, limit)
	g.POST("/bookings/:id/payment", h.Pay, limit)
	g.POST("/bookings/:id/finalize", h.Finalize, limit)
	g.DELETE("/bookings/:id", h.Cancel, limit)
	g.GET("/my-bookings", h.MyBookings)
}

// RegisterAdmin registers catalog management and reports under
// /v1/admin.  All routes require the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/cinemas", a.CreateCinema)
	g.POST("/movies", a.CreateMovie)
	g.PATCH("/movies/:id", a.UpdateMovie)
	g.DELETE("/movies/:id", a.DeleteMovie)
	g.POST("/movies/:id/showtimes", a.AddShowtime)
	g.DELETE("/movies/:id/showtimes", a.RemoveShowtime)
	g.GET("/bookings", a.BookingsByDate)
	g.GET("/reports/sales", a.SalesReport)
}
