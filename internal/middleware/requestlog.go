package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/logging"
)

// RequestLogger tags each request with an X-Request-ID (reusing the
// caller's when present), stores a request-scoped logrus entry in the
// request context and logs one line when the handler returns.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			entry := logrus.WithFields(logrus.Fields{
				"request_id": rid,
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.SetRequest(req.WithContext(logging.ToContext(req.Context(), entry)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"route":      c.Path(),
			}
			if id, ok := UserID(c); ok {
				fields["user_id"] = id
			}
			e := entry.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				e.WithError(err).Error("request failed")
			case c.Response().Status >= 400:
				e.Warn("request rejected")
			default:
				e.Info("request served")
			}
			return nil
		}
	}
}
