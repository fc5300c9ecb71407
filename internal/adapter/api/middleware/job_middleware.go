package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JobMiddleware guards the internal job endpoints invoked by the external
// scheduler. Callers present a shared token; no user identity is involved.
type JobMiddleware struct {
	token string
}

func NewJobMiddleware(token string) *JobMiddleware {
	return &JobMiddleware{
		token: token,
	}
}

func (m *JobMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.token == "" {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Job endpoints are not configured")
		}

		presented := c.Request().Header.Get("X-Job-Token")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(m.token)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid job token")
		}

		return next(c)
	}
}
