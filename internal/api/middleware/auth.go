package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

// Auth resolves the bearer token through auth and injects the user and the raw
// token into the context under "user" and "token". Rejected tokens stop the
// chain with 401; store failures are passed on to the error handler.
func Auth(auth ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthenticated()
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthenticated()
			}
			token := strings.TrimSpace(parts[1])
			if token == "" {
				return unauthenticated()
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrInvalidToken) {
					return unauthenticated()
				}
				return err
			}

			c.Set("user", user)
			c.Set("token", token)

			return next(c)
		}
	}
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
}
