package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/otenet/task-manager/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// ctxUser returns the identity attached by the Auth middleware. A missing user
// means the route was wired without the middleware; reject rather than guess.
func ctxUser(c echo.Context) (*domain.User, string, error) {
	user, _ := c.Get(ContextUserKey).(*domain.User)
	if user == nil {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
	}
	token, _ := c.Get(ContextTokenKey).(string)
	return user, token, nil
}
