package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/otenet/task-manager/internal/core/domain"
)

type stubAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.authenticateFn(ctx, token)
}

func rejectAll(t *testing.T) *stubAuthenticator {
	return &stubAuthenticator{authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
		t.Fatalf("authenticator should not be called")
		return nil, nil
	}}
}

func runAuth(t *testing.T, auth *stubAuthenticator, header string) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(auth)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	alice := &domain.User{ID: "u1", Name: "Alice"}
	auth := &stubAuthenticator{authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
		if token != "tok-1" {
			t.Fatalf("unexpected token %q", token)
		}
		return alice, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(auth)(func(c echo.Context) error {
		called = true
		if c.Get("user") != alice {
			t.Fatalf("user not set")
		}
		if c.Get("token") != "tok-1" {
			t.Fatalf("token not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, called, _ := runAuth(t, rejectAll(t), "")
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		rec, called, _ := runAuth(t, rejectAll(t), header)
		if called {
			t.Fatalf("%q: should not reach next", header)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	for _, authErr := range []error{
		domain.ErrUnauthenticated,
		fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrInvalidToken),
		domain.ErrInvalidToken,
	} {
		auth := &stubAuthenticator{authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
			return nil, authErr
		}}
		rec, called, _ := runAuth(t, auth, "Bearer revoked")
		if called {
			t.Fatalf("%v: should not reach next", authErr)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", authErr, rec.Code)
		}
	}
}

func TestAuthMiddleware_StoreFailurePassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	auth := &stubAuthenticator{authenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
		return nil, boom
	}}

	_, called, err := runAuth(t, auth, "Bearer tok")
	if called {
		t.Fatalf("should not reach next")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to be returned, got %v", err)
	}
}
