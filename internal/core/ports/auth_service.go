package ports

import (
	"context"

	"github.com/otenet/task-manager/internal/core/domain"
)

// SignupInput carries the fields accepted when creating an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// Authenticator resolves a bearer token to the user holding it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthService covers account creation and the session lifecycle.
type AuthService interface {
	Authenticator
	Signup(ctx context.Context, input SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, user *domain.User, token string) error
	LogoutAll(ctx context.Context, user *domain.User) error
}
