package ports

import (
	"context"

	"github.com/otenet/task-manager/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID.
	// Returns domain.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update persists profile fields (name, email, age, password hash).
	// Tokens and avatar are never written through Update.
	Update(ctx context.Context, user *domain.User) error
	// SetAvatar stores the avatar bytes; a nil slice removes it.
	SetAvatar(ctx context.Context, id string, avatar []byte) error
	FindAvatar(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore holds the per-user token sequence. Every mutation must be a
// single atomic update on the user document, never read-modify-write.
type SessionStore interface {
	PushToken(ctx context.Context, userID, token string) error
	PullToken(ctx context.Context, userID, token string) error
	ClearTokens(ctx context.Context, userID string) error
	HasToken(ctx context.Context, userID, token string) (bool, error)
	// FindBySession returns the user only if token is still in its sequence.
	FindBySession(ctx context.Context, userID, token string) (*domain.User, error)
}
