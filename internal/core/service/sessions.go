package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

// SessionRegistry tracks the live tokens of every user. A token is valid only
// while it both verifies and is still held by its user.
type SessionRegistry struct {
	store  ports.SessionStore
	issuer *TokenIssuer
}

func NewSessionRegistry(store ports.SessionStore, issuer *TokenIssuer) *SessionRegistry {
	return &SessionRegistry{store: store, issuer: issuer}
}

// Issue signs a new token for userID and appends it to the user's sessions.
func (r *SessionRegistry) Issue(ctx context.Context, userID string) (string, error) {
	token, err := r.issuer.Issue(userID)
	if err != nil {
		return "", err
	}
	if err := r.store.PushToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("add session: %w", err)
	}
	return token, nil
}

// Revoke removes exactly token from the user's sessions.
func (r *SessionRegistry) Revoke(ctx context.Context, userID, token string) error {
	if err := r.store.PullToken(ctx, userID, token); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// RevokeAll clears every session of the user.
func (r *SessionRegistry) RevokeAll(ctx context.Context, userID string) error {
	if err := r.store.ClearTokens(ctx, userID); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

// IsValidToken reports whether token verifies for userID and has not been revoked.
func (r *SessionRegistry) IsValidToken(ctx context.Context, userID, token string) (bool, error) {
	claimed, err := r.issuer.Verify(token)
	if err != nil || claimed != userID {
		return false, nil
	}
	return r.store.HasToken(ctx, userID, token)
}

// Resolve returns the user holding token. Signature failures, unknown users
// and revoked tokens all yield domain.ErrUnauthenticated; store failures are
// returned as-is.
func (r *SessionRegistry) Resolve(ctx context.Context, token string) (*domain.User, error) {
	userID, err := r.issuer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	user, err := r.store.FindBySession(ctx, userID, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
