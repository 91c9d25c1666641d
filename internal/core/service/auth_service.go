package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
	"github.com/otenet/task-manager/internal/metrics"
)

// AuthService implements signup, login and the session lifecycle.
type AuthService struct {
	users    ports.UserRepository
	sessions *SessionRegistry
	hasher   *PasswordHasher
	notifier ports.WelcomeNotifier
	log      zerolog.Logger

	// dummyHash is compared against when the email is unknown so a failed
	// login costs the same whether the email or the password was wrong.
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	sessions *SessionRegistry,
	hasher *PasswordHasher,
	notifier ports.WelcomeNotifier,
	log zerolog.Logger,
) *AuthService {
	dummy, err := hasher.HashPassword(uuid.NewString())
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare login timing hash")
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		notifier:  notifier,
		log:       log,
		dummyHash: dummy,
	}
}

// Signup creates the account, opens its first session and queues the welcome
// e-mail. The e-mail is never allowed to fail the signup.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, string, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, "", err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	if err := validateAge(in.Age); err != nil {
		return nil, "", err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:      name,
		Email:     email,
		Age:       in.Age,
		Tokens:    []domain.Token{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.hasher.SetPassword(user, in.Password); err != nil {
		return nil, "", err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	metrics.AccountsCreatedTotal.Inc()

	if s.notifier != nil {
		s.notifier.NotifyWelcome(created.Email, created.Name)
	}

	token, err := s.sessions.Issue(ctx, created.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", created.ID).Msg("failed to open first session")
		return nil, "", err
	}
	created.Tokens = append(created.Tokens, domain.Token{Token: token})

	s.log.Info().Str("user_id", created.ID).Msg("account created")
	return created, token, nil
}

// Login verifies the credentials and opens a new session. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.VerifyPassword(password, s.dummyHash)
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, "", domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", err
	}

	if !s.hasher.VerifyPassword(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", err
	}
	user.Tokens = append(user.Tokens, domain.Token{Token: token})

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
		case errors.Is(err, domain.ErrUnauthenticated):
			metrics.AuthFailuresTotal.WithLabelValues("revoked").Inc()
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes only the session identified by token.
func (s *AuthService) Logout(ctx context.Context, user *domain.User, token string) error {
	if err := s.sessions.Revoke(ctx, user.ID, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	metrics.SessionsRevokedTotal.WithLabelValues("single").Inc()
	return nil
}

// LogoutAll revokes every session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, user *domain.User) error {
	if err := s.sessions.RevokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	metrics.SessionsRevokedTotal.WithLabelValues("all").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("all sessions revoked")
	return nil
}
