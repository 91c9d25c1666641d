package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/infrastructure/db/memory"
)

const testPassword = "MyPass777!"

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyWelcome(email, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, email+"|"+name)
}

type fixture struct {
	store    *memory.Store
	hasher   *PasswordHasher
	issuer   *TokenIssuer
	sessions *SessionRegistry
	notifier *recordingNotifier
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	sessions := NewSessionRegistry(store.Users(), issuer)
	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		sessions: sessions,
		notifier: notifier,
		auth:     NewAuthService(store.Users(), sessions, hasher, notifier, zerolog.Nop()),
	}
}

// mustCreateUser stores a user with testPassword and no sessions.
func (f *fixture) mustCreateUser(t *testing.T, email string) *domain.User {
	t.Helper()
	hash, err := f.hasher.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := f.store.Users().Create(context.Background(), &domain.User{
		Name:         "Andrew",
		Email:        email,
		PasswordHash: hash,
		Tokens:       []domain.Token{},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) tokens(t *testing.T, userID string) []domain.Token {
	t.Helper()
	u, err := f.store.Users().FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	return u.Tokens
}
