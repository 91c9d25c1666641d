package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/otenet/task-manager/internal/core/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	tok, err := issuer.Issue("64b7f0c2a1b2c3d4e5f60718")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "64b7f0c2a1b2c3d4e5f60718" {
		t.Fatalf("unexpected user id %q", userID)
	}
}

func TestTokenIssuer_DistinctTokensWithinSameSecond(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	fixed := time.Unix(1_700_000_000, 0)
	issuer.now = func() time.Time { return fixed }

	a, _ := issuer.Issue("u1")
	b, _ := issuer.Issue("u1")
	if a == b {
		t.Fatal("expected distinct tokens for the same user and instant")
	}
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	tok, _ := NewTokenIssuer("other-secret", time.Hour).Issue("u1")

	if _, err := NewTokenIssuer("secret", time.Hour).Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: "u1"}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}

	issuer := NewTokenIssuer("secret", 0)
	for _, tok := range []string{none, hs512} {
		if _, err := issuer.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	start := time.Now()
	issuer.now = func() time.Time { return start }

	tok, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := issuer.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuer_RejectsMissingUserID(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenIssuer("secret", 0).Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := NewTokenIssuer("secret", 0).Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
