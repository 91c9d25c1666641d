package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/otenet/task-manager/internal/core/domain"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.HashPassword("red12345!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "red12345!" {
		t.Fatal("hash must not equal the raw password")
	}
	if !h.VerifyPassword("red12345!", hash) {
		t.Fatal("expected matching password to verify")
	}
	if h.VerifyPassword("red12345?", hash) {
		t.Fatal("expected different password to fail")
	}
	if h.VerifyPassword("red12345!", "") {
		t.Fatal("expected empty hash to fail")
	}
}

func TestNewPasswordHasher_FallsBackToDefaultCost(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		if h := NewPasswordHasher(cost); h.cost != DefaultBcryptCost {
			t.Fatalf("cost %d: expected fallback to %d, got %d", cost, DefaultBcryptCost, h.cost)
		}
	}
}

func TestPasswordHasher_SetPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	user := &domain.User{}

	changed, err := h.SetPassword(user, "  MyPass777!  ")
	if err != nil {
		t.Fatalf("set password: %v", err)
	}
	if !changed || user.PasswordHash == "" {
		t.Fatal("expected first SetPassword to hash")
	}
	if !h.VerifyPassword("MyPass777!", user.PasswordHash) {
		t.Fatal("expected trimmed password to verify")
	}

	first := user.PasswordHash
	changed, err = h.SetPassword(user, "MyPass777!")
	if err != nil {
		t.Fatalf("set same password: %v", err)
	}
	if changed || user.PasswordHash != first {
		t.Fatal("setting the same password must not re-hash")
	}

	changed, err = h.SetPassword(user, "Another999")
	if err != nil {
		t.Fatalf("set new password: %v", err)
	}
	if !changed || user.PasswordHash == first {
		t.Fatal("expected new password to be hashed")
	}
}

func TestPasswordHasher_SetPassword_Policy(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, raw := range []string{"short", "      abc     ", "myPassWord123", "PASSWORD!!"} {
		user := &domain.User{PasswordHash: "unchanged"}
		_, err := h.SetPassword(user, raw)
		if !domain.IsValidation(err) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
		if user.PasswordHash != "unchanged" {
			t.Fatalf("%q: hash must not change on rejected password", raw)
		}
	}
}
