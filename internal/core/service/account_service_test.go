package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

type stubImages struct {
	processFn func(image []byte) ([]byte, error)
}

func (s stubImages) Process(image []byte) ([]byte, error) {
	return s.processFn(image)
}

func newAccountFixture(t *testing.T, images ports.ImageProcessor) (*fixture, *AccountService) {
	t.Helper()
	f := newFixture(t)
	if images == nil {
		images = stubImages{processFn: func(b []byte) ([]byte, error) { return append([]byte("resized:"), b...), nil }}
	}
	cascade := NewCascadeCoordinator(f.store.Users(), f.store.Tasks(), zerolog.Nop())
	return f, NewAccountService(f.store.Users(), f.hasher, images, cascade, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f, svc := newAccountFixture(t, nil)
	user := f.mustCreateUser(t, "andrew@example.com")

	age := 30
	updated, err := svc.UpdateProfile(ctx, user, ports.ProfileUpdate{
		Name:  strPtr(" Mike "),
		Email: strPtr("MIKE@example.com"),
		Age:   &age,
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Name != "Mike" || updated.Email != "mike@example.com" || updated.Age != 30 {
		t.Fatalf("unexpected profile: %+v", updated)
	}
	if updated.PasswordHash != user.PasswordHash {
		t.Fatal("password hash must not change without a password update")
	}

	stored, _ := f.store.Users().FindByID(ctx, user.ID)
	if stored.Email != "mike@example.com" {
		t.Fatalf("expected update to be persisted, got %q", stored.Email)
	}
	if user.Name != "Andrew" {
		t.Fatal("caller's user must not be mutated")
	}
}

func TestAccountService_UpdateProfile_PasswordKeepsSessions(t *testing.T) {
	ctx := context.Background()
	f, svc := newAccountFixture(t, nil)
	user := f.mustCreateUser(t, "andrew@example.com")
	tok, _ := f.sessions.Issue(ctx, user.ID)
	user, _ = f.store.Users().FindByID(ctx, user.ID)

	updated, err := svc.UpdateProfile(ctx, user, ports.ProfileUpdate{Password: strPtr("Another999")})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if !f.hasher.VerifyPassword("Another999", updated.PasswordHash) {
		t.Fatal("expected new password to be stored")
	}
	if ok, _ := f.sessions.IsValidToken(ctx, user.ID, tok); !ok {
		t.Fatal("existing session must survive a password change")
	}
}

func TestAccountService_UpdateProfile_Rejections(t *testing.T) {
	ctx := context.Background()
	f, svc := newAccountFixture(t, nil)
	user := f.mustCreateUser(t, "andrew@example.com")
	f.mustCreateUser(t, "jess@example.com")

	if _, err := svc.UpdateProfile(ctx, user, ports.ProfileUpdate{Email: strPtr("jess@example.com")}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, user, ports.ProfileUpdate{Password: strPtr("password1")}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, user, ports.ProfileUpdate{Name: strPtr("  ")}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccountService_Avatar(t *testing.T) {
	ctx := context.Background()
	f, svc := newAccountFixture(t, nil)
	user := f.mustCreateUser(t, "andrew@example.com")

	if _, err := svc.Avatar(ctx, user.ID); !errors.Is(err, domain.ErrAvatarNotFound) {
		t.Fatalf("expected ErrAvatarNotFound before upload, got %v", err)
	}

	if err := svc.SetAvatar(ctx, user, []byte("raw")); err != nil {
		t.Fatalf("SetAvatar returned error: %v", err)
	}
	avatar, err := svc.Avatar(ctx, user.ID)
	if err != nil {
		t.Fatalf("Avatar returned error: %v", err)
	}
	if string(avatar) != "resized:raw" {
		t.Fatalf("expected processed avatar, got %q", avatar)
	}

	if err := svc.RemoveAvatar(ctx, user); err != nil {
		t.Fatalf("RemoveAvatar returned error: %v", err)
	}
	if _, err := svc.Avatar(ctx, user.ID); !errors.Is(err, domain.ErrAvatarNotFound) {
		t.Fatalf("expected ErrAvatarNotFound after removal, got %v", err)
	}
}

func TestAccountService_SetAvatar_ProcessingError(t *testing.T) {
	ctx := context.Background()
	bad := domain.NewValidationError("avatar", "please upload a valid jpeg image")
	f, svc := newAccountFixture(t, stubImages{processFn: func([]byte) ([]byte, error) { return nil, bad }})
	user := f.mustCreateUser(t, "andrew@example.com")

	if err := svc.SetAvatar(ctx, user, []byte("x")); !errors.Is(err, bad) {
		t.Fatalf("expected processing error, got %v", err)
	}
	if _, err := svc.Avatar(ctx, user.ID); !errors.Is(err, domain.ErrAvatarNotFound) {
		t.Fatalf("nothing should be stored, got %v", err)
	}
}

func TestAccountService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	f, svc := newAccountFixture(t, nil)
	user := f.mustCreateUser(t, "andrew@example.com")
	seedTasks(t, NewTaskService(f.store.Tasks(), zerolog.Nop()), user.ID, 2)

	removed, err := svc.DeleteAccount(ctx, user)
	if err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 tasks removed, got %d", removed)
	}
	if _, err := f.store.Users().FindByID(ctx, user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
}
