package ports

import (
	"context"

	"github.com/otenet/task-manager/internal/core/domain"
)

// ProfileUpdate holds the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Age      *int
	Password *string
}

// AccountService covers profile, avatar and account deletion.
type AccountService interface {
	UpdateProfile(ctx context.Context, user *domain.User, update ProfileUpdate) (*domain.User, error)
	SetAvatar(ctx context.Context, user *domain.User, image []byte) error
	RemoveAvatar(ctx context.Context, user *domain.User) error
	Avatar(ctx context.Context, userID string) ([]byte, error)
	// DeleteAccount removes the user's tasks, then the user.
	DeleteAccount(ctx context.Context, user *domain.User) (int64, error)
}

// ImageProcessor normalizes an uploaded avatar image.
type ImageProcessor interface {
	Process(image []byte) ([]byte, error)
}
