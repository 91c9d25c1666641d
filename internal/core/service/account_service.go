package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

// AccountService implements profile updates, avatars and account deletion.
type AccountService struct {
	users   ports.UserRepository
	hasher  *PasswordHasher
	images  ports.ImageProcessor
	cascade *CascadeCoordinator
	log     zerolog.Logger
}

func NewAccountService(
	users ports.UserRepository,
	hasher *PasswordHasher,
	images ports.ImageProcessor,
	cascade *CascadeCoordinator,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{users: users, hasher: hasher, images: images, cascade: cascade, log: log}
}

// UpdateProfile applies the non-nil fields of update. The password is only
// re-hashed when it actually changes. Existing sessions are kept.
func (s *AccountService) UpdateProfile(ctx context.Context, user *domain.User, update ports.ProfileUpdate) (*domain.User, error) {
	next := *user

	if update.Name != nil {
		name, err := normalizeName(*update.Name)
		if err != nil {
			return nil, err
		}
		next.Name = name
	}
	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		next.Email = email
	}
	if update.Age != nil {
		if err := validateAge(*update.Age); err != nil {
			return nil, err
		}
		next.Age = *update.Age
	}
	if update.Password != nil {
		changed, err := s.hasher.SetPassword(&next, *update.Password)
		if err != nil {
			return nil, err
		}
		if changed {
			s.log.Info().Str("user_id", user.ID).Msg("password changed")
		}
	}

	next.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// SetAvatar normalizes image and stores it on the user.
func (s *AccountService) SetAvatar(ctx context.Context, user *domain.User, image []byte) error {
	processed, err := s.images.Process(image)
	if err != nil {
		return err
	}
	return s.users.SetAvatar(ctx, user.ID, processed)
}

func (s *AccountService) RemoveAvatar(ctx context.Context, user *domain.User) error {
	return s.users.SetAvatar(ctx, user.ID, nil)
}

// Avatar returns the stored avatar, or domain.ErrAvatarNotFound.
func (s *AccountService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	avatar, err := s.users.FindAvatar(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(avatar) == 0 {
		return nil, domain.ErrAvatarNotFound
	}
	return avatar, nil
}

// DeleteAccount removes the user and every task it owns.
func (s *AccountService) DeleteAccount(ctx context.Context, user *domain.User) (int64, error) {
	return s.cascade.DeleteUser(ctx, user.ID)
}
