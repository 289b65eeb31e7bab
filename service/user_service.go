package service

import (
	"context"
	"fmt"
	"log"

	"omnimind-backend/models"
	"omnimind-backend/storage"

	"github.com/google/uuid"
)

// ProfileStore is the persistence surface for profile updates
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, timezone, avatarURL *string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarPath, avatarURL string) error
}

// UserService handles profile and avatar management
type UserService struct {
	users   ProfileStore
	objects storage.Storage
}

// NewUserService creates a new user service
func NewUserService(users ProfileStore, objects storage.Storage) *UserService {
	return &UserService{
		users:   users,
		objects: objects,
	}
}

// UpdateProfile applies the provided fields, leaving nil ones untouched
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, timezone, avatarURL *string) (*models.User, error) {
	user, err := s.users.UpdateProfile(ctx, id, name, timezone, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SetAvatar records a freshly uploaded avatar and removes the previous
// object. Removal failures are logged, not returned.
func (s *UserService) SetAvatar(ctx context.Context, id uuid.UUID, avatarPath, avatarURL string) (*models.User, error) {
	previous, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.users.UpdateAvatar(ctx, id, avatarPath, avatarURL); err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	if previous.AvatarPath != nil && *previous.AvatarPath != "" && *previous.AvatarPath != avatarPath {
		if err := s.objects.Delete(ctx, *previous.AvatarPath); err != nil {
			log.Printf("Failed to remove previous avatar %s: %v", *previous.AvatarPath, err)
		}
	}

	return s.users.GetByID(ctx, id)
}
