package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type UserStorage interface {
	Ensure(ctx context.Context, user *entity.User) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
}

type UserService struct {
	userStorage UserStorage
}

func NewUserService(userStorage UserStorage) *UserService {
	return &UserService{
		userStorage: userStorage,
	}
}

// Ensure returns the caller's user row, creating it on the first request.
// Profile fields of existing rows are left alone.
func (s *UserService) Ensure(ctx context.Context, identity dto.Identity) (*entity.User, error) {
	if identity.Anonymous() {
		return nil, errorz.ErrAuthRequired
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if !validID(identity.UserID) || email == "" {
		return nil, errorz.ErrAuthRequired
	}

	user := &entity.User{
		ID:        identity.UserID,
		Email:     email,
		Name:      optional(identity.Name),
		AvatarURL: optional(identity.AvatarURL),
	}
	stored, err := s.userStorage.Ensure(ctx, user)
	// the email belongs to a row with another subject
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, errorz.ErrEmailTaken
	}
	return stored, errorz.Persistence("load your profile", err)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, errorz.ErrUserNotFound
	}
	user, err := s.userStorage.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.ErrUserNotFound
	}
	return user, errorz.Persistence("load user", err)
}

// optional turns blank strings into nil.
func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
