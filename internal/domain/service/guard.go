package service

import (
	"context"
	"errors"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/pkg/logger/types"
	"gorm.io/gorm"
)

type guardUserStorage interface {
	Get(ctx context.Context, id string) (*entity.User, error)
}

// Guard answers authorization questions. It never mutates anything.
type Guard struct {
	users  guardUserStorage
	logger *types.Logger
}

func NewGuard(logger *types.Logger, users guardUserStorage) *Guard {
	return &Guard{
		users:  users,
		logger: logger,
	}
}

// IsAdmin reports whether userID belongs to an admin who is not banned.
// Anonymous callers and lookup failures are never admin.
func (g *Guard) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" || !validID(userID) {
		return false
	}
	user, err := g.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			g.logger.Errorf("(user: %s) failed to load user for admin check: %v", userID, err)
		}
		return false
	}
	return user.CanAdminister()
}

// RequireAdmin fails with errorz.ErrAdminRequired unless IsAdmin holds.
func (g *Guard) RequireAdmin(ctx context.Context, userID string) error {
	if !g.IsAdmin(ctx, userID) {
		return errorz.ErrAdminRequired
	}
	return nil
}

// RequireOwner fails unless userID owns the record. action completes the
// refusal message, e.g. "delete this event".
func (g *Guard) RequireOwner(ownerID, userID, action string) error {
	if userID == "" {
		return errorz.ErrAuthRequired
	}
	if ownerID != userID {
		return errorz.NotOwner(action)
	}
	return nil
}
