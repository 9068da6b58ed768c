package service

import (
	"context"
	"errors"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type FavoriteStorage interface {
	Create(ctx context.Context, userID, eventID string) error
	Delete(ctx context.Context, userID, eventID string) (int64, error)
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	GetEventIDsByUser(ctx context.Context, userID string) ([]string, error)
	GetSavedEvents(ctx context.Context, userID string) ([]entity.Event, error)
}

type FavoriteService struct {
	favoriteStorage FavoriteStorage
	eventStorage    eventGetter
}

func NewFavoriteService(favoriteStorage FavoriteStorage, eventStorage eventGetter) *FavoriteService {
	return &FavoriteService{
		favoriteStorage: favoriteStorage,
		eventStorage:    eventStorage,
	}
}

// Toggle flips the favorite and reports whether the event is now favorited.
// The delete runs first: a removed row means the caller unfavorited. Otherwise
// the insert ignores conflicts, so racing toggles never store two rows.
func (s *FavoriteService) Toggle(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" {
		return false, errorz.ErrAuthRequired
	}
	if !validID(eventID) {
		return false, errorz.ErrEventNotFound
	}

	removed, err := s.favoriteStorage.Delete(ctx, userID, eventID)
	if err != nil {
		return false, errorz.Persistence("update favorite", err)
	}
	if removed > 0 {
		return false, nil
	}

	if _, err = findEvent(ctx, s.eventStorage, eventID); err != nil {
		return false, err
	}

	err = s.favoriteStorage.Create(ctx, userID, eventID)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return false, errorz.ErrEventNotFound
	}
	if err != nil {
		return false, errorz.Persistence("update favorite", err)
	}
	return true, nil
}

func (s *FavoriteService) IsFavorited(ctx context.Context, userID, eventID string) (bool, error) {
	if userID == "" || !validID(eventID) {
		return false, nil
	}
	exists, err := s.favoriteStorage.Exists(ctx, userID, eventID)
	return exists, errorz.Persistence("load favorite", err)
}

// ListSaved returns the user's favorited events, most recently favorited first.
func (s *FavoriteService) ListSaved(ctx context.Context, userID string) ([]entity.Event, error) {
	if userID == "" {
		return nil, errorz.ErrAuthRequired
	}
	events, err := s.favoriteStorage.GetSavedEvents(ctx, userID)
	return events, errorz.Persistence("load saved events", err)
}

// FavoritedEventIDs returns the ids of the user's favorited events. Clients use
// them to filter the realtime blast stream.
func (s *FavoriteService) FavoritedEventIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, errorz.ErrAuthRequired
	}
	ids, err := s.favoriteStorage.GetEventIDsByUser(ctx, userID)
	if err != nil {
		return nil, errorz.Persistence("load favorites", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
