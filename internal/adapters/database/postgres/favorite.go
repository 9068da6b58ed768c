package postgres

import (
	"context"

	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteStorage struct {
	db *gorm.DB
}

func NewFavoriteStorage(db *gorm.DB) *FavoriteStorage {
	return &FavoriteStorage{
		db: db,
	}
}

// Create inserts the pair. An existing pair is left untouched, so racing
// inserts never produce a second row.
func (s *FavoriteStorage) Create(ctx context.Context, userID, eventID string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).Omit("User", "Event").Create(&entity.Favorite{UserID: userID, EventID: eventID}).Error
}

// Delete removes the pair and returns the number of deleted rows.
func (s *FavoriteStorage) Delete(ctx context.Context, userID, eventID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&entity.Favorite{})
	return result.RowsAffected, result.Error
}

func (s *FavoriteStorage) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Favorite{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}

// GetEventIDsByUser returns the ids of every event the user favorited.
func (s *FavoriteStorage) GetEventIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&entity.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("event_id", &ids).Error
	return ids, err
}

// GetSavedEvents returns the user's favorited events with creators, most recently favorited first.
func (s *FavoriteStorage) GetSavedEvents(ctx context.Context, userID string) ([]entity.Event, error) {
	var favorites []entity.Favorite
	err := s.db.WithContext(ctx).Preload("Event.Creator").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	events := make([]entity.Event, 0, len(favorites))
	for _, favorite := range favorites {
		if favorite.Event.ID == "" {
			continue
		}
		events = append(events, favorite.Event)
	}
	return events, nil
}

// GetFavoriters returns the users who favorited the event.
func (s *FavoriteStorage) GetFavoriters(ctx context.Context, eventID string) ([]entity.User, error) {
	var users []entity.User
	err := s.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.user_id = users.id").
		Where("favorites.event_id = ?", eventID).
		Find(&users).Error
	return users, err
}
