package postgres

import (
	"context"
	"time"

	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationReadStorage struct {
	db *gorm.DB
}

func NewNotificationReadStorage(db *gorm.DB) *NotificationReadStorage {
	return &NotificationReadStorage{
		db: db,
	}
}

func (s *NotificationReadStorage) Get(ctx context.Context, userID string) (*entity.NotificationRead, error) {
	var read entity.NotificationRead
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&read).Error
	return &read, err
}

// Upsert moves the user's watermark to at.
func (s *NotificationReadStorage) Upsert(ctx context.Context, userID string, at time.Time) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
	}).Create(&entity.NotificationRead{UserID: userID, LastReadAt: at}).Error
}
