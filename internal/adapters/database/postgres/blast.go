package postgres

import (
	"context"
	"time"

	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type BlastStorage struct {
	db *gorm.DB
}

func NewBlastStorage(db *gorm.DB) *BlastStorage {
	return &BlastStorage{
		db: db,
	}
}

func (s *BlastStorage) Create(ctx context.Context, blast *entity.Blast) (*entity.Blast, error) {
	err := s.db.WithContext(ctx).Omit("Creator", "Event").Create(blast).Error
	return blast, err
}

func (s *BlastStorage) Get(ctx context.Context, id string) (*entity.Blast, error) {
	var blast entity.Blast
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&blast).Error
	return &blast, err
}

func (s *BlastStorage) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Blast{}).Error
}

// GetByEventID returns the event's blasts with authors, newest first.
func (s *BlastStorage) GetByEventID(ctx context.Context, eventID string) ([]entity.Blast, error) {
	var blasts []entity.Blast
	err := s.db.WithContext(ctx).Preload("Creator").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&blasts).Error
	return blasts, err
}

// GetByEventIDs returns blasts of the given events with authors and event titles, newest first.
func (s *BlastStorage) GetByEventIDs(ctx context.Context, eventIDs []string) ([]entity.Blast, error) {
	var blasts []entity.Blast
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Event", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title") }).
		Where("event_id IN ?", eventIDs).
		Order("created_at DESC").
		Find(&blasts).Error
	return blasts, err
}

// ExistsAfter reports whether any blast of the given events was created strictly after t.
func (s *BlastStorage) ExistsAfter(ctx context.Context, eventIDs []string, t time.Time) (bool, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&entity.Blast{}).
		Where("event_id IN ? AND created_at > ?", eventIDs, t).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (s *BlastStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Blast{}).Count(&count).Error
	return count, err
}
