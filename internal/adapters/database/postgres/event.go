package postgres

import (
	"context"
	"time"

	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type EventStorage struct {
	db *gorm.DB
}

func NewEventStorage(db *gorm.DB) *EventStorage {
	return &EventStorage{
		db: db,
	}
}

// Create inserts the event and fills its generated id and timestamps.
func (s *EventStorage) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Omit("Creator").Create(event).Error
	return event, err
}

// Get loads the event with its creator.
func (s *EventStorage) Get(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := s.db.WithContext(ctx).Preload("Creator").Where("id = ?", id).First(&event).Error
	return &event, err
}

// Update writes the editable columns of an existing event. It never inserts and
// returns gorm.ErrRecordNotFound when the event is gone.
func (s *EventStorage) Update(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	result := s.db.WithContext(ctx).Model(event).
		Select("*").
		Omit("Creator", "ID", "CreatorID", "CreatedAt").
		Updates(event)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return event, nil
}

// Delete removes the event with its blasts and favorites in one transaction.
// It returns gorm.ErrRecordNotFound when no event was deleted.
func (s *EventStorage) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&entity.Blast{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Event{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetUpcoming returns events starting at or after from, soonest first.
func (s *EventStorage) GetUpcoming(ctx context.Context, from time.Time) ([]entity.Event, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).Preload("Creator").
		Where("start_time >= ?", from).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// GetByCreatorWithSaveCount returns the creator's events with favorite counts, soonest first.
func (s *EventStorage) GetByCreatorWithSaveCount(ctx context.Context, creatorID string) ([]dto.EventWithSaveCount, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).Preload("Creator").
		Where("creator_id = ?", creatorID).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil || len(events) == 0 {
		return nil, err
	}

	ids := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	var counts []struct {
		EventID string
		Count   int64
	}
	err = s.db.WithContext(ctx).Model(&entity.Favorite{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", ids).
		Group("event_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byEvent := make(map[string]int64, len(counts))
	for _, c := range counts {
		byEvent[c.EventID] = c.Count
	}

	result := make([]dto.EventWithSaveCount, 0, len(events))
	for _, event := range events {
		result = append(result, dto.EventWithSaveCount{Event: event, SaveCount: byEvent[event.ID]})
	}
	return result, nil
}

// GetAll returns every event with its creator, latest start first.
func (s *EventStorage) GetAll(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).Preload("Creator").Order("start_time DESC").Find(&events).Error
	return events, err
}

// Count returns the number of events.
func (s *EventStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Event{}).Count(&count).Error
	return count, err
}

func (s *EventStorage) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Event{}).Where("start_time >= ?", from).Count(&count).Error
	return count, err
}
