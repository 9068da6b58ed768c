package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusevents/backend/internal/adapters/database/redis/feed"
	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/pkg/logger/types"
	"gorm.io/gorm"
)

// ErrRealtimeDisabled is returned by Subscribe when no change feed is configured.
var ErrRealtimeDisabled = errors.New("realtime notifications are disabled")

type notificationFavorites interface {
	GetEventIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type notificationBlasts interface {
	GetByEventIDs(ctx context.Context, eventIDs []string) ([]entity.Blast, error)
	ExistsAfter(ctx context.Context, eventIDs []string, t time.Time) (bool, error)
}

type NotificationReadStorage interface {
	Get(ctx context.Context, userID string) (*entity.NotificationRead, error)
	Upsert(ctx context.Context, userID string, at time.Time) error
}

type ChangeFeed interface {
	Subscribe(ctx context.Context, eventIDs []string) (*feed.Subscription, error)
}

type NotificationService struct {
	favorites notificationFavorites
	blasts    notificationBlasts
	reads     NotificationReadStorage
	feed      ChangeFeed
	logger    *types.Logger

	now func() time.Time
}

// NewNotificationService creates the notification service. changeFeed may be nil.
func NewNotificationService(
	logger *types.Logger,
	favorites notificationFavorites,
	blasts notificationBlasts,
	reads NotificationReadStorage,
	changeFeed ChangeFeed,
) *NotificationService {
	return &NotificationService{
		favorites: favorites,
		blasts:    blasts,
		reads:     reads,
		feed:      changeFeed,
		logger:    logger,
		now:       time.Now,
	}
}

// ListForUser returns blasts of every event the user favorited, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]entity.Blast, error) {
	ids, err := s.favorites.GetEventIDsByUser(ctx, userID)
	if err != nil {
		return nil, errorz.Persistence("load notifications", err)
	}
	if len(ids) == 0 {
		return []entity.Blast{}, nil
	}

	blasts, err := s.blasts.GetByEventIDs(ctx, ids)
	return blasts, errorz.Persistence("load notifications", err)
}

// HasUnseen reports whether a favorited event got a blast strictly after the
// user's last read watermark. Users who never marked anything read use the epoch.
func (s *NotificationService) HasUnseen(ctx context.Context, userID string) (bool, error) {
	ids, err := s.favorites.GetEventIDsByUser(ctx, userID)
	if err != nil {
		return false, errorz.Persistence("load notifications", err)
	}
	if len(ids) == 0 {
		return false, nil
	}

	watermark := time.Unix(0, 0).UTC()
	read, err := s.reads.Get(ctx, userID)
	switch {
	case err == nil:
		watermark = read.LastReadAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, errorz.Persistence("load notifications", err)
	}

	unseen, err := s.blasts.ExistsAfter(ctx, ids, watermark)
	return unseen, errorz.Persistence("load notifications", err)
}

// MarkSeen moves the user's watermark to now. Failures are logged only.
func (s *NotificationService) MarkSeen(ctx context.Context, userID string) {
	if err := s.reads.Upsert(ctx, userID, s.now().UTC()); err != nil {
		s.logger.Errorf("(user: %s) failed to mark notifications as seen: %v", userID, err)
	}
}

// Subscribe streams new blasts of the user's currently favorited events.
// The caller must Close the subscription.
func (s *NotificationService) Subscribe(ctx context.Context, userID string) (*feed.Subscription, error) {
	if s.feed == nil {
		return nil, ErrRealtimeDisabled
	}
	ids, err := s.favorites.GetEventIDsByUser(ctx, userID)
	if err != nil {
		return nil, errorz.Persistence("load favorites", err)
	}
	return s.feed.Subscribe(ctx, ids)
}
