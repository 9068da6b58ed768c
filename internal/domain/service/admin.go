package service

import (
	"context"
	"time"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/pkg/logger/types"
)

type AdminUserStorage interface {
	GetAll(ctx context.Context) ([]entity.User, error)
	SetBanned(ctx context.Context, id string, banned bool, by *string, reason *string, at time.Time) (int64, error)
	SetAdmin(ctx context.Context, id string, admin bool) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountBanned(ctx context.Context) (int64, error)
	CountAdmins(ctx context.Context) (int64, error)
}

type adminEventStorage interface {
	GetAll(ctx context.Context) ([]entity.Event, error)
	Count(ctx context.Context) (int64, error)
	CountUpcoming(ctx context.Context, from time.Time) (int64, error)
}

type adminBlastStorage interface {
	Count(ctx context.Context) (int64, error)
}

type AdminService struct {
	guard        *Guard
	userStorage  AdminUserStorage
	eventStorage adminEventStorage
	blastStorage adminBlastStorage
	events       *EventService
	logger       *types.Logger

	now func() time.Time
}

func NewAdminService(
	logger *types.Logger,
	guard *Guard,
	userStorage AdminUserStorage,
	eventStorage adminEventStorage,
	blastStorage adminBlastStorage,
	events *EventService,
) *AdminService {
	return &AdminService{
		guard:        guard,
		userStorage:  userStorage,
		eventStorage: eventStorage,
		blastStorage: blastStorage,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// ListUsers returns every user, newest first.
func (s *AdminService) ListUsers(ctx context.Context, actorID string) ([]entity.User, error) {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.userStorage.GetAll(ctx)
	return users, errorz.Persistence("load users", err)
}

// ListEvents returns every event with its creator, latest start first.
func (s *AdminService) ListEvents(ctx context.Context, actorID string) ([]entity.Event, error) {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	events, err := s.eventStorage.GetAll(ctx)
	return events, errorz.Persistence("load events", err)
}

func (s *AdminService) Ban(ctx context.Context, targetID, actorID, reason string) error {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return err
	}
	if targetID == actorID {
		return errorz.ErrCannotBanSelf
	}
	if err := s.setBanned(ctx, targetID, true, &actorID, optional(reason)); err != nil {
		return err
	}

	s.logger.Infof("(admin: %s) banned user %s", actorID, targetID)
	return nil
}

func (s *AdminService) Unban(ctx context.Context, targetID, actorID string) error {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.setBanned(ctx, targetID, false, nil, nil); err != nil {
		return err
	}

	s.logger.Infof("(admin: %s) unbanned user %s", actorID, targetID)
	return nil
}

func (s *AdminService) GrantAdmin(ctx context.Context, targetID, actorID string) error {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.setAdmin(ctx, targetID, true); err != nil {
		return err
	}

	s.logger.Infof("(admin: %s) granted admin to %s", actorID, targetID)
	return nil
}

func (s *AdminService) RevokeAdmin(ctx context.Context, targetID, actorID string) error {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return err
	}
	if targetID == actorID {
		return errorz.ErrCannotRevokeSelf
	}
	if err := s.setAdmin(ctx, targetID, false); err != nil {
		return err
	}

	s.logger.Infof("(admin: %s) revoked admin from %s", actorID, targetID)
	return nil
}

// ForceDeleteEvent deletes any event with the same cleanup as an owner delete.
func (s *AdminService) ForceDeleteEvent(ctx context.Context, eventID, actorID string) error {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return err
	}
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if err = s.events.purge(ctx, event); err != nil {
		return err
	}

	s.logger.Infof("(admin: %s) force deleted event %s", actorID, eventID)
	return nil
}

// Stats collects the dashboard counters.
func (s *AdminService) Stats(ctx context.Context, actorID string) (*dto.AdminStats, error) {
	if err := s.guard.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	var (
		stats dto.AdminStats
		err   error
	)
	counters := []struct {
		dst   *int64
		count func(ctx context.Context) (int64, error)
	}{
		{&stats.Users, s.userStorage.Count},
		{&stats.BannedUsers, s.userStorage.CountBanned},
		{&stats.Admins, s.userStorage.CountAdmins},
		{&stats.Events, s.eventStorage.Count},
		{&stats.UpcomingEvents, func(ctx context.Context) (int64, error) {
			return s.eventStorage.CountUpcoming(ctx, s.now())
		}},
		{&stats.Blasts, s.blastStorage.Count},
	}
	for _, counter := range counters {
		if *counter.dst, err = counter.count(ctx); err != nil {
			return nil, errorz.Persistence("load statistics", err)
		}
	}
	return &stats, nil
}

func (s *AdminService) setBanned(ctx context.Context, targetID string, banned bool, by, reason *string) error {
	if !validID(targetID) {
		return errorz.ErrUserNotFound
	}
	updated, err := s.userStorage.SetBanned(ctx, targetID, banned, by, reason, s.now().UTC())
	if err != nil {
		return errorz.Persistence("update user", err)
	}
	if updated == 0 {
		return errorz.ErrUserNotFound
	}
	return nil
}

func (s *AdminService) setAdmin(ctx context.Context, targetID string, admin bool) error {
	if !validID(targetID) {
		return errorz.ErrUserNotFound
	}
	updated, err := s.userStorage.SetAdmin(ctx, targetID, admin)
	if err != nil {
		return errorz.Persistence("update user", err)
	}
	if updated == 0 {
		return errorz.ErrUserNotFound
	}
	return nil
}
