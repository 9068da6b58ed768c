package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/internal/domain/utils/validator"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/campusevents/backend/pkg/smtp"
	"gorm.io/gorm"
)

type BlastStorage interface {
	Create(ctx context.Context, blast *entity.Blast) (*entity.Blast, error)
	Get(ctx context.Context, id string) (*entity.Blast, error)
	Delete(ctx context.Context, id string) error
	GetByEventID(ctx context.Context, eventID string) ([]entity.Blast, error)
}

type blastFavoriters interface {
	GetFavoriters(ctx context.Context, eventID string) ([]entity.User, error)
}

type BlastPublisher interface {
	Publish(ctx context.Context, blast dto.BlastInserted) error
}

type BlastMailer interface {
	SendBlast(to []string, blast smtp.Blast) error
}

type BlastService struct {
	guard        *Guard
	blastStorage BlastStorage
	eventStorage eventGetter
	favoriters   blastFavoriters
	publisher    BlastPublisher
	mailer       BlastMailer
	publicURL    string
	logger       *types.Logger

	now func() time.Time
}

// NewBlastService creates the blast notifier. publisher and mailer are optional.
func NewBlastService(
	logger *types.Logger,
	guard *Guard,
	blastStorage BlastStorage,
	eventStorage eventGetter,
	favoriters blastFavoriters,
	publisher BlastPublisher,
	mailer BlastMailer,
	publicURL string,
) *BlastService {
	return &BlastService{
		guard:        guard,
		blastStorage: blastStorage,
		eventStorage: eventStorage,
		favoriters:   favoriters,
		publisher:    publisher,
		mailer:       mailer,
		publicURL:    publicURL,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores a blast from the event's creator, then fans it out to the
// change feed and, if enabled, to the favoriters' mailboxes. Fan-out failures
// are logged only.
func (s *BlastService) Create(ctx context.Context, eventID, authorID string, form dto.BlastForm) (*entity.Blast, error) {
	if authorID == "" {
		return nil, errorz.ErrAuthRequired
	}
	content, err := validator.Blast(form)
	if err != nil {
		return nil, err
	}

	event, err := findEvent(ctx, s.eventStorage, eventID)
	if err != nil {
		return nil, err
	}
	if err = s.guard.RequireOwner(event.CreatorID, authorID, "send blasts for this event"); err != nil {
		return nil, err
	}

	blast, err := s.blastStorage.Create(ctx, &entity.Blast{
		EventID:   event.ID,
		CreatorID: authorID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, errorz.Persistence("send blast", err)
	}

	if s.publisher != nil {
		if err = s.publisher.Publish(ctx, dto.NewBlastInserted(*blast)); err != nil {
			s.logger.Warnf("(event: %s) failed to publish blast %s: %v", event.ID, blast.ID, err)
		}
	}
	if s.mailer != nil {
		s.mail(ctx, event, blast)
	}

	return blast, nil
}

// Delete removes a blast. Only its author may do so.
func (s *BlastService) Delete(ctx context.Context, blastID, requesterID string) error {
	if !validID(blastID) {
		return errorz.ErrBlastNotFound
	}
	blast, err := s.blastStorage.Get(ctx, blastID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorz.ErrBlastNotFound
	}
	if err != nil {
		return errorz.Persistence("load blast", err)
	}

	if err = s.guard.RequireOwner(blast.CreatorID, requesterID, "delete this blast"); err != nil {
		return err
	}
	return errorz.Persistence("delete blast", s.blastStorage.Delete(ctx, blastID))
}

// ListForEvent returns the event's blasts with their authors, newest first.
func (s *BlastService) ListForEvent(ctx context.Context, eventID string) ([]entity.Blast, error) {
	if _, err := findEvent(ctx, s.eventStorage, eventID); err != nil {
		return nil, err
	}
	blasts, err := s.blastStorage.GetByEventID(ctx, eventID)
	return blasts, errorz.Persistence("load blasts", err)
}

func (s *BlastService) mail(ctx context.Context, event *entity.Event, blast *entity.Blast) {
	users, err := s.favoriters.GetFavoriters(ctx, event.ID)
	if err != nil {
		s.logger.Errorf("(event: %s) failed to load favoriters: %v", event.ID, err)
		return
	}

	to := make([]string, 0, len(users))
	for _, user := range users {
		if user.ID == blast.CreatorID || user.IsBanned || strings.TrimSpace(user.Email) == "" {
			continue
		}
		to = append(to, user.Email)
	}
	if len(to) == 0 {
		return
	}

	err = s.mailer.SendBlast(to, smtp.Blast{
		EventTitle: event.Title,
		EventLink:  event.PublicLink(s.publicURL),
		Author:     event.Creator.DisplayName(),
		Content:    blast.Content,
	})
	if err != nil {
		s.logger.Errorf("(event: %s) failed to mail blast %s to %d users: %v", event.ID, blast.ID, len(to), err)
		return
	}
	s.logger.Infof("(event: %s) mailed blast %s to %d users", event.ID, blast.ID, len(to))
}
