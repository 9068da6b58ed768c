package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/campusevents/backend/internal/adapters/storage"
	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/internal/domain/utils/calendar"
	"github.com/campusevents/backend/internal/domain/utils/validator"
	"github.com/campusevents/backend/pkg/imaging"
	"github.com/campusevents/backend/pkg/logger/types"
	qr "github.com/campusevents/backend/pkg/qrcode"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStorage interface {
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Delete(ctx context.Context, id string) error
	GetUpcoming(ctx context.Context, from time.Time) ([]entity.Event, error)
	GetByCreatorWithSaveCount(ctx context.Context, creatorID string) ([]dto.EventWithSaveCount, error)
}

// AttachmentStore keeps event images.
type AttachmentStore interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type EventOptions struct {
	MaxImageWidth uint
	PublicURL     string         // Base URL of the public event pages
	Location      *time.Location // Fallback for forms without a client time zone
	QR            qr.Style
}

type EventService struct {
	guard        *Guard
	eventStorage EventStorage
	attachments  AttachmentStore
	logger       *types.Logger
	opts         EventOptions

	now func() time.Time
}

// NewEventService creates the event repository. attachments may be nil, in
// which case uploaded images are dropped.
func NewEventService(logger *types.Logger, guard *Guard, eventStorage EventStorage, attachments AttachmentStore, opts EventOptions) *EventService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.QR.Size == 0 {
		opts.QR = qr.Default
	}
	return &EventService{
		guard:        guard,
		eventStorage: eventStorage,
		attachments:  attachments,
		logger:       logger,
		opts:         opts,
		now:          time.Now,
	}
}

// Create validates the form and stores a new event owned by ownerID.
// A failed image upload does not fail the event.
func (s *EventService) Create(ctx context.Context, ownerID string, form dto.EventForm, image *dto.Upload) (*entity.Event, error) {
	if ownerID == "" {
		return nil, errorz.ErrAuthRequired
	}

	input, err := validator.Event(form, s.opts.Location)
	if err != nil {
		return nil, err
	}

	event := &entity.Event{CreatorID: ownerID}
	apply(event, input)
	if !image.Empty() {
		event.ImageURL, event.ImagePath = s.upload(ctx, ownerID, image)
	}

	created, err := s.eventStorage.Create(ctx, event)
	if err != nil {
		s.removeImage(ctx, event.ImagePath)
		return nil, errorz.Persistence("create event", err)
	}

	s.logger.Infof("(user: %s) created event %s", ownerID, created.ID)
	return created, nil
}

// Update replaces the event's fields. The image is kept unless a new one is uploaded.
func (s *EventService) Update(ctx context.Context, eventID, userID string, form dto.EventForm, image *dto.Upload) (*entity.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err = s.guard.RequireOwner(event.CreatorID, userID, "update this event"); err != nil {
		return nil, err
	}

	input, err := validator.Event(form, s.opts.Location)
	if err != nil {
		return nil, err
	}
	apply(event, input)

	var uploaded, replaced *string
	if !image.Empty() {
		url, path := s.upload(ctx, event.CreatorID, image)
		if path != nil {
			uploaded, replaced = path, event.ImagePath
			event.ImageURL, event.ImagePath = url, path
		}
	}

	updated, err := s.eventStorage.Update(ctx, event)
	if err != nil {
		s.removeImage(ctx, uploaded)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorz.ErrEventNotFound
		}
		return nil, errorz.Persistence("update event", err)
	}
	s.removeImage(ctx, replaced)

	return updated, nil
}

// Delete removes the event together with its favorites, blasts and image.
func (s *EventService) Delete(ctx context.Context, eventID, userID string) error {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if err = s.guard.RequireOwner(event.CreatorID, userID, "delete this event"); err != nil {
		return err
	}
	return s.purge(ctx, event)
}

// purge deletes the event rows in one transaction, then the image best-effort.
func (s *EventService) purge(ctx context.Context, event *entity.Event) error {
	err := s.eventStorage.Delete(ctx, event.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorz.ErrEventNotFound
	}
	if err != nil {
		return errorz.Persistence("delete event", err)
	}
	s.removeImage(ctx, event.ImagePath)

	s.logger.Infof("deleted event %s", event.ID)
	return nil
}

// Get returns the event with its creator.
func (s *EventService) Get(ctx context.Context, eventID string) (*entity.Event, error) {
	return findEvent(ctx, s.eventStorage, eventID)
}

// ListUpcoming returns events that have not started yet, soonest first.
func (s *EventService) ListUpcoming(ctx context.Context) ([]entity.Event, error) {
	events, err := s.eventStorage.GetUpcoming(ctx, s.now())
	return events, errorz.Persistence("load events", err)
}

// ListForOwner returns the owner's events with favorite counts.
func (s *EventService) ListForOwner(ctx context.Context, ownerID string) ([]dto.EventWithSaveCount, error) {
	if ownerID == "" {
		return nil, errorz.ErrAuthRequired
	}
	events, err := s.eventStorage.GetByCreatorWithSaveCount(ctx, ownerID)
	return events, errorz.Persistence("load your events", err)
}

// Calendar exports the event as an iCalendar file.
func (s *EventService) Calendar(ctx context.Context, eventID string) ([]byte, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return calendar.Export([]entity.Event{*event}, s.opts.PublicURL, s.now())
}

// ShareQR renders a PNG QR code pointing at the event's public page.
func (s *EventService) ShareQR(ctx context.Context, eventID string) ([]byte, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.opts.QR.Generate(event.PublicLink(s.opts.PublicURL))
}

// upload normalises and stores the image. Both results are nil on failure.
func (s *EventService) upload(ctx context.Context, ownerID string, image *dto.Upload) (url *string, path *string) {
	if s.attachments == nil {
		s.logger.Warnf("(user: %s) image %q dropped: attachment store is not configured", ownerID, image.FileName)
		return nil, nil
	}

	normalized, err := imaging.Normalize(image.Reader, s.opts.MaxImageWidth)
	if err != nil {
		s.logger.Warnf("(user: %s) failed to process image %q: %v", ownerID, image.FileName, err)
		return nil, nil
	}

	key := storage.ObjectKey(ownerID, imaging.Rename(image.FileName, normalized.Ext), s.now())
	publicURL, err := s.attachments.Put(ctx, key, bytes.NewReader(normalized.Data), normalized.ContentType)
	if err != nil {
		s.logger.Errorf("(user: %s) failed to upload image %s: %v", ownerID, key, err)
		return nil, nil
	}
	return &publicURL, &key
}

func (s *EventService) removeImage(ctx context.Context, path *string) {
	if path == nil || s.attachments == nil {
		return
	}
	if err := s.attachments.Remove(ctx, *path); err != nil {
		s.logger.Warnf("failed to remove image %s: %v", *path, err)
	}
}

func apply(event *entity.Event, input dto.EventInput) {
	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime
	event.Link = input.Link
}

type eventGetter interface {
	Get(ctx context.Context, id string) (*entity.Event, error)
}

func findEvent(ctx context.Context, events eventGetter, eventID string) (*entity.Event, error) {
	if !validID(eventID) {
		return nil, errorz.ErrEventNotFound
	}
	event, err := events.Get(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.ErrEventNotFound
	}
	if err != nil {
		return nil, errorz.Persistence("load event", err)
	}
	return event, nil
}

// validID reports whether id is a UUID. Other ids can never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
