package events

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campusevents/backend/cmd/app"
	"github.com/campusevents/backend/internal/adapters/controller/http/middlewares"
	"github.com/campusevents/backend/internal/adapters/controller/http/response"
	"github.com/campusevents/backend/internal/adapters/database/postgres"
	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/internal/domain/service"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type eventService interface {
	Create(ctx context.Context, ownerID string, form dto.EventForm, image *dto.Upload) (*entity.Event, error)
	Update(ctx context.Context, eventID, userID string, form dto.EventForm, image *dto.Upload) (*entity.Event, error)
	Delete(ctx context.Context, eventID, userID string) error
	Get(ctx context.Context, eventID string) (*entity.Event, error)
	ListUpcoming(ctx context.Context) ([]entity.Event, error)
	ListForOwner(ctx context.Context, ownerID string) ([]dto.EventWithSaveCount, error)
	Calendar(ctx context.Context, eventID string) ([]byte, error)
	ShareQR(ctx context.Context, eventID string) ([]byte, error)
}

type favoriteService interface {
	Toggle(ctx context.Context, userID, eventID string) (bool, error)
	IsFavorited(ctx context.Context, userID, eventID string) (bool, error)
	ListSaved(ctx context.Context, userID string) ([]entity.Event, error)
	FavoritedEventIDs(ctx context.Context, userID string) ([]string, error)
}

type Handler struct {
	eventService    eventService
	favoriteService favoriteService
	logger          *types.Logger
	maxUploadBytes  int64
}

func New(a *app.App) *Handler {
	eventsLogger := a.Named("events")
	eventStorage := postgres.NewEventStorage(a.DB)
	guard := service.NewGuard(eventsLogger, postgres.NewUserStorage(a.DB))

	return &Handler{
		eventService:    service.NewEventService(eventsLogger, guard, eventStorage, a.Attachments(), a.EventOptions()),
		favoriteService: service.NewFavoriteService(postgres.NewFavoriteStorage(a.DB), eventStorage),
		logger:          a.Logger,
		maxUploadBytes:  viper.GetInt64("settings.images.max-upload-bytes"),
	}
}

func (h Handler) List(c *gin.Context) {
	events, err := h.eventService.ListUpcoming(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventsFromEntities(events))
}

func (h Handler) Get(c *gin.Context) {
	event, err := h.eventService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventFromEntity(*event))
}

func (h Handler) Create(c *gin.Context) {
	form, image, ok := h.bind(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}

	event, err := h.eventService.Create(c.Request.Context(), middlewares.UserID(c), form, image.Upload())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewEventFromEntity(*event))
}

func (h Handler) Update(c *gin.Context) {
	form, image, ok := h.bind(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}

	event, err := h.eventService.Update(c.Request.Context(), c.Param("id"), middlewares.UserID(c), form, image.Upload())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventFromEntity(*event))
}

func (h Handler) Delete(c *gin.Context) {
	if err := h.eventService.Delete(c.Request.Context(), c.Param("id"), middlewares.UserID(c)); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Mine lists the caller's events with favorite counts.
func (h Handler) Mine(c *gin.Context) {
	events, err := h.eventService.ListForOwner(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	result := make([]dto.Event, 0, len(events))
	for _, event := range events {
		result = append(result, dto.NewEventFromSaveCount(event))
	}
	c.JSON(http.StatusOK, result)
}

func (h Handler) Saved(c *gin.Context) {
	events, err := h.favoriteService.ListSaved(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventsFromEntities(events))
}

// FavoriteIDs lists the ids of the caller's favorited events.
func (h Handler) FavoriteIDs(c *gin.Context) {
	ids, err := h.favoriteService.FavoritedEventIDs(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_ids": ids})
}

func (h Handler) ToggleFavorite(c *gin.Context) {
	favorited, err := h.favoriteService.Toggle(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (h Handler) FavoriteStatus(c *gin.Context) {
	favorited, err := h.favoriteService.IsFavorited(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (h Handler) Calendar(c *gin.Context) {
	data, err := h.eventService.Calendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%s.ics"`, c.Param("id")))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h Handler) QR(c *gin.Context) {
	data, err := h.eventService.ShareQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", data)
}

// bind reads the event form from JSON or multipart data together with the
// optional "image" file.
func (h Handler) bind(c *gin.Context) (dto.EventForm, *upload, bool) {
	var form dto.EventForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Debugf("failed to bind event form: %v", err)
		response.Error(c, h.logger, &errorz.ValidationError{Message: "Invalid form data"})
		return form, nil, false
	}

	image, err := openUpload(c, "image", h.maxUploadBytes)
	if err != nil {
		response.Error(c, h.logger, err)
		return form, nil, false
	}
	return form, image, true
}
