package admin

import (
	"context"
	"net/http"

	"github.com/campusevents/backend/cmd/app"
	"github.com/campusevents/backend/internal/adapters/controller/http/middlewares"
	"github.com/campusevents/backend/internal/adapters/controller/http/response"
	"github.com/campusevents/backend/internal/adapters/database/postgres"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/internal/domain/service"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/gin-gonic/gin"
)

type adminService interface {
	ListUsers(ctx context.Context, actorID string) ([]entity.User, error)
	ListEvents(ctx context.Context, actorID string) ([]entity.Event, error)
	Ban(ctx context.Context, targetID, actorID, reason string) error
	Unban(ctx context.Context, targetID, actorID string) error
	GrantAdmin(ctx context.Context, targetID, actorID string) error
	RevokeAdmin(ctx context.Context, targetID, actorID string) error
	ForceDeleteEvent(ctx context.Context, eventID, actorID string) error
	Stats(ctx context.Context, actorID string) (*dto.AdminStats, error)
}

type banForm struct {
	Reason string `form:"reason" json:"reason"`
}

type Handler struct {
	adminService adminService
	logger       *types.Logger
}

func New(a *app.App) *Handler {
	adminLogger := a.Named("admin")
	userStorage := postgres.NewUserStorage(a.DB)
	eventStorage := postgres.NewEventStorage(a.DB)
	guard := service.NewGuard(adminLogger, userStorage)

	return &Handler{
		adminService: service.NewAdminService(
			adminLogger,
			guard,
			userStorage,
			eventStorage,
			postgres.NewBlastStorage(a.DB),
			service.NewEventService(a.Named("events"), guard, eventStorage, a.Attachments(), a.EventOptions()),
		),
		logger: a.Logger,
	}
}

func (h Handler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h Handler) Users(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUsersFromEntities(users))
}

func (h Handler) Events(c *gin.Context) {
	events, err := h.adminService.ListEvents(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEventsFromEntities(events))
}

func (h Handler) Ban(c *gin.Context) {
	var form banForm
	// the reason is optional, an empty body is fine
	_ = c.ShouldBind(&form)

	h.respond(c, h.adminService.Ban(c.Request.Context(), c.Param("id"), middlewares.UserID(c), form.Reason))
}

func (h Handler) Unban(c *gin.Context) {
	h.respond(c, h.adminService.Unban(c.Request.Context(), c.Param("id"), middlewares.UserID(c)))
}

func (h Handler) GrantAdmin(c *gin.Context) {
	h.respond(c, h.adminService.GrantAdmin(c.Request.Context(), c.Param("id"), middlewares.UserID(c)))
}

func (h Handler) RevokeAdmin(c *gin.Context) {
	h.respond(c, h.adminService.RevokeAdmin(c.Request.Context(), c.Param("id"), middlewares.UserID(c)))
}

func (h Handler) DeleteEvent(c *gin.Context) {
	h.respond(c, h.adminService.ForceDeleteEvent(c.Request.Context(), c.Param("id"), middlewares.UserID(c)))
}

func (h Handler) respond(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
