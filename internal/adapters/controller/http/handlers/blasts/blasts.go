package blasts

import (
	"context"
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
)

type blastService interface {
	Create(ctx context.Context, eventID, authorID string, form dto.BlastForm) (*entity.Blast, error)
	Delete(ctx context.Context, blastID, requesterID string) error
	ListForEvent(ctx context.Context, eventID string) ([]entity.Blast, error)
}

type Handler struct {
	blastService blastService
	logger       *types.Logger
}

func New(a *app.App) *Handler {
	blastsLogger := a.Named("blasts")
	eventStorage := postgres.NewEventStorage(a.DB)

	return &Handler{
		blastService: service.NewBlastService(
			blastsLogger,
			service.NewGuard(blastsLogger, postgres.NewUserStorage(a.DB)),
			postgres.NewBlastStorage(a.DB),
			eventStorage,
			postgres.NewFavoriteStorage(a.DB),
			a.Publisher(),
			a.Mailer(),
			a.PublicURL(),
		),
		logger: a.Logger,
	}
}

func (h Handler) List(c *gin.Context) {
	blasts, err := h.blastService.ListForEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlastsFromEntities(blasts))
}

func (h Handler) Create(c *gin.Context) {
	var form dto.BlastForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, h.logger, &errorz.ValidationError{Field: "content", Message: "Invalid form data"})
		return
	}

	blast, err := h.blastService.Create(c.Request.Context(), c.Param("id"), middlewares.UserID(c), form)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBlastFromEntity(*blast))
}

func (h Handler) Delete(c *gin.Context) {
	if err := h.blastService.Delete(c.Request.Context(), c.Param("id"), middlewares.UserID(c)); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
