package notifications

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/campusevents/backend/cmd/app"
	"github.com/campusevents/backend/internal/adapters/controller/http/middlewares"
	"github.com/campusevents/backend/internal/adapters/controller/http/response"
	"github.com/campusevents/backend/internal/adapters/database/postgres"
	"github.com/campusevents/backend/internal/adapters/database/redis/feed"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/internal/domain/service"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type notificationService interface {
	ListForUser(ctx context.Context, userID string) ([]entity.Blast, error)
	HasUnseen(ctx context.Context, userID string) (bool, error)
	MarkSeen(ctx context.Context, userID string)
	Subscribe(ctx context.Context, userID string) (*feed.Subscription, error)
}

type Handler struct {
	notificationService notificationService
	upgrader            websocket.Upgrader
	logger              *types.Logger
}

func New(a *app.App) *Handler {
	return NewHandler(a.Logger, service.NewNotificationService(
		a.Named("notifications"),
		postgres.NewFavoriteStorage(a.DB),
		postgres.NewBlastStorage(a.DB),
		postgres.NewNotificationReadStorage(a.DB),
		a.ChangeFeed(),
	), a.PublicURL())
}

// NewHandler builds the handler. Websocket upgrades are accepted from publicURL's
// origin, or from any origin when publicURL is empty.
func NewHandler(logger *types.Logger, notificationService notificationService, publicURL string) *Handler {
	return &Handler{
		notificationService: notificationService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin(publicURL),
		},
		logger: logger,
	}
}

func (h Handler) List(c *gin.Context) {
	blasts, err := h.notificationService.ListForUser(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlastsFromEntities(blasts))
}

func (h Handler) Unseen(c *gin.Context) {
	unseen, err := h.notificationService.HasUnseen(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unseen": unseen})
}

func (h Handler) Seen(c *gin.Context) {
	h.notificationService.MarkSeen(c.Request.Context(), middlewares.UserID(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stream upgrades to a websocket and pushes every new blast of the caller's
// favorited events until either side goes away.
func (h Handler) Stream(c *gin.Context) {
	userID := middlewares.UserID(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.notificationService.Subscribe(ctx, userID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			h.logger.Warnf("(user: %s) failed to close subscription: %v", userID, err)
		}
	}()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("(user: %s) websocket upgrade failed: %v", userID, err)
		return
	}
	defer conn.Close()

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, sub.Events())
}

// readPump discards client messages and cancels the stream once the client is gone.
func (h Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h Handler) writePump(ctx context.Context, conn *websocket.Conn, events <-chan dto.BlastInserted) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case blast, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(blast); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func sameOrigin(publicURL string) func(r *http.Request) bool {
	if publicURL == "" || viper.GetBool("settings.debug") {
		return func(*http.Request) bool { return true }
	}
	allowed, err := url.Parse(publicURL)
	if err != nil {
		return func(*http.Request) bool { return false }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Scheme == allowed.Scheme && u.Host == allowed.Host
	}
}
