package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campusevents/backend/cmd/app"
	"github.com/campusevents/backend/internal/adapters/controller/http/response"
	"github.com/campusevents/backend/internal/adapters/database/postgres"
	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/internal/domain/service"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

const (
	identityKey = "identity"
	userKey     = "user"
)

type userService interface {
	Ensure(ctx context.Context, identity dto.Identity) (*entity.User, error)
}

// Claims is the bearer token payload issued by the identity provider.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

type Handler struct {
	secret      []byte
	logger      *types.Logger
	userService userService
}

func New(a *app.App) *Handler {
	return NewHandler(a.Logger, []byte(viper.GetString("service.auth.jwt-secret")), service.NewUserService(postgres.NewUserStorage(a.DB)))
}

func NewHandler(logger *types.Logger, secret []byte, userService userService) *Handler {
	return &Handler{
		secret:      secret,
		logger:      logger,
		userService: userService,
	}
}

// Logger logs every request with its status and latency.
func (h Handler) Logger(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Errorf("%s %s %d %s", c.Request.Method, path, status, time.Since(start))
	case status >= http.StatusBadRequest:
		h.logger.Warnf("%s %s %d %s", c.Request.Method, path, status, time.Since(start))
	default:
		h.logger.Debugf("%s %s %d %s", c.Request.Method, path, status, time.Since(start))
	}
}

// Recovery turns panics into 500 responses.
func (h Handler) Recovery(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("panic in %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}()
	c.Next()
}

// Authorized resolves the bearer token, makes sure the user row exists and
// rejects banned users.
func (h Handler) Authorized(c *gin.Context) {
	header := c.GetHeader("Authorization")
	// browsers cannot set headers on websocket handshakes
	if header == "" && websocket.IsWebSocketUpgrade(c.Request) && c.Query("access_token") != "" {
		header = "Bearer " + c.Query("access_token")
	}

	identity, err := h.parse(header)
	if err != nil {
		h.logger.Debugf("rejected token: %v", err)
		response.Error(c, h.logger, errorz.ErrAuthRequired)
		return
	}

	user, err := h.userService.Ensure(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if user.IsBanned {
		response.Error(c, h.logger, errorz.ErrBanned)
		return
	}

	c.Set(identityKey, identity)
	SetUser(c, user)
	c.Next()
}

func (h Handler) parse(header string) (dto.Identity, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return dto.Identity{}, errors.New("authorization header missing or invalid")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return dto.Identity{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return dto.Identity{}, errors.New("token has no subject")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return dto.Identity{}, errors.New("token has no email")
	}

	return dto.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}

// UserID returns the authenticated user's id or "".
func UserID(c *gin.Context) string {
	if user := User(c); user != nil {
		return user.ID
	}
	return ""
}

// SetUser stores the authenticated user on the request.
func SetUser(c *gin.Context, user *entity.User) {
	c.Set(userKey, user)
}

// User returns the authenticated user or nil.
func User(c *gin.Context) *entity.User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*entity.User)
	return user
}
