package response

import (
	"errors"
	"net/http"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/service"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/gin-gonic/gin"
)

// Status maps a domain error to its HTTP status.
func Status(err error) int {
	var (
		validation  *errorz.ValidationError
		user        *errorz.UserError
		persistence *errorz.PersistenceError
	)
	switch {
	case errors.Is(err, errorz.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, errorz.Unauthorized):
		return http.StatusForbidden
	case errors.Is(err, errorz.NotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &user):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRealtimeDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &persistence):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with {"error": message}. Internal causes are
// logged and replaced with a generic message.
func Error(c *gin.Context, logger *types.Logger, err error) {
	status := Status(err)
	message := err.Error()

	var persistence *errorz.PersistenceError
	switch {
	case errors.As(err, &persistence):
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), persistence.Err)
	case status == http.StatusInternalServerError:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		message = "Internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
