package blasts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campusevents/backend/internal/adapters/controller/http/middlewares"
	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlasts struct {
	owner string
}

func (f *fakeBlasts) Create(_ context.Context, eventID, authorID string, form dto.BlastForm) (*entity.Blast, error) {
	if authorID != f.owner {
		return nil, errorz.NotOwner("send blasts for this event")
	}
	if strings.TrimSpace(form.Content) == "" {
		return nil, &errorz.ValidationError{Field: "content", Message: "Content is required"}
	}
	return &entity.Blast{ID: "b1", EventID: eventID, CreatorID: authorID, Content: form.Content, CreatedAt: time.Now()}, nil
}

func (f *fakeBlasts) Delete(_ context.Context, _, requesterID string) error {
	if requesterID != f.owner {
		return errorz.NotOwner("delete this blast")
	}
	return nil
}

func (f *fakeBlasts) ListForEvent(context.Context, string) ([]entity.Blast, error) {
	return nil, errorz.ErrEventNotFound
}

func newRouter(service *fakeBlasts, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{blastService: service, logger: logger.Nop()}

	r := gin.New()
	r.GET("/events/:id/blasts", h.List)
	g := r.Group("", func(c *gin.Context) {
		middlewares.SetUser(c, &entity.User{ID: userID})
	})
	g.POST("/events/:id/blasts", h.Create)
	g.DELETE("/blasts/:id", h.Delete)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/events/e1/blasts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	w := post(newRouter(&fakeBlasts{owner: "u1"}, "u1"), `{"content":"Room changed"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"content":"Room changed"`)
	assert.Contains(t, w.Body.String(), `"event_id":"e1"`)
}

func TestCreateErrors(t *testing.T) {
	w := post(newRouter(&fakeBlasts{owner: "u1"}, "u2"), `{"content":"spam"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = post(newRouter(&fakeBlasts{owner: "u1"}, "u1"), `{"content":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Content is required"}`, w.Body.String())
}

func TestDeleteAndList(t *testing.T) {
	r := newRouter(&fakeBlasts{owner: "u1"}, "u1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/blasts/b1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/missing/blasts", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
