package setup

import (
	"github.com/campusevents/backend/cmd/app"
	"github.com/campusevents/backend/internal/adapters/controller/http/handlers/admin"
	"github.com/campusevents/backend/internal/adapters/controller/http/handlers/blasts"
	"github.com/campusevents/backend/internal/adapters/controller/http/handlers/events"
	"github.com/campusevents/backend/internal/adapters/controller/http/handlers/notifications"
	"github.com/campusevents/backend/internal/adapters/controller/http/middlewares"
	"github.com/spf13/viper"
)

func Setup(a *app.App) {
	// Pre-setup and global middlewares
	middle := middlewares.New(a)
	eventsHandler := events.New(a)
	blastsHandler := blasts.New(a)
	notificationsHandler := notifications.New(a)
	adminHandler := admin.New(a)

	a.Use(middle.Recovery, middle.Logger)

	if viper.GetString("service.storage.type") == "local" {
		a.Static("/files", viper.GetString("service.storage.base-path"))
	}

	api := a.Group("/api")

	// Public:
	api.GET("/events", eventsHandler.List)
	api.GET("/events/:id", eventsHandler.Get)
	api.GET("/events/:id/blasts", blastsHandler.List)
	api.GET("/events/:id/calendar.ics", eventsHandler.Calendar)
	api.GET("/events/:id/qr.png", eventsHandler.QR)

	// User:
	authorized := api.Group("", middle.Authorized)
	authorized.POST("/events", eventsHandler.Create)
	authorized.PUT("/events/:id", eventsHandler.Update)
	authorized.DELETE("/events/:id", eventsHandler.Delete)
	authorized.GET("/me/events", eventsHandler.Mine)
	authorized.GET("/me/saved", eventsHandler.Saved)
	authorized.GET("/me/favorites", eventsHandler.FavoriteIDs)
	authorized.GET("/events/:id/favorite", eventsHandler.FavoriteStatus)
	authorized.POST("/events/:id/favorite", eventsHandler.ToggleFavorite)
	authorized.POST("/events/:id/blasts", blastsHandler.Create)
	authorized.DELETE("/blasts/:id", blastsHandler.Delete)
	authorized.GET("/notifications", notificationsHandler.List)
	authorized.GET("/notifications/unseen", notificationsHandler.Unseen)
	authorized.POST("/notifications/seen", notificationsHandler.Seen)
	authorized.GET("/notifications/stream", notificationsHandler.Stream)

	// Admin:
	adminGroup := authorized.Group("/admin")
	adminGroup.GET("/stats", adminHandler.Stats)
	adminGroup.GET("/users", adminHandler.Users)
	adminGroup.GET("/events", adminHandler.Events)
	adminGroup.POST("/users/:id/ban", adminHandler.Ban)
	adminGroup.POST("/users/:id/unban", adminHandler.Unban)
	adminGroup.POST("/users/:id/admin", adminHandler.GrantAdmin)
	adminGroup.DELETE("/users/:id/admin", adminHandler.RevokeAdmin)
	adminGroup.DELETE("/events/:id", adminHandler.DeleteEvent)
}
