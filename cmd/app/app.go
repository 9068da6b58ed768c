package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/campusevents/backend/internal/adapters/config"
	"github.com/campusevents/backend/internal/adapters/database/redis"
	"github.com/campusevents/backend/internal/adapters/storage"
	"github.com/campusevents/backend/internal/domain/service"
	"github.com/campusevents/backend/internal/domain/utils/location"
	"github.com/campusevents/backend/pkg/logger"
	"github.com/campusevents/backend/pkg/logger/types"
	qr "github.com/campusevents/backend/pkg/qrcode"
	"github.com/campusevents/backend/pkg/smtp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

type App struct {
	*gin.Engine
	DB      *gorm.DB
	Redis   *redis.Client
	Storage storage.Storage
	SMTP    *smtp.Client
	Logger  *types.Logger
}

func New(config *config.Config) (*App, error) {
	httpLogger, err := logger.Named("http")
	if err != nil {
		return nil, err
	}

	if !viper.GetBool("settings.debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.MaxMultipartMemory = viper.GetInt64("settings.images.max-upload-bytes")

	a := &App{
		Engine:  engine,
		DB:      config.Database,
		Redis:   config.Redis,
		Storage: config.Storage,
		Logger:  httpLogger,
	}
	if config.SMTPDialer != nil {
		a.SMTP = smtp.NewClient(config.SMTPDialer, viper.GetString("service.smtp.email"), viper.GetString("service.smtp.domain"))
	}

	return a, nil
}

// Named returns the component logger, falling back to the http logger.
func (a *App) Named(name string) *types.Logger {
	named, err := logger.Named(name)
	if err != nil {
		return a.Logger
	}
	return named
}

// PublicURL is the base of public event pages.
func (a *App) PublicURL() string {
	return strings.TrimRight(viper.GetString("settings.public-url"), "/")
}

func (a *App) EventOptions() service.EventOptions {
	style := qr.Default
	style.LogoPath = viper.GetString("settings.qr.logo-path")
	return service.EventOptions{
		MaxImageWidth: viper.GetUint("settings.images.max-width"),
		PublicURL:     a.PublicURL(),
		Location:      location.Location(),
		QR:            style,
	}
}

// Attachments returns the attachment store or nil.
func (a *App) Attachments() service.AttachmentStore {
	if a.Storage == nil {
		return nil
	}
	return a.Storage
}

// Publisher returns the change feed publisher or nil when realtime is disabled.
func (a *App) Publisher() service.BlastPublisher {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Feed
}

// ChangeFeed returns the change feed subscriber or nil when realtime is disabled.
func (a *App) ChangeFeed() service.ChangeFeed {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Feed
}

// Mailer returns the blast mailer or nil when blast e-mails are off.
func (a *App) Mailer() service.BlastMailer {
	if a.SMTP == nil || !viper.GetBool("settings.blast-emails.enabled") {
		return nil
	}
	return a.SMTP
}

// Start serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Start() {
	if viper.GetBool("settings.logging.mail-errors.enabled") {
		if a.SMTP == nil {
			logger.Log.Errorf("Failed to set mail log hook: smtp is not configured")
		} else {
			logger.SetLogHook(a.SMTP.LogHook(
				viper.GetString("settings.logging.mail-errors.to"),
				zapcore.Level(viper.GetInt("settings.logging.mail-errors.level")),
			))
		}
	}

	server := &http.Server{
		Addr:    viper.GetString("settings.http.address"),
		Handler: a.Engine,
	}

	go func() {
		logger.Log.Infof("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Panicf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("settings.http.shutdown-timeout"))
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Failed to shut down gracefully: %v", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Errorf("Failed to close redis: %v", err)
		}
	}
}
