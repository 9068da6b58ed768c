package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	postgresStorage "github.com/campusevents/backend/internal/adapters/database/postgres"
	"github.com/campusevents/backend/internal/adapters/database/redis"
	"github.com/campusevents/backend/internal/adapters/storage"
	"github.com/campusevents/backend/internal/domain/utils/location"
	"github.com/campusevents/backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database   *gorm.DB
	Redis      *redis.Client   // nil when realtime is disabled
	Storage    storage.Storage // nil when uploads are disabled
	SMTPDialer *gomail.Dialer  // nil when mail is disabled
}

func initConfig() {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	// service.database.password <- SERVICE_DATABASE_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
}

func setDefaults() {
	viper.SetDefault("settings.timezone", "UTC")
	viper.SetDefault("settings.http.address", ":8080")
	viper.SetDefault("settings.http.shutdown-timeout", 10*time.Second)
	viper.SetDefault("settings.images.max-width", 1600)
	viper.SetDefault("settings.images.max-upload-bytes", 10<<20)
	viper.SetDefault("settings.realtime.enabled", true)
	viper.SetDefault("settings.realtime.channel", "blasts:insert")
	viper.SetDefault("settings.blast-emails.enabled", false)
	viper.SetDefault("service.storage.type", "local")
	viper.SetDefault("service.storage.base-path", "./uploads")
	viper.SetDefault("service.database.port", 5432)
	viper.SetDefault("service.database.sslmode", "disable")
	viper.SetDefault("service.redis.port", 6379)
	viper.SetDefault("service.smtp.port", 587)
}

func Get() *Config {
	initConfig()

	err := logger.Init(logger.Config{
		Debug:        viper.GetBool("settings.debug"),
		TimeLocation: location.Location(),
		LogToFile:    viper.GetBool("settings.logging.log-to-file"),
		LogsDir:      viper.GetString("settings.logging.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	gormConfig := &gorm.Config{TranslateError: true}
	if viper.GetBool("settings.debug") {
		gormConfig.Logger = gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=%s TimeZone=UTC",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
		viper.GetString("service.database.sslmode"),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	if err = database.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		logger.Log.Warnf("Failed to enable pgcrypto, gen_random_uuid() needs PostgreSQL 13+: %v", err)
	}
	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	cfg := &Config{Database: database}

	if viper.GetBool("settings.realtime.enabled") {
		redisLogger, errLogger := logger.Named("realtime")
		if errLogger != nil {
			panic(errLogger)
		}
		cfg.Redis, err = redis.New(redis.Options{
			Host:     viper.GetString("service.redis.host"),
			Port:     viper.GetInt("service.redis.port"),
			Password: viper.GetString("service.redis.password"),
			DB:       viper.GetInt("service.redis.db"),
			Channel:  viper.GetString("settings.realtime.channel"),
		}, redisLogger)
		if err != nil {
			logger.Log.Panicf("Failed to connect to redis: %v", err)
		}
		logger.Log.Info("Successfully connected to redis")
	}

	if storageType := viper.GetString("service.storage.type"); storageType != "none" {
		cfg.Storage, err = storage.New(storage.Config{
			Type:      storageType,
			BasePath:  viper.GetString("service.storage.base-path"),
			BaseURL:   viper.GetString("service.storage.base-url"),
			Bucket:    viper.GetString("service.storage.bucket"),
			Region:    viper.GetString("service.storage.region"),
			AccessKey: viper.GetString("service.storage.access-key"),
			SecretKey: viper.GetString("service.storage.secret-key"),
			Endpoint:  viper.GetString("service.storage.endpoint"),
		})
		if err != nil {
			logger.Log.Panicf("Failed to init attachment storage: %v", err)
		}
		logger.Log.Infof("Attachment storage: %s", storageType)
	}

	if viper.GetString("service.smtp.host") != "" {
		cfg.SMTPDialer = gomail.NewDialer(
			viper.GetString("service.smtp.host"),
			viper.GetInt("service.smtp.port"),
			viper.GetString("service.smtp.username"),
			viper.GetString("service.smtp.password"),
		)
	}

	return cfg
}
