package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/quranapp/backend/config"
	"github.com/quranapp/backend/internal/container"
	"github.com/quranapp/backend/internal/infrastructure/postgres"
	"github.com/quranapp/backend/internal/infrastructure/storage"
	"github.com/quranapp/backend/internal/interface/middleware"
	"github.com/quranapp/backend/internal/router"
	"github.com/quranapp/backend/pkg/helpers"
	"github.com/quranapp/backend/pkg/validation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("postgres connection failed")
	}
	defer pool.Close()

	if err := runMigrations(cfg); err != nil {
		logger.WithError(err).Fatal("migrations failed")
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	var profiles storage.ProfileStorage
	switch cfg.ProfileStorage {
	case "gcs":
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Fatal("gcs client failed")
		}
		container.SetGCS(gcs)
		profiles = storage.NewGCS(gcs, cfg.GCSBucket)
	default:
		profiles = storage.NewLocal(cfg.ProfilePictureDir)
	}

	// Queues are optional in development; a failed connection degrades to
	// logged, undelivered jobs rather than refusing to start.
	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.WhatsAppQueue); err != nil {
		logger.WithError(err).Warn("whatsapp queue unavailable")
	} else {
		container.SetWAPub(pub)
		defer pub.Close()
	}
	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EmailQueue); err != nil {
		logger.WithError(err).Warn("email queue unavailable")
	} else {
		container.SetMailPub(pub)
		defer pub.Close()
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPool(pool)
	container.SetRedis(rdb)
	container.SetProfileStorage(profiles)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.RealIP())
	if cfg.HTTPLogEnabled {
		engine.Use(gin.Logger())
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": cfg.AppName})
	})
	engine.Static("/static/profile_pictures", cfg.ProfilePictureDir)

	reg := router.NewRegistry(engine)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func runMigrations(cfg *config.Config) error {
	url := strings.Replace(cfg.PostgresDSN(), "postgres://", "pgx5://", 1)
	m, err := migrate.New("file://"+cfg.MigrationsDir, url)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
