package router

import (
	"github.com/quranapp/backend/internal/application"
	"github.com/quranapp/backend/internal/container"
	"github.com/quranapp/backend/internal/infrastructure/postgres"
	handlers "github.com/quranapp/backend/internal/interface/http"
	"github.com/quranapp/backend/internal/router/modules"
)

// InitModules builds the repositories, application service and handlers from
// the container singletons and adds every route module to the registry.
func InitModules(reg *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPool()
	rdb := container.GetRedis()

	userRepo := postgres.NewUserRepository(pool)
	otpRepo := postgres.NewOTPRepository(pool)

	// Assign through concrete-typed locals so a nil publisher stays a nil
	// interface inside the service.
	var wa, mail application.JobPublisher
	if p := container.GetWAPub(); p != nil {
		wa = p
	}
	if p := container.GetMailPub(); p != nil {
		mail = p
	}

	svc := application.NewService(
		userRepo,
		otpRepo,
		container.GetProfileStorage(),
		wa,
		mail,
		container.GetJWT(),
		rdb,
		logger,
		cfg.OTPTTL,
	)

	authHandler := handlers.NewAuthHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(svc, logger)

	reg.Add(modules.NewAuthModule(authHandler, rdb, logger))
	reg.Add(modules.NewUserModule(userHandler, container.GetJWT(), rdb))
}
