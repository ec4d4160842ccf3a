package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jboilerplate/portal/internal/cache"
	"github.com/jboilerplate/portal/internal/config"
	"github.com/jboilerplate/portal/internal/handlers"
	"github.com/jboilerplate/portal/internal/manifest"
	"github.com/jboilerplate/portal/internal/metrics"
	"github.com/jboilerplate/portal/internal/middleware"
	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/internal/utils"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Bootstrap credentials for a fresh install. The setup wizard replaces them.
const (
	defaultAdminEmail    = "admin@localhost"
	defaultAdminPassword = "admin"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg       *config.Config
	db        *gorm.DB
	store     cache.Store
	redis     *cache.RedisStore
	metrics   *metrics.Metrics
	scheduler *services.MaintenanceScheduler
	logs      *services.SystemLogService
	limiters  []*middleware.RateLimiter

	setupHandler        *handlers.SetupHandler
	systemConfigHandler *handlers.SystemConfigHandler
	menuHandler         *handlers.MenuStructureHandler
	manifestHandler     *handlers.ManifestHandler
	pageHandler         *handlers.PageHandler
	logoHandler         *handlers.LogoHandler
	imageHandler        *handlers.ImageHandler
	authHandler         *handlers.AuthHandler
	systemHandler       *handlers.SystemHandler
	healthHandler       *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, cache, services, schedulers.
func bootstrap(cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := models.SeedDefaultData(db); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	app := &appServices{cfg: cfg, db: db, metrics: metrics.New()}

	// Config cache: Redis when enabled and reachable, otherwise in-process
	app.store = cache.NewMemoryStore()
	if cfg.Redis.Enabled {
		rs := cache.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, "jboilerplate:")
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-memory config cache")
			_ = rs.Close()
		} else {
			app.redis = rs
			app.store = rs
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis config cache")
		}
	}

	routes := manifest.NewStore(cfg.RoutesManifestPath())
	app.logs = services.NewSystemLogService(db)
	configService := services.NewSystemConfigService(db, app.store,
		time.Duration(cfg.Portal.ConfigCacheTTL)*time.Second, cfg.SystemConfigFilePath())
	menuService := services.NewMenuStructureService(db)
	pageService := services.NewPageService(db, routes, menuService, cfg.Portal.PagesDir)
	logoService := services.NewLogoService(cfg.LogoDir())
	authService := services.NewAuthService(db, &cfg.JWT)

	if err := authService.CreateAdminIfNotExists(defaultAdminEmail, defaultAdminPassword); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	app.scheduler = services.NewMaintenanceScheduler(db, logoService, app.logs, cfg.Log.RetentionDays)
	if err := app.scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start maintenance scheduler: %w", err)
	}

	if err := app.registerGauges(routes, menuService); err != nil {
		logger.Warn().Err(err).Msg("Failed to register gauges")
	}

	app.setupHandler = handlers.NewSetupHandler(services.NewSetupService(db, cfg, configService))
	app.systemConfigHandler = handlers.NewSystemConfigHandler(configService, app.metrics)
	app.menuHandler = handlers.NewMenuStructureHandler(menuService, app.metrics)
	app.manifestHandler = handlers.NewManifestHandler(routes)
	app.pageHandler = handlers.NewPageHandler(pageService)
	app.logoHandler = handlers.NewLogoHandler(logoService)
	app.imageHandler = handlers.NewImageHandler(services.NewImageService(cfg.UploadDir(), nil))
	app.authHandler = handlers.NewAuthHandler(authService)
	app.systemHandler = handlers.NewSystemHandler(services.NewSystemStatusService(db, cfg, routes), app.logs)
	app.healthHandler = handlers.NewHealthHandler(db)

	return app, nil
}

func (s *appServices) registerGauges(routes *manifest.Store, menus *services.MenuStructureService) error {
	if err := s.metrics.RegisterGauge("routes", "manifest_entries", "Entries in the generated routes manifest.", func() float64 {
		entries, err := routes.Read()
		if err != nil {
			return 0
		}
		return float64(len(entries))
	}); err != nil {
		return err
	}
	return s.metrics.RegisterGauge("menu", "structures", "Stored menu structures.", func() float64 {
		n, err := menus.Count(context.Background())
		if err != nil {
			return 0
		}
		return float64(n)
	})
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown(ctx context.Context) {
	for _, l := range s.limiters {
		l.Stop()
	}
	s.scheduler.Stop(ctx)
	logger.Info().Msg("Maintenance scheduler stopped")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
