package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/facility-service/internal/api/http"
	"github.com/spec-kit/facility-service/internal/api/http/handlers"
	"github.com/spec-kit/facility-service/internal/auth"
	"github.com/spec-kit/facility-service/internal/config"
	"github.com/spec-kit/facility-service/internal/events"
	"github.com/spec-kit/facility-service/internal/observability"
	"github.com/spec-kit/facility-service/internal/persistence"
	"github.com/spec-kit/facility-service/internal/repository"
	"github.com/spec-kit/facility-service/internal/seed"
	"github.com/spec-kit/facility-service/internal/service"
	"github.com/spec-kit/facility-service/internal/worker"
	"github.com/spec-kit/facility-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		requestRepo repository.RequestRepository
		assetRepo   repository.AssetRepository
		userRepo    repository.UserRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		requestRepo = repository.NewRequestRepository(pool)
		assetRepo = repository.NewAssetRepository(pool)
		userRepo = repository.NewUserRepository(pool)
	} else {
		requestRepo = repository.NewMemoryRequestRepository()
		assetRepo = repository.NewMemoryAssetRepository()
		userRepo = repository.NewMemoryUserRepository()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	if cfg.App.SeedDemoData {
		if err := seed.Run(ctx, seed.Dependencies{
			RequestRepo: requestRepo,
			AssetRepo:   assetRepo,
			UserRepo:    userRepo,
			BcryptCost:  cfg.Auth.BcryptCost,
			Logger:      logger,
		}); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	engine := workflow.NewEngine(workflow.WithExceptionStatus(cfg.Workflow.AllowException))

	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		AssetRepo:   assetRepo,
		UserRepo:    userRepo,
		Engine:      engine,
		Dispatcher:  dispatcher,
	})
	assetService := service.NewAssetService(assetRepo, dispatcher)
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokenManager)
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		RequestRepo: requestRepo,
		AssetRepo:   assetRepo,
		Redis:       redis.Client,
		CacheTTL:    cfg.Workflow.DashboardCacheTTL(),
		Logger:      logger,
	})
	dashboardService.RegisterInvalidation(dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Users:          handlers.NewUsersHandler(userService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
