package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civic-care/issue-service/internal/api/http"
	"github.com/civic-care/issue-service/internal/api/http/handlers"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/config"
	"github.com/civic-care/issue-service/internal/events"
	"github.com/civic-care/issue-service/internal/identity"
	"github.com/civic-care/issue-service/internal/observability"
	"github.com/civic-care/issue-service/internal/persistence"
	"github.com/civic-care/issue-service/internal/repository"
	"github.com/civic-care/issue-service/internal/service"
	"github.com/civic-care/issue-service/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	tokens := identity.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	provider := identity.NewLocalProvider(userRepo, cfg.Auth.BcryptCost)

	userService := service.NewUserService(userRepo, cfg.Auth.AdminSetupSecret, logger)
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:    issueRepo,
		TimelineRepo: timelineRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	staffService := service.NewStaffService(userRepo, provider, logger)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, dispatcher, cfg.Billing.SubscriptionAmount)
	authService := service.NewAuthService(userRepo, tokens)
	statsService := service.NewStatsService(userRepo, issueRepo, paymentRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokens, userService)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Issues:         handlers.NewIssuesHandler(issueService),
		AdminIssues:    handlers.NewAdminIssuesHandler(issueService, statsService),
		StaffIssues:    handlers.NewStaffIssuesHandler(issueService),
		StaffAccounts:  handlers.NewStaffAccountsHandler(staffService),
		Payments:       handlers.NewPaymentsHandler(paymentService),
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
