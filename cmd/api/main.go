package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/asta-dev/fintech-sandbox/internal/api/http"
	"github.com/asta-dev/fintech-sandbox/internal/api/http/handlers"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/config"
	"github.com/asta-dev/fintech-sandbox/internal/events"
	"github.com/asta-dev/fintech-sandbox/internal/observability"
	"github.com/asta-dev/fintech-sandbox/internal/persistence"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	"github.com/asta-dev/fintech-sandbox/internal/worker"
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
	roleRepo := repository.NewRoleRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	transferStore := repository.NewTransferStore(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	throttle := persistence.NewLoginThrottle(redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		RoleRepo: roleRepo,
		Throttle: throttle,
	}, logger)
	userService := service.NewUserService(userRepo, roleRepo, cfg.Auth.BcryptCost)
	roleService := service.NewRoleService(roleRepo)
	ledgerService := service.NewLedgerService(accountRepo, subscriptionRepo, dispatcher, logger)
	transferService := service.NewTransferService(service.TransferDependencies{
		AccountRepo:     accountRepo,
		UserRepo:        userRepo,
		TransferStore:   transferStore,
		TransactionRepo: transactionRepo,
		Dispatcher:      dispatcher,
	}, logger)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo)
	billingService := service.NewBillingService(userRepo, subscriptionRepo, ledgerService, dispatcher, cfg.Billing, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Roles:          handlers.NewRolesHandler(roleService),
		Accounts:       handlers.NewAccountsHandler(ledgerService, transferService, metrics),
		Subscriptions:  handlers.NewSubscriptionsHandler(subscriptionService),
		Payments:       handlers.NewPaymentsHandler(billingService),
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
