package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/core/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/handlers"
	"github.com/SscSPs/phone_store_caisse/internal/middleware"
	"github.com/SscSPs/phone_store_caisse/internal/platform/config"
	"github.com/SscSPs/phone_store_caisse/internal/platform/database"
	"github.com/SscSPs/phone_store_caisse/internal/platform/lock"
	"github.com/SscSPs/phone_store_caisse/internal/repositories/database/pgsql"
	"github.com/SscSPs/phone_store_caisse/internal/repositories/memory"
	"github.com/gin-gonic/gin"
)

// @title Phone Store Caisse API
// @version 1.0
// @description Cash register ledger for the phone store back office.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	locker := lock.Noop()
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, cfg.MutationLockTTL)
		logger.Info("Redis connected; register mutations and rate limits are shared across instances.")
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, locker)
	if err := bootstrapAdmin(ctx, cfg, serviceContainer, logger); err != nil {
		logger.Error("Failed to bootstrap admin user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, redisClient); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore connects the configured persistence backend and returns its repositories.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using the in-memory store")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	logger.Info("Running database migrations...", slog.String("source", cfg.MigrationsURL))
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsURL); err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func bootstrapAdmin(ctx context.Context, cfg *config.Config, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	if cfg.BootstrapAdminUsername == "" {
		return nil
	}
	_, err := svc.Auth.CreateUser(ctx, dto.CreateUserRequest{
		Username: cfg.BootstrapAdminUsername,
		Name:     "Administrator",
		Password: cfg.BootstrapAdminPassword,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, apperrors.ErrDuplicate) {
		logger.Info("Bootstrap admin already exists", slog.String("username", cfg.BootstrapAdminUsername))
		return nil
	}
	if err == nil {
		logger.Info("Bootstrap admin created", slog.String("username", cfg.BootstrapAdminUsername))
	}
	return err
}
