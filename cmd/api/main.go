package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/movie-api/internal/api/http"
	"github.com/spec-kit/movie-api/internal/api/http/handlers"
	"github.com/spec-kit/movie-api/internal/auth"
	"github.com/spec-kit/movie-api/internal/config"
	"github.com/spec-kit/movie-api/internal/events"
	"github.com/spec-kit/movie-api/internal/observability"
	"github.com/spec-kit/movie-api/internal/persistence"
	"github.com/spec-kit/movie-api/internal/repository"
	"github.com/spec-kit/movie-api/internal/service"
	"github.com/spec-kit/movie-api/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.DB, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init password hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pg.DB)
	movieRepo := repository.NewCachedMovieRepository(
		repository.NewMovieRepository(pg.DB), redis.Client, cfg.Cache.MoviesTTL(), logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Hasher:     hasher,
		Tokens:     tokens,
		Limiter:    auth.NewRedisLoginLimiter(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout()),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		MovieRepo:  movieRepo,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	movieService := service.NewMovieService(movieRepo)

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, logger),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Movies:         handlers.NewMoviesHandler(movieService),
		Metrics:        metrics.Handler(),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.Duration("token_ttl", tokens.TTL()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
