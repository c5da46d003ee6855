package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/akorchagin/pollster/internal/db"
	"github.com/akorchagin/pollster/internal/handlers"
	"github.com/akorchagin/pollster/internal/health"
	"github.com/akorchagin/pollster/internal/logger"
	"github.com/akorchagin/pollster/internal/repository"
	"github.com/akorchagin/pollster/internal/repository/postgres"
	"github.com/akorchagin/pollster/internal/repository/redis"
	"github.com/akorchagin/pollster/internal/service/auth"
	"github.com/akorchagin/pollster/internal/service/auth/tokenmanager"
	"github.com/akorchagin/pollster/internal/service/poll"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if c.SecretKey == "" {
		return nil, errors.New("secret key must be configured")
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Refresh tokens may live in redis instead of postgres
	var refreshRepo repository.RefreshTokenRepo = storage.Refresh()
	var redisClient *goredis.Client
	if c.RefreshStore == "redis" {
		redisClient, err = redis.NewClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		refreshRepo = redis.NewRefreshTokenRepo(redisClient, "refresh")
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	}, refreshRepo)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{SecureCookies: c.SecureCookies}, tokenManager, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	pollService := poll.NewService(storage.Poll())

	checker := health.NewChecker(pool, redisClient)

	mux := handlers.NewRouter(
		authService,
		pollService,
		checker.ReadyHandler(),
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
