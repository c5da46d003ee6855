package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akorchagin/pollster/internal/handlers/middleware"
	"github.com/akorchagin/pollster/internal/logger"
	"github.com/akorchagin/pollster/internal/models"
	"github.com/akorchagin/pollster/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	pollService pollService,
	ready http.Handler,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiauth := http.NewServeMux()
	apiauth.Handle("POST /signup", handleSignup(authService, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("POST /logout", handleLogout(authService))
	apiauth.Handle("POST /refresh-token", handleTokenRefresh(authService, logger))

	apivotes := http.NewServeMux()
	apivotes.Handle("POST /{pollID}/cast", withAuth(handleCastVote(pollService, logger)))
	apivotes.Handle("GET /{pollID}/results", handleResults(pollService, logger))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("POST /api/votes", withAuth(handleCreatePoll(pollService, logger)))
	root.Handle("/api/votes/", http.StripPrefix("/api/votes", apivotes))
	root.Handle("GET /metrics", promhttp.Handler())
	if ready != nil {
		root.Handle("GET /healthz", ready)
	}

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(),
	)

	return handler
}

type authService interface {
	// Sign up user and get login TokenPair
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Signup(ctx context.Context, arg auth.SignupParams) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound if credentials do not match
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found or used: ErrRefreshTokenNotFound / ErrRefreshTokenIsUsed
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokens(w http.ResponseWriter, pair models.TokenPair)

	// Expire auth cookies
	ClearTokens(w http.ResponseWriter)

	// Get refresh token from request
	GetRefresh(r *http.Request) (string, error)

	// Run the per-request token state machine
	ClassifyRequest(ctx context.Context, r *http.Request) auth.RequestAuth
}

type pollService interface {
	CreatePoll(ctx context.Context, question string, choiceTexts []string, creatorID uuid.UUID) (models.Poll, error)
	CastVote(ctx context.Context, pollID uuid.UUID, choiceID uuid.UUID, userID uuid.UUID) (models.ResultView, error)
	Results(ctx context.Context, pollID uuid.UUID) (models.ResultView, error)
}
