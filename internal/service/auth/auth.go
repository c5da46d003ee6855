package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akorchagin/pollster/internal/apperrors"
	"github.com/akorchagin/pollster/internal/models"
	"github.com/akorchagin/pollster/internal/repository"
	"github.com/akorchagin/pollster/internal/service/auth/tokenmanager"
)

// Cookie names the tokens travel in
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// TokenState classifies the token set a request presented.
// One explicit state machine instead of scattered cookie conditionals.
type TokenState int

const (
	// No access token at all
	NoToken TokenState = iota

	// Access token present and verified
	ValidAccess

	// Access token expired, refresh token present: client should call the
	// refresh exchange instead of logging in again
	ExpiredAccessWithRefresh

	// Access token expired and nothing to refresh with
	ExpiredAccessNoRefresh

	// Access token malformed or tampered
	InvalidAccess
)

// RequestAuth is the outcome of classifying one request
type RequestAuth struct {
	State      TokenState
	HasRefresh bool

	// Set only when State == ValidAccess
	User models.User
}

type Config struct {
	// Hasher to use during user signup or login
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Marks auth cookies Secure
	SecureCookies bool
}

type Service struct {
	tokens *tokenmanager.TokenManager
	hasher PasswordHasher
	users  repository.UserRepo

	secureCookies bool
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, users repository.UserRepo) (*Service, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if tokens == nil || users == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	return &Service{
		tokens:        tokens,
		hasher:        hasher,
		users:         users,
		secureCookies: cfg.SecureCookies,
	}, nil
}

type SignupParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s *Service) Signup(ctx context.Context, arg SignupParams) (models.User, models.TokenPair, error) {
	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.users.CreateUser(ctx, repository.CreateUserParams{
		Email:        arg.Email,
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

func (s *Service) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Run compare anyway so unknown emails cost the same as bad passwords
		_ = s.hasher.Compare("$2a$10$0000000000000000000000000000000000000000000000000000.", password)
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
// The presented token is marked used first, so every refresh rotates.
func (s *Service) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.tokens.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.users.GetUserByID(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

// ClassifyRequest runs the per-request token state machine.
// Evaluated purely from the presented cookies, no server-side session.
func (s *Service) ClassifyRequest(ctx context.Context, r *http.Request) RequestAuth {
	auth := RequestAuth{}

	if _, err := r.Cookie(RefreshCookieName); err == nil {
		auth.HasRefresh = true
	}

	accessCookie, err := r.Cookie(AccessCookieName)
	if err != nil || accessCookie.Value == "" {
		auth.State = NoToken
		return auth
	}

	userID, err := s.tokens.ParseAccess(ctx, accessCookie.Value)
	switch {
	case errors.Is(err, apperrors.ErrAccessTokenExpired):
		if auth.HasRefresh {
			auth.State = ExpiredAccessWithRefresh
		} else {
			auth.State = ExpiredAccessNoRefresh
		}
		return auth
	case err != nil:
		auth.State = InvalidAccess
		return auth
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		// Token verifies but its subject is gone: treat as tampered
		auth.State = InvalidAccess
		return auth
	}

	auth.State = ValidAccess
	auth.User = user
	return auth
}

// SetTokens attaches the pair to the response as HttpOnly cookies
func (s *Service) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, s.cookie(AccessCookieName, pair.Access.Value, pair.Access.ExpiresAt))
	http.SetCookie(w, s.cookie(RefreshCookieName, pair.Refresh.Value, pair.Refresh.ExpiresAt))
}

// ClearTokens expires both auth cookies
func (s *Service) ClearTokens(w http.ResponseWriter) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, s.cookie(AccessCookieName, "", expired))
	http.SetCookie(w, s.cookie(RefreshCookieName, "", expired))
}

// GetRefresh reads the refresh token the request carries
func (s *Service) GetRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrRefreshTokenNotFound
	}
	return cookie.Value, nil
}

func (s *Service) cookie(name string, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
