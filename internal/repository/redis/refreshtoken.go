package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akorchagin/pollster/internal/apperrors"
	"github.com/akorchagin/pollster/internal/models"
	"github.com/akorchagin/pollster/internal/repository"
)

// RefreshTokenRepo keeps refresh tokens as expiring keys. GETDEL makes a
// token single-use in one atomic step; a reused token is indistinguishable
// from an unknown one here and surfaces as not found.
type RefreshTokenRepo struct {
	client *redis.Client
	prefix string
}

func NewRefreshTokenRepo(client *redis.Client, prefix string) *RefreshTokenRepo {
	return &RefreshTokenRepo{
		client: client,
		prefix: prefix,
	}
}

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	payload, err := json.Marshal(token)
	if err != nil {
		return token, fmt.Errorf("encode refresh token: %w", err)
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenExpired)
	}

	if err := r.client.Set(ctx, r.key(token.Token), payload, ttl).Err(); err != nil {
		return token, fmt.Errorf("redis error: %w", err)
	}

	return token, nil
}

func (r *RefreshTokenRepo) GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	var token models.RefreshToken

	payload, err := r.client.GetDel(ctx, r.key(tokenString)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	case err != nil:
		return token, fmt.Errorf("redis error: %w", err)
	}

	if err := json.Unmarshal(payload, &token); err != nil {
		return token, fmt.Errorf("decode refresh token: %w", err)
	}

	now := time.Now()
	token.UsedAt = &now
	return token, nil
}

func (r *RefreshTokenRepo) key(token string) string {
	if r.prefix == "" {
		return token
	}
	return fmt.Sprintf("%s:%s", r.prefix, token)
}

var _ repository.RefreshTokenRepo = (*RefreshTokenRepo)(nil)
