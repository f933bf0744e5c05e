package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/princinho/storefront/models"
)

// RefreshTokenStore keeps the single current refresh token per account in
// Redis. The key expires together with the token.
type RefreshTokenStore struct {
	client *redis.Client
	prefix string
}

func NewRefreshTokenStore(client *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{
		client: client,
		prefix: "refresh_token:",
	}
}

func (s *RefreshTokenStore) key(userID string) string {
	return s.prefix + userID
}

// Save overwrites any token previously stored for userID.
func (s *RefreshTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if userID == "" || token == "" {
		return fmt.Errorf("refresh token: missing user id or token")
	}
	if ttl <= 0 {
		return fmt.Errorf("refresh token: ttl must be positive")
	}
	return s.client.Set(ctx, s.key(userID), token, ttl).Err()
}

// Get returns models.ErrNotFound when nothing is stored for userID.
func (s *RefreshTokenStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("refresh token: get: %w", err)
	}
	return val, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
