package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	accessTokenKeyPrefix   = "access_token:"
	refreshTokenKeyPrefix  = "refresh_token:"
	resetThrottleKeyPrefix = "password_reset:throttle:"

	scanBatchSize = 100
)

// SessionStore is the Redis whitelist of issued tokens. A JWT is only honoured
// while its id is present here, so deleting keys revokes tokens immediately.
type SessionStore interface {
	Save(ctx context.Context, userID uuid.UUID, accessID, refreshID string, accessTTL, refreshTTL time.Duration) error
	IsAccessValid(ctx context.Context, userID uuid.UUID, accessID string) (bool, error)
	ConsumeRefresh(ctx context.Context, userID uuid.UUID, refreshID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, accessID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	AllowResetRequest(ctx context.Context, identity string, window time.Duration) (bool, error)
}

type redisSessionStore struct {
	client redis.Cmdable
	log    *logrus.Logger
}

func NewSessionStore(client redis.Cmdable, log *logrus.Logger) SessionStore {
	return &redisSessionStore{client: client, log: log}
}

func accessKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s%s:%s", accessTokenKeyPrefix, userID, tokenID)
}

func refreshKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s%s:%s", refreshTokenKeyPrefix, userID, tokenID)
}

func (s *redisSessionStore) Save(ctx context.Context, userID uuid.UUID, accessID, refreshID string, accessTTL, refreshTTL time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accessKey(userID, accessID), "valid", accessTTL)
	pipe.Set(ctx, refreshKey(userID, refreshID), "valid", refreshTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session tokens: %w", err)
	}
	return nil
}

func (s *redisSessionStore) IsAccessValid(ctx context.Context, userID uuid.UUID, accessID string) (bool, error) {
	exists, err := s.client.Exists(ctx, accessKey(userID, accessID)).Result()
	if err != nil {
		return false, fmt.Errorf("check access token: %w", err)
	}
	return exists > 0, nil
}

// ConsumeRefresh deletes the refresh token and reports whether it existed,
// so each refresh token can be exchanged once.
func (s *redisSessionStore) ConsumeRefresh(ctx context.Context, userID uuid.UUID, refreshID string) (bool, error) {
	deleted, err := s.client.Del(ctx, refreshKey(userID, refreshID)).Result()
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	return deleted > 0, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, userID uuid.UUID, accessID string) error {
	if err := s.client.Del(ctx, accessKey(userID, accessID)).Err(); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *redisSessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, prefix := range []string{accessTokenKeyPrefix, refreshTokenKeyPrefix} {
		pattern := fmt.Sprintf("%s%s:*", prefix, userID)
		if err := s.deleteMatching(ctx, pattern); err != nil {
			return err
		}
	}
	s.log.Debugf("Revoked all tokens for user %s", userID)
	return nil
}

// AllowResetRequest returns false when identity already asked for a reset
// link within window.
func (s *redisSessionStore) AllowResetRequest(ctx context.Context, identity string, window time.Duration) (bool, error) {
	key := resetThrottleKeyPrefix + strings.ToLower(identity)
	ok, err := s.client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle reset request: %w", err)
	}
	return ok, nil
}

func (s *redisSessionStore) deleteMatching(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", pattern, err)
	}
	return nil
}
