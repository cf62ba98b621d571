package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "revoked:"

// RedisRevoker keeps revoked token ids in Redis so logout survives
// restarts and works across multiple server instances.
type RedisRevoker struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisRevoker(addr string, db int) *RedisRevoker {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisRevoker{
		client: client,
		ctx:    context.Background(),
	}
}

// Ping verifies the connection at startup.
func (s *RedisRevoker) Ping() error {
	return s.client.Ping(s.ctx).Err()
}

func (s *RedisRevoker) Revoke(tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired; nothing to remember.
		return nil
	}
	return s.client.Set(s.ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevoker) IsRevoked(tokenID string) (bool, error) {
	_, err := s.client.Get(s.ctx, revokedKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
