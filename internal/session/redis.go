package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"bookmart/internal/util"
)

const redisKeyPrefix = "storefront:session:"

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewSession writes a token -> cartID mapping with TTL.
func (s *RedisStore) NewSession(ctx context.Context, cartID string) (string, error) {
	token := util.NewID()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, redisKeyPrefix+token, cartID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// CartID resolves a token to the cart it may mutate.
func (s *RedisStore) CartID(ctx context.Context, token string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	val, err := s.client.Get(ctx, redisKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// DeleteSession removes a token mapping.
func (s *RedisStore) DeleteSession(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
