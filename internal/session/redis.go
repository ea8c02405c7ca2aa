package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is where the session user is stored.
const DefaultRedisKey = "verdeando:session"

// RedisClient is the subset of go-redis commands the store issues.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps the session as a JSON document under a single key.
type RedisStore struct {
	client RedisClient
	key    string
	ttl    time.Duration // 0 keeps the key until logout
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func NewRedisStore(client RedisClient, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) (models.User, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, ErrNoSession
	}
	if err != nil {
		return models.User{}, fmt.Errorf("redis GET %s: %w", s.key, err)
	}

	var user models.User
	if err = json.Unmarshal(raw, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode stored session: %w", err)
	}

	return user, nil
}

func (s *RedisStore) Save(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err = s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", s.key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", s.key, err)
	}

	return nil
}
