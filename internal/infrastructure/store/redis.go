package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options configures the Redis store.
type Options struct {
	Addr     string
	Password string
	DB       int

	// LockTTL bounds how long a crashed holder can wedge a lock.
	LockTTL time.Duration
	// LockRetry is the poll interval while waiting for a lock.
	LockRetry time.Duration
}

// redisStore implements Store on Redis. Locks are SET NX tokens with a
// TTL, released only by the holder via a compare-and-delete script.
type redisStore struct {
	client *redis.Client
	logger *zap.Logger

	lockTTL   time.Duration
	lockRetry time.Duration
}

// releaseScript deletes the lock only if the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.LockTTL == 0 {
		opts.LockTTL = 30 * time.Second
	}
	if opts.LockRetry == 0 {
		opts.LockRetry = 25 * time.Millisecond
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("redis store initialized",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB))

	return &redisStore{
		client:    client,
		logger:    logger,
		lockTTL:   opts.LockTTL,
		lockRetry: opts.LockRetry,
	}, nil
}

func (s *redisStore) Get(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		s.logger.Error("redis get failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding document %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		s.logger.Error("redis set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("redis delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *redisStore) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	lockKey := "lock:" + name
	token := uuid.NewString()

	for {
		ok, err := s.client.SetNX(ctx, lockKey, token, s.lockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquiring lock %s: %w", name, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.lockRetry):
		}
	}

	defer func() {
		// Best effort; the TTL reclaims the lock if the release fails.
		if err := releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{lockKey}, token).Err(); err != nil && err != redis.Nil {
			s.logger.Warn("lock release failed", zap.String("lock", name), zap.Error(err))
		}
	}()

	return fn(ctx)
}

func (s *redisStore) Actors(ctx context.Context, guild string) ([]string, error) {
	pattern := fmt.Sprintf("guild:%s:actor:*:record", guild)
	prefix := fmt.Sprintf("guild:%s:actor:", guild)

	var actors []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		rest := strings.TrimPrefix(key, prefix)
		actor := strings.TrimSuffix(rest, ":record")
		if actor != "" && actor != rest {
			actors = append(actors, actor)
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Error("redis scan failed", zap.String("guild", guild), zap.Error(err))
		return nil, fmt.Errorf("scanning guild actors: %w", err)
	}
	return actors, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
