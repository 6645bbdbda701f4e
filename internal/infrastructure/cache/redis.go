package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

// RedisCache implements SharedCache on go-redis. Keys follow the
// "<chatID>:<name>" convention carried over from the previous bot.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings the backend before returning.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.InfoLogger.Printf("Connected to redis at %s", addr)
	return &RedisCache{client: client}, nil
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func redisKey(chatID int64, key string) string {
	return fmt.Sprintf("%d:%s", chatID, key)
}

func (r *RedisCache) Set(ctx context.Context, chatID int64, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, redisKey(chatID, key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, chatID int64, key string, dest any) error {
	raw, err := r.client.Get(ctx, redisKey(chatID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	return json.Unmarshal(raw, dest)
}

// GetDel uses the server-side GETDEL so that read-and-consume is one
// atomic round trip.
func (r *RedisCache) GetDel(ctx context.Context, chatID int64, key string, dest any) error {
	raw, err := r.client.GetDel(ctx, redisKey(chatID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("%w: getdel %s: %v", ErrUnavailable, key, err)
	}
	return json.Unmarshal(raw, dest)
}

func (r *RedisCache) Delete(ctx context.Context, chatID int64, key string) error {
	if key != "" {
		if err := r.client.Del(ctx, redisKey(chatID, key)).Err(); err != nil {
			return fmt.Errorf("%w: del %s: %v", ErrUnavailable, key, err)
		}
		return nil
	}

	// Whole-chat wipe, used when a conversation segment ends.
	iter := r.client.Scan(ctx, 0, fmt.Sprintf("%d:*", chatID), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%w: del %s: %v", ErrUnavailable, iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan chat %d: %v", ErrUnavailable, chatID, err)
	}
	return nil
}
