package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/ragbooking/config"
	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrCacheUnavailable wraps every failure to reach Redis. Callers decide
// whether to degrade or surface it.
var ErrCacheUnavailable = errors.New("cache unavailable")

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	}))
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return unavailable(c.client.Ping(ctx).Err())
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get returns nil, nil when the key does not exist.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, unavailable(err)
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return unavailable(c.client.Set(ctx, key, value, ttl).Err())
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return unavailable(c.client.Del(ctx, key).Err())
}

func (c *RedisCache) AppendMessage(ctx context.Context, sessionID string, msg domain.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return unavailable(c.client.RPush(ctx, historyKey(sessionID), payload).Err())
}

// History returns at most limit of the most recent messages, oldest first.
func (c *RedisCache) History(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := c.client.LRange(ctx, historyKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	messages := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("chat:%s", sessionID)
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}
