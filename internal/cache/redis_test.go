package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/ragbooking/config"
	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachableCache points at a closed port so every command fails fast.
func unreachableCache(t *testing.T) *RedisCache {
	t.Helper()
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"})
	assert.NotNil(t, c)
	assert.NoError(t, c.Close())
}

func TestRedisCache_UnavailableErrors(t *testing.T) {
	c := unreachableCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrCacheUnavailable))

	err = c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.True(t, errors.Is(err, ErrCacheUnavailable))

	err = c.Delete(ctx, "k")
	assert.True(t, errors.Is(err, ErrCacheUnavailable))

	err = c.AppendMessage(ctx, "s1", domain.ChatMessage{Role: domain.RoleUser, Content: "hi"})
	assert.True(t, errors.Is(err, ErrCacheUnavailable))

	_, err = c.History(ctx, "s1", 6)
	assert.True(t, errors.Is(err, ErrCacheUnavailable))

	assert.True(t, errors.Is(c.Ping(ctx), ErrCacheUnavailable))
}

func TestHistoryKey(t *testing.T) {
	assert.Equal(t, "chat:abc", historyKey("abc"))
}

func TestUnavailable_Nil(t *testing.T) {
	assert.NoError(t, unavailable(nil))
}
