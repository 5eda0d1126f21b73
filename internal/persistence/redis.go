package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// LoginThrottle counts login attempts per identifier inside a rolling window.
// Tokens stay stateless; throttling only slows credential guessing.
type LoginThrottle struct {
	redis       *Redis
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle builds a throttle backed by Redis counters.
func NewLoginThrottle(r *Redis, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &LoginThrottle{redis: r, maxAttempts: maxAttempts, window: window, logger: logger}
}

// Allow records an attempt for the identifier and reports whether the caller
// is still under the limit. A Redis outage fails open: credential checks
// remain the authoritative gate.
func (t *LoginThrottle) Allow(ctx context.Context, identifier string) bool {
	if t == nil || t.redis == nil || t.redis.Client == nil {
		return true
	}

	key := fmt.Sprintf("login_attempts:%s", strings.ToLower(strings.TrimSpace(identifier)))
	count, err := t.redis.Client.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Warn("login throttle unavailable", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := t.redis.Client.Expire(ctx, key, t.window).Err(); err != nil {
			t.logger.Warn("login throttle expire failed", zap.Error(err))
		}
	}
	return count <= int64(t.maxAttempts)
}

// Reset clears the attempt counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) {
	if t == nil || t.redis == nil || t.redis.Client == nil {
		return
	}
	key := fmt.Sprintf("login_attempts:%s", strings.ToLower(strings.TrimSpace(identifier)))
	_ = t.redis.Client.Del(ctx, key).Err()
}
