package ratelimit

import (
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewRedisClient returns nil when no redis address is configured; the
// limiter and locker fall back to in-process state.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewLimiter(client *redis.Client, c clock.Clock, log *zap.Logger) Limiter {
	if client != nil {
		return NewTokenBucket(client)
	}
	log.Named("ratelimit").Warn("redis not configured, using in-process rate limiter")
	return NewLocalBucket(c)
}

var Module = fx.Module("rate.limit",
	fx.Provide(
		NewRedisClient,
		NewLimiter,
		NewLocker,
	),
)
