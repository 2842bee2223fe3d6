package config

import (
	"context"
	"fmt"

	"rentspace/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ConnectRedis returns nil, nil when no address is configured.
func ConnectRedis(ctx context.Context, cfg RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	if cfg.Address == "" {
		log.Warn().Msg("redis address not set, running without cache")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	rdb.AddHook(&metrics.RedisHook{})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Str("addr", cfg.Address).Msg("connected to redis")
	return rdb, nil
}
