package database

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pageza/nocapcooking/backend/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisDialTimeout = 5 * time.Second

// RedisOptions builds client options from cfg. REDIS_URL, when set, replaces
// the host/port/password/db settings.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:        net.JoinHostPort(cfg.RedisHost, port),
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: redisDialTimeout,
	}, nil
}

// NewRedisClient connects to the rate limiter's redis and pings it once.
func NewRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}
