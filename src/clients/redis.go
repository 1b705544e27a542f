package clients

import (
	"context"
	"fmt"
	"time"

	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Redis) (*RedisClient, error) {
	opts, err := redis.ParseURL(cfg.Url)
	if err != nil {
		// plain host:port
		opts = &redis.Options{Addr: cfg.Url}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.Db != 0 {
		opts.DB = cfg.Db
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Error("Failed to connect to Redis")
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrRedisConnection, err)
	}

	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
