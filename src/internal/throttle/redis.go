package throttle

import (
	"context"
	"errors"

	"account-admin-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis stores one counter per key that expires a window after the first failure.
type Redis struct {
	client   *redis.Client
	settings Settings
}

func NewRedis(client *redis.Client, settings Settings) *Redis {
	return &Redis{client: client, settings: settings}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Blocked(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to read login attempts")
		return false, models.ErrRedisGet
	}
	return count >= r.settings.Limit, nil
}

func (r *Redis) Fail(ctx context.Context, key string) error {
	attempts, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to record login attempt")
		return models.ErrRedisSet
	}

	if attempts == 1 {
		if err := r.client.Expire(ctx, key, r.settings.Window).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to set login attempt expiry")
			return models.ErrRedisSet
		}
	}

	logrus.WithFields(logrus.Fields{
		"key":      key,
		"attempts": attempts,
	}).Debug("Login failure counted")
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to reset login attempts")
		return models.ErrRedisSet
	}
	return nil
}
