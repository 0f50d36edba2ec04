package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const fulfilledKeyPrefix = "fulfilled:"

// RedisAdapter holds the per-session fulfilled markers. SET NX gives the
// atomic check-and-mark the dispatcher needs, shared across processes.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// MarkFulfilled sets the marker for sessionID if absent, returning true on
// the first call and false afterwards. No TTL: a fulfilled mark must
// outlive any polling horizon, or an expired key would allow a second
// fulfillment.
func (r *RedisAdapter) MarkFulfilled(ctx context.Context, sessionID string) (bool, error) {
	key := fulfilledKeyPrefix + sessionID

	ok, err := r.client.SetNX(ctx, key, 1, 0).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ClearFulfilled removes the marker. Operator/test helper only; the
// service never unmarks a fulfillment.
func (r *RedisAdapter) ClearFulfilled(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, fulfilledKeyPrefix+sessionID).Err()
}
