// internal/infrastructure/database/redis/rate_counter.go
package redis

import (
	"context"
	"time"
)

// RateCounter counts hits per key in fixed windows
type RateCounter struct {
	client *Client
}

// Hit records one hit for key and returns the count in the current window.
// The window starts with the first hit.
func (r *RateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = "rate_limit:" + key

	pipe := r.client.Redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
