package security

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit returns route middleware enforcing max requests per window per
// client. Authenticated requests are limited per user, anonymous ones per
// IP. Redis failures let the request through rather than blocking traffic.
func (r *RateLimiter) Limit(scope string, max int64, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.RealIP()
		if e.Auth != nil {
			id = "user:" + e.Auth.Id
		}

		ctx := e.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, id)

		count, err := r.redis.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				r.redis.Expire(ctx, key, window)
			}
			if count > max {
				return e.JSON(429, map[string]string{
					"error": "Rate limit exceeded. Please try again later.",
				})
			}
		}

		return e.Next()
	}
}
