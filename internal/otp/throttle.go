package otp

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Throttle paces OTP deliveries per mobile number using a Redis key with a
// TTL. It is advisory only: registration always regenerates the stored code,
// the throttle just suppresses the outbound send. With no Redis (nil client
// or connection failure) every delivery is allowed.
type Throttle struct {
	client   *redis.Client
	cooldown time.Duration
	logger   *zap.Logger
}

// NewThrottle builds a throttle. A nil client or non-positive cooldown
// disables pacing.
func NewThrottle(client *redis.Client, cooldown time.Duration, logger *zap.Logger) *Throttle {
	return &Throttle{client: client, cooldown: cooldown, logger: logger}
}

// AllowDelivery reports whether an OTP may be delivered to the given mobile
// number now, and when allowed starts the cooldown window.
func (t *Throttle) AllowDelivery(ctx context.Context, mobile int64) bool {
	if t == nil || t.client == nil || t.cooldown <= 0 {
		return true
	}
	key := "otp:cooldown:" + strconv.FormatInt(mobile, 10)
	ok, err := t.client.SetNX(ctx, key, time.Now().Unix(), t.cooldown).Result()
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("otp throttle unavailable", zap.Error(err))
		}
		return true
	}
	return ok
}
