package seojobredis

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/redis/go-redis/v9"
)

// Limiter caps generator calls per minute across every process sharing the
// Redis instance. Callers over the cap wait for the next window.
type Limiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

var _ seojob.Throttle = (*Limiter)(nil)

// NewLimiter builds a fixed-window limit of perMinute calls.
func NewLimiter(rdb *redis.Client, perMinute int) *Limiter {
	return &Limiter{
		rdb:    rdb,
		limit:  int64(perMinute),
		window: time.Minute,
		prefix: "seojob:ratelimit",
		now:    time.Now,
	}
}

func windowKey(prefix string, start time.Time) string {
	return fmt.Sprintf("%s:%d", prefix, start.Unix())
}

// Wait takes a slot in the current window, blocking until the next window
// when this one is full.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		start := l.now().Truncate(l.window)
		key := windowKey(l.prefix, start)

		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			return redisErrors.NewWithCause(ErrRateLimit, err).WithDetail("key", key)
		}
		if incr.Val() <= l.limit {
			return nil
		}

		delay := start.Add(l.window).Sub(l.now())
		logx.Debugf("seojobredis: generator rate limit of %d/%s reached, waiting %s", l.limit, l.window, delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
