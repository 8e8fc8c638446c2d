package seojobredis

import (
	"context"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out SET NX leases so one scheduler replica runs each tick.
type Locker struct {
	rdb *redis.Client
}

var _ seojob.Locker = (*Locker)(nil)

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

// Acquire tries once; ok is false when someone else holds key.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, redisErrors.NewWithCause(ErrAcquire, err).WithDetail("key", key)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil && err != redis.Nil {
			return redisErrors.NewWithCause(ErrRelease, err).WithDetail("key", key)
		}
		return nil
	}
	return release, true, nil
}
