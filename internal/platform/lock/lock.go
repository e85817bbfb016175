// Package lock serialises work on a key across application instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/bsm/redislock"
)

// Locker hands out exclusive locks on string keys.
type Locker interface {
	// Lock blocks until key is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Noop returns a Locker that never blocks. Used when no Redis is configured; the
// store's own atomicity is then the only serialisation.
func Noop() Locker { return noopLocker{} }

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// RedisLocker implements Locker with bsm/redislock.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	prefix  string
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder can block others.
func NewRedisLocker(rc redislock.RedisClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rc),
		ttl:     ttl,
		backoff: 50 * time.Millisecond,
		prefix:  "caisse:lock:",
	}
}

var _ Locker = (*RedisLocker)(nil)

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	// retry until the ttl would have expired anyway
	retryCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	held, err := l.client.Obtain(retryCtx, l.prefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s is busy, retry shortly", apperrors.ErrConflict, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}
	return func() {
		// a fresh context so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = held.Release(releaseCtx)
	}, nil
}
