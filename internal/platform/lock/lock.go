// Package lock provides named mutual exclusion that spans instances when Redis is
// available and falls back to the current process otherwise.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another holder owns the lock.
var ErrHeld = errors.New("lock is held by another holder")

// Locker acquires a named lock. The returned release func must be called exactly once.
type Locker interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

const keyPrefix = "lock:"

// releaseScript deletes the key only when it still carries our token, so an expired
// lock taken over by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := keyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", name, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func() {
		// Use a fresh context: the request context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			logging.Log.WithError(err).Warnf("releasing lock %s", name)
		}
	}, nil
}

// LocalLocker implements Locker inside a single process.
type LocalLocker struct {
	mu    sync.Mutex
	names map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{names: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) TryAcquire(_ context.Context, name string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	m, ok := l.names[name]
	if !ok {
		m = &sync.Mutex{}
		l.names[name] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, ErrHeld
	}
	return m.Unlock, nil
}

// New picks the Redis implementation when a client is given.
func New(client *redis.Client) Locker {
	if client == nil {
		return NewLocalLocker()
	}
	return NewRedisLocker(client)
}
