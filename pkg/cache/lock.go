package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"workerscope/pkg/logger"
)

const (
	lockKeyPrefix      = "workerscope:lock:"
	lockTTL            = 30 * time.Second
	lockAcquireTimeout = 5 * time.Second
	lockRenewInterval  = 10 * time.Second
)

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

const renewScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`

// Lock is a best-effort mutual exclusion between workerscope replicas
type Lock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	IsHeld() bool
}

// RedisLock is a SET NX lock renewed while held.
// With a nil client it always succeeds (single-instance mode).
type RedisLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration

	mu        sync.Mutex
	held      bool
	stopRenew chan struct{}
}

// NewRedisLock creates a lock named workerscope:lock:<name>
func NewRedisLock(client *redis.Client, name string) *RedisLock {
	return &RedisLock{
		client: client,
		key:    lockKeyPrefix + name,
		value:  uuid.New().String(),
		ttl:    lockTTL,
	}
}

// TryLock acquires the lock without waiting for other holders
func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return true, nil
	}
	if l.client == nil {
		l.held = true
		return true, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, lockAcquireTimeout)
	defer cancel()

	acquired, err := l.client.SetNX(acquireCtx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "lock %s held by another instance", l.key)
		return false, nil
	}

	l.held = true
	l.stopRenew = make(chan struct{})
	go l.renew(ctx, l.stopRenew)
	return true, nil
}

// Unlock releases the lock if this instance still owns it
func (l *RedisLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	if !l.held {
		l.mu.Unlock()
		return nil
	}
	l.held = false
	if l.stopRenew != nil {
		close(l.stopRenew)
		l.stopRenew = nil
	}
	l.mu.Unlock()

	if l.client == nil {
		return nil
	}

	released, err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	if released == 0 {
		logger.WarnCtx(ctx, "lock %s was already released or taken over", l.key)
	}
	return nil
}

// IsHeld reports whether this instance believes it holds the lock
func (l *RedisLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

func (l *RedisLock) renew(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(lockRenewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := l.client.Eval(ctx, renewScript, []string{l.key}, l.value, l.ttl.Milliseconds()).Int64()
			if err != nil || ok == 0 {
				logger.WarnCtx(ctx, "lock %s lost during renewal: %v", l.key, err)
				l.mu.Lock()
				l.held = false
				l.mu.Unlock()
				return
			}
		}
	}
}
