package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLockTTL bounds how long a crashed holder blocks other processes.
const DefaultLockTTL = 2 * time.Minute

// Release and refresh only touch the key while it still holds our token.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// lockClient is the subset of redis.UniversalClient used by Locker.
type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Locker hands out exclusive, expiring locks keyed by name.
type Locker struct {
	client   lockClient
	ttl      time.Duration
	newToken func() string
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) LockerOption {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// NewLocker creates a Locker on client.
func NewLocker(client redis.UniversalClient, opts ...LockerOption) *Locker {
	l := &Locker{client: client, ttl: DefaultLockTTL, newToken: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock is a held lock. It must be released by its holder.
type Lock struct {
	client lockClient
	key    string
	token  string
	ttl    time.Duration
}

// Acquire takes the lock for key with SET NX PX. It returns ErrLocked when
// the key is already held.
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, errors.Join(ErrLockFailed, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{client: l.client, key: key, token: token, ttl: l.ttl}, nil
}

// WithLock runs fn while holding the lock for key, extending it every third
// of its TTL until fn returns. fn's context is cancelled if the lock is lost.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(l.ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := lock.Refresh(runCtx); err != nil {
					cancel(err)
					return
				}
			}
		}
	}()

	fnErr := fn(runCtx)
	close(done)
	<-stopped

	// Release with a fresh context so a cancelled run still frees the key.
	releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer releaseCancel()
	releaseErr := lock.Release(releaseCtx)

	if cause := context.Cause(runCtx); fnErr != nil && cause != nil && !errors.Is(cause, context.Canceled) {
		fnErr = errors.Join(fnErr, cause)
	}
	return errors.Join(fnErr, releaseErr)
}

// Key returns the locked key.
func (l *Lock) Key() string {
	return l.key
}

// Refresh extends the lock by its TTL.
func (l *Lock) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

// Release deletes the key if it still holds this lock's token.
func (l *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}
