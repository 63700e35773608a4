package locks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 300 * time.Second

// Recorder is told about rejected calls. internal/metrics implements it.
type Recorder interface {
	LockRejected(name string)
	ThrottleRejected(name string)
}

type nopRecorder struct{}

func (nopRecorder) LockRejected(string)     {}
func (nopRecorder) ThrottleRejected(string) {}

// LockSpec configures an advisory lock around one operation.
type LockSpec struct {
	Name     string
	Timeout  time.Duration // defaults to DefaultTimeout
	Hold     bool          // keep the key until it expires instead of releasing it after the call
	Identity Identity      // defaults to ByClientIP
}

// ThrottleSpec allows Limit calls per Timeout window.
type ThrottleSpec struct {
	Name     string
	Limit    int
	Timeout  time.Duration // defaults to DefaultTimeout
	Identity Identity      // defaults to ByClientIP
}

// Limiter runs operations under cache-backed locks and throttles. Locks never
// wait: contention fails straight away with LockedError.
type Limiter struct {
	cache    Cache
	recorder Recorder
}

type LimiterOption func(*Limiter)

func WithRecorder(recorder Recorder) LimiterOption {
	return func(l *Limiter) {
		l.recorder = recorder
	}
}

func NewLimiter(cache Cache, options ...LimiterOption) *Limiter {
	l := &Limiter{cache: cache, recorder: nopRecorder{}}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// LockKey returns the cache key guarding name for identity.
func LockKey(name, identity string) string {
	return "fn:lock:" + hashKey(name, identity)
}

// ThrottleKey returns the cache key counting calls of name for identity.
func ThrottleKey(name, identity string) string {
	return "fn:throttle:" + hashKey(name, identity)
}

// WithLock runs fn while holding the lock for name and identity. Unless hold
// is set the lock is released when fn returns, whether it failed or not.
func (l *Limiter) WithLock(ctx context.Context, name, identity string, timeout time.Duration, hold bool, fn func() error) error {
	timeout = orDefault(timeout)
	key := LockKey(name, identity)

	added, err := l.cache.Add(ctx, key, 1, timeout)
	if err != nil {
		return errors.Wrapf(err, "Limiter.WithLock %s", name)
	}
	if !added {
		l.recorder.LockRejected(name)
		log.Debug().Str("lock", name).Msg("call rejected, locked")
		return &LockedError{Name: name, Timeout: timeout}
	}

	if !hold {
		defer func() {
			if err := l.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
				log.Err(err).Str("lock", name).Msg("Limiter.WithLock release")
			}
		}()
	}
	return fn()
}

// WithThrottle runs fn unless name has been called more than limit times by
// identity in the current window. Rejected calls still count, and the window
// starts at the first call and is never extended.
//
// A window that expires between Add and Incr lets that call through
// uncounted. The race is accepted.
func (l *Limiter) WithThrottle(ctx context.Context, name, identity string, limit int, timeout time.Duration, fn func() error) error {
	timeout = orDefault(timeout)
	key := ThrottleKey(name, identity)

	if _, err := l.cache.Add(ctx, key, 0, timeout); err != nil {
		return errors.Wrapf(err, "Limiter.WithThrottle %s add", name)
	}
	count, err := l.cache.Incr(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "Limiter.WithThrottle %s incr", name)
	}
	if count > int64(limit) {
		l.recorder.ThrottleRejected(name)
		log.Debug().Str("throttle", name).Int64("count", count).Msg("call rejected, throttled")
		return &ThrottledError{Name: name, Limit: limit, Timeout: timeout}
	}
	return fn()
}

// Lock runs fn under spec, resolving the identity from call.
func (l *Limiter) Lock(ctx context.Context, spec LockSpec, call Call, fn func() error) error {
	return l.WithLock(ctx, spec.Name, spec.Identity.resolve(call), spec.Timeout, spec.Hold, fn)
}

// Throttle runs fn under spec, resolving the identity from call.
func (l *Limiter) Throttle(ctx context.Context, spec ThrottleSpec, call Call, fn func() error) error {
	return l.WithThrottle(ctx, spec.Name, spec.Identity.resolve(call), spec.Limit, spec.Timeout, fn)
}

func hashKey(name, identity string) string {
	sum := sha256.Sum256([]byte(name + ":" + identity))
	return hex.EncodeToString(sum[:])
}

func orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}
