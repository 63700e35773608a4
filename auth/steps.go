package auth

import (
	"context"

	"github.com/jrsteele09/go-notes-server/locks"
)

// Invocation is one call of a guarded operation.
type Invocation struct {
	Request *Request
	Args    map[string]any
}

// Step wraps the rest of a chain. Steps run in the order an endpoint lists
// them, so whether a lock is taken before or after authentication is the
// endpoint's choice.
type Step func(ctx context.Context, inv *Invocation, next func() error) error

// Run executes steps around fn.
func Run(ctx context.Context, inv *Invocation, steps []Step, fn func() error) error {
	if len(steps) == 0 {
		return fn()
	}
	return steps[0](ctx, inv, func() error {
		return Run(ctx, inv, steps[1:], fn)
	})
}

// Require turns a guard into a step.
func Require(g Guard) Step {
	return func(ctx context.Context, inv *Invocation, next func() error) error {
		if err := g.Check(ctx, inv.Request); err != nil {
			return err
		}
		return next()
	}
}

// Lock runs the rest of the chain under an advisory lock.
func Lock(limiter *locks.Limiter, spec locks.LockSpec) Step {
	return func(ctx context.Context, inv *Invocation, next func() error) error {
		return limiter.Lock(ctx, spec, inv.call(), next)
	}
}

// Throttle rate limits the rest of the chain.
func Throttle(limiter *locks.Limiter, spec locks.ThrottleSpec) Step {
	return func(ctx context.Context, inv *Invocation, next func() error) error {
		return limiter.Throttle(ctx, spec, inv.call(), next)
	}
}

func (inv *Invocation) call() locks.Call {
	return locks.Call{ClientIP: inv.Request.ClientIP, Args: inv.Args}
}
