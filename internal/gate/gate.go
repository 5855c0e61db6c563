// Package gate implements the exclusive render section: the single lock held
// by anything that draws to the panel or mutates the state a draw reads.
package gate

import "context"

// Gate is a non-reentrant mutex whose acquisition can be abandoned through a
// context. The zero value is not usable; call New.
type Gate struct {
	sem chan struct{}
}

func New() *Gate {
	return &Gate{sem: make(chan struct{}, 1)}
}

// Lock blocks until the gate is free or ctx is done.
func (g *Gate) Lock(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases the gate. Unlocking a free gate panics.
func (g *Gate) Unlock() {
	select {
	case <-g.sem:
	default:
		panic("gate: unlock of unlocked gate")
	}
}

// Do runs fn while holding the gate and releases it on every exit path,
// including a panic in fn.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Lock(ctx); err != nil {
		return err
	}
	defer g.Unlock()
	return fn()
}
