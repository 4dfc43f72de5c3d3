// Package resilience provides the concurrency and failure-isolation
// primitives shared by the scout engine: a counting semaphore for bounding
// remote fan-out and a circuit breaker for flaky upstream dependencies.
package resilience

import "context"

// Semaphore is a counting semaphore with context-aware acquisition. The
// channel capacity is the hard bound: slots can never be over-acquired,
// and Release after error unwinding always returns exactly one slot.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore creates a semaphore with n slots (minimum 1).
func NewSemaphore(n int) *Semaphore {
	if n <= 0 {
		n = 1
	}
	return &Semaphore{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking; false when none is free.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot. Releasing without a matching Acquire is a no-op
// rather than a corruption of the bound.
func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

// InFlight returns the number of currently held slots.
func (s *Semaphore) InFlight() int { return len(s.slots) }

// Do runs f while holding a slot, releasing it on every path out.
func (s *Semaphore) Do(ctx context.Context, f func(context.Context) error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	return f(ctx)
}
