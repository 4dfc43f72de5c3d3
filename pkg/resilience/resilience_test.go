package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSemaphoreBound(t *testing.T) {
	sem := NewSemaphore(2)
	ctx := context.Background()

	if err := sem.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := sem.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if sem.TryAcquire() {
		t.Fatal("third acquire must fail at capacity 2")
	}
	sem.Release()
	if !sem.TryAcquire() {
		t.Fatal("acquire should succeed after release")
	}
}

func TestSemaphoreAcquireCancelled(t *testing.T) {
	sem := NewSemaphore(1)
	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := sem.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// The failed acquire must not have consumed a slot.
	sem.Release()
	if sem.InFlight() != 0 {
		t.Fatalf("in-flight = %d after release, want 0", sem.InFlight())
	}
}

func TestSemaphoreNeverExceedsCapacityUnderChurn(t *testing.T) {
	sem := NewSemaphore(3)
	var inFlight, peak int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := sem.Do(context.Background(), func(context.Context) error {
				cur := atomic.AddInt64(&inFlight, 1)
				mu.Lock()
				if cur > peak {
					peak = cur
				}
				mu.Unlock()
				defer atomic.AddInt64(&inFlight, -1)
				if i%5 == 0 {
					return errors.New("boom") // error unwinding still releases
				}
				return nil
			})
			_ = err
		}(i)
	}
	wg.Wait()

	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeded capacity 3", peak)
	}
	if sem.InFlight() != 0 {
		t.Fatalf("leaked %d slots", sem.InFlight())
	}
}

func TestSemaphoreReleaseWithoutAcquire(t *testing.T) {
	sem := NewSemaphore(1)
	sem.Release() // must not block or corrupt the bound
	if !sem.TryAcquire() {
		t.Fatal("slot should be free")
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	ctx := context.Background()
	boom := func(context.Context) error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		if err := b.Call(ctx, boom); err == nil {
			t.Fatal("expected failure")
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}
	if err := b.Call(ctx, boom); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: 10 * time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	b.Call(ctx, func(context.Context) error { return errors.New("boom") })
	if b.State() != StateOpen {
		t.Fatal("should be open")
	}

	now = now.Add(11 * time.Second)
	if err := b.Call(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("probe call should run: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %s, want closed after successful probe", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: 10 * time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	b.Call(ctx, func(context.Context) error { return errors.New("boom") })
	now = now.Add(11 * time.Second)
	b.Call(ctx, func(context.Context) error { return errors.New("still down") })

	if b.State() != StateOpen {
		t.Fatalf("state = %s, want open after failed probe", b.State())
	}
}
