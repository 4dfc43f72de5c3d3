package fn

import (
	"context"
	"sync"
)

// ParMap applies f to each item with at most workers concurrent calls,
// preserving input order in the output. Slots are taken before a goroutine
// launches and released on completion, so the bound holds even when f
// panics up the stack or ctx is cancelled mid-run. Once ctx is done no new
// work starts; unstarted items yield Err(ctx.Err()).
func ParMap[T, U any](ctx context.Context, items []T, workers int, f func(context.Context, T) Result[U]) []Result[U] {
	out := make([]Result[U], len(items))
	if len(items) == 0 {
		return out
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, v := range items {
		select {
		case <-ctx.Done():
			out[i] = Err[U](ctx.Err())
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, v T) {
			defer func() { <-sem; wg.Done() }()
			out[i] = f(ctx, v)
		}(i, v)
	}
	wg.Wait()
	return out
}

// FanOut runs the functions concurrently, one goroutine each, and returns
// their results in call order. Each function is responsible for its own
// deadline; FanOut never short-circuits.
func FanOut[T any](fns ...func() T) []T {
	out := make([]T, len(fns))
	var wg sync.WaitGroup
	for i, f := range fns {
		wg.Add(1)
		go func(i int, f func() T) {
			defer wg.Done()
			out[i] = f()
		}(i, f)
	}
	wg.Wait()
	return out
}
