// Package batch runs independent operations with a fixed concurrency
// ceiling. Items are processed in consecutive chunks of the ceiling
// size, each chunk completing before the next starts, so in-flight work
// never exceeds the ceiling.
package batch

import (
	"context"
	"sync"
)

// Run applies fn to every item and returns results index-aligned with
// items: results[i] corresponds to items[i] regardless of completion
// order. fn must map its own failures into the result value; one item's
// failure never aborts its siblings. concurrency < 1 is treated as 1.
func Run[T, R any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) R) []R {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]R, len(items))
	for start := 0; start < len(items); start += concurrency {
		end := start + concurrency
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = fn(ctx, items[i])
			}(i)
		}
		wg.Wait()
	}
	return results
}
