package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Settle calls fn for every item concurrently (at most limit at once, no limit
// when limit <= 0) and waits for all of them. A failing item never stops the
// others; every outcome is reported at the index of its item.
func Settle[T any, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, item)
			results[i] = NewResult(r, err)
			return nil
		})
	}

	_ = g.Wait()

	return results
}
