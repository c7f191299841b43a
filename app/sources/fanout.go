package sources

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// collect runs task once per input with at most limit tasks in flight (limit <= 0
// starts one goroutine per input) and returns the successful results in input order.
// A failing or panicking task never cancels or fails its siblings; callers log
// their own failures, collect only logs panics.
func collect[T, R any](ctx context.Context, limit int, inputs []T, task func(context.Context, T) (R, error)) []R {
	results := make([]R, len(inputs))
	succeeded := make([]bool, len(inputs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, input := range inputs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Pipeline task panicked", "index", i, "panic", fmt.Sprint(r))
				}
			}()

			result, err := task(ctx, input)
			if err != nil {
				return nil
			}
			results[i] = result
			succeeded[i] = true
			return nil
		})
	}

	_ = g.Wait() // tasks never return errors; failures are per input

	out := make([]R, 0, len(inputs))
	for i, ok := range succeeded {
		if ok {
			out = append(out, results[i])
		}
	}

	return out
}
