package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/time/rate"
)

// processSequential processes inputs one at a time.
func processSequential(ctx context.Context, opts Options, limiter *rate.Limiter) ([]Result, error) {
	results := make([]Result, 0, len(opts.Inputs))
	stdout := &lockedWriter{w: opts.Stdout}

	for i, input := range opts.Inputs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		slog.Info("processing input",
			"input", fmt.Sprintf("%d/%d", i+1, len(opts.Inputs)),
			"file", filepath.Base(input))

		res := processFile(ctx, i, input, opts, limiter, stdout)
		if res.Err != nil {
			slog.Error("input failed", "input", input, "err", res.Err)
		}
		results = append(results, res)
	}
	return results, nil
}
