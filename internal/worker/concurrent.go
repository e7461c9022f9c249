package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// lockedWriter serializes writes from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// processConcurrent processes inputs concurrently with bounded parallelism.
func processConcurrent(ctx context.Context, opts Options, limiter *rate.Limiter) ([]Result, error) {
	slog.Info("starting concurrent processing",
		"inputs", len(opts.Inputs),
		"max_concurrent", opts.MaxConcurrent,
		"rate_limit_rpm", opts.RateLimitPerMin)

	var (
		mu       sync.Mutex
		results  []Result
		progress = rate.Sometimes{Interval: 2 * time.Second}
		stdout   = &lockedWriter{w: opts.Stdout}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrent)

	for i, input := range opts.Inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := processFile(gctx, i, input, opts, limiter, stdout)
			if res.Err != nil {
				slog.Error("input failed", "input", input, "err", res.Err)
			}

			mu.Lock()
			results = append(results, res)
			done := len(results)
			progress.Do(func() {
				slog.Info("progress", "done", fmt.Sprintf("%d/%d", done, len(opts.Inputs)))
			})
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	if err != nil {
		return results, err
	}
	return results, ctx.Err()
}
