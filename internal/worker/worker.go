package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ttml2amll/internal/config"
	"ttml2amll/internal/pipeline"
	"ttml2amll/internal/source"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// backoffUnit scales the retry delay for remote inputs.
var backoffUnit = time.Second

// Options configures the worker.
type Options struct {
	Inputs          []string
	OutputDir       string
	Format          string
	NoAsync         bool
	MaxConcurrent   int
	MaxRetries      int
	RateLimitPerMin int
	Chain           *config.ChainOptions
	Caches          *pipeline.Caches

	// Stdin and Stdout serve the "-" input; they default to the process
	// streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// Result describes one processed input.
type Result struct {
	Index    int
	Input    string
	Output   string
	Lines    int
	Warnings int
	Err      error
}

// Run processes every input and writes one output file per input. A
// failing input does not stop the others; Run returns the results in input
// order and an error joining every failure.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	if len(opts.Inputs) == 0 {
		return nil, fmt.Errorf("no inputs")
	}
	stdinCount := 0
	for _, in := range opts.Inputs {
		if in == source.Stdin {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return nil, fmt.Errorf("standard input given %d times", stdinCount)
	}

	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.Caches == nil {
		opts.Caches = pipeline.NewCaches()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	opts.MaxConcurrent = max(opts.MaxConcurrent, 1)
	opts.MaxRetries = max(opts.MaxRetries, 1)
	if opts.RateLimitPerMin <= 0 {
		opts.RateLimitPerMin = 60
	}

	if err := checkOutputCollisions(opts); err != nil {
		return nil, err
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	// Tokens per second = RPM / 60.
	limiter := rate.NewLimiter(rate.Limit(float64(opts.RateLimitPerMin)/60.0), 1)

	var (
		results []Result
		err     error
	)
	if !opts.NoAsync && len(opts.Inputs) > 1 {
		results, err = processConcurrent(ctx, opts, limiter)
	} else {
		results, err = processSequential(ctx, opts, limiter)
	}
	if err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// processFile turns one input into one output.
func processFile(ctx context.Context, index int, input string, opts Options, limiter *rate.Limiter, stdout *lockedWriter) Result {
	res := Result{Index: index, Input: input}

	src, err := readInput(ctx, input, opts, limiter)
	if err != nil {
		res.Err = err
		return res
	}

	lyric, err := pipeline.Process(src, opts.Chain, opts.Caches)
	if err != nil {
		res.Err = err
		return res
	}
	res.Lines = len(lyric.Lines)
	res.Warnings = len(lyric.Warnings)
	for _, w := range lyric.Warnings {
		slog.Debug("parse warning", "input", input, "warning", w)
	}

	data, err := encode(lyric, opts.Format)
	if err != nil {
		res.Err = fmt.Errorf("encode %s: %w", opts.Format, err)
		return res
	}

	out, err := outputPath(input, opts)
	if err != nil {
		res.Err = err
		return res
	}
	if out == "" {
		if _, err := stdout.Write(data); err != nil {
			res.Err = fmt.Errorf("write stdout: %w", err)
		}
		return res
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		res.Err = fmt.Errorf("write output: %w", err)
		return res
	}
	res.Output = out

	slog.Info("lyric saved",
		"input", filepath.Base(input),
		"path", out,
		"lines", res.Lines,
		"warnings", res.Warnings)
	return res
}

// readInput reads a local input directly. Remote inputs go through the rate
// limiter and are retried with exponential backoff.
func readInput(ctx context.Context, input string, opts Options, limiter *rate.Limiter) (string, error) {
	if !source.IsRemote(input) {
		return source.Read(ctx, input, opts.Stdin, nil)
	}

	progress := func(read, total int64) {
		if total > 0 {
			slog.Debug("download progress", "input", input,
				"percent", fmt.Sprintf("%.1f%%", min(float64(read)/float64(total)*100, 100)))
		}
	}

	var (
		lastErr  error
		attempts int
	)
	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
		attempts++

		src, err := source.Fetch(ctx, input, progress)
		if err == nil {
			return src, nil
		}
		lastErr = err
		if !source.Retryable(err) || attempt == opts.MaxRetries-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * backoffUnit // 1s, 2s, 4s...
		slog.Warn("fetch failed, retrying",
			"input", input,
			"attempt", attempt+1,
			"backoff", backoff,
			"err", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	noun := "attempts"
	if attempts == 1 {
		noun = "attempt"
	}
	return "", fmt.Errorf("fetch failed after %d %s: %w", attempts, noun, lastErr)
}

// checkOutputCollisions rejects a batch in which two inputs map to the same
// output file. Inputs whose path cannot be resolved fail later on their own.
func checkOutputCollisions(opts Options) error {
	seen := make(map[string]string, len(opts.Inputs))
	for _, input := range opts.Inputs {
		out, err := outputPath(input, opts)
		if err != nil || out == "" {
			continue
		}
		key := filepath.Clean(out)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("inputs %s and %s both write %s", prev, input, out)
		}
		seen[key] = input
	}
	return nil
}

// outputPath places <base>.<format> in OutputDir, or next to a local input.
// Remote inputs without OutputDir land in the working directory. Stdin
// maps to "", meaning stdout.
func outputPath(input string, opts Options) (string, error) {
	if input == source.Stdin {
		return "", nil
	}
	name := source.BaseName(input) + "." + opts.Format

	var out string
	switch {
	case opts.OutputDir != "":
		out = filepath.Join(opts.OutputDir, name)
	case source.IsRemote(input):
		out = name
	default:
		out = filepath.Join(filepath.Dir(input), name)
	}
	if !source.IsRemote(input) && filepath.Clean(out) == filepath.Clean(input) {
		return "", fmt.Errorf("output %s would overwrite the input", out)
	}
	return out, nil
}

func encode(lyric *pipeline.TTMLLyric, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(lyric)
	}
	data, err := json.MarshalIndent(lyric, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
