package pipeline

import (
	"math"

	"ttml2amll/internal/config"
	"ttml2amll/internal/lyric"
)

// SmoothSyllables evens out jittery syllable durations inside runs of
// similar, closely spaced syllables. Only boundaries inside a run move:
// each run keeps its first start, its last end, its total duration and the
// gaps between its syllables. Line bounds are never touched.
func SmoothSyllables(lines []lyric.Line, opts config.SmoothingOptions) {
	factor := math.Max(0, math.Min(opts.Factor, 0.5))
	if factor == 0 || opts.Iterations <= 0 {
		return
	}
	for i := range lines {
		smoothRun(lines[i].Syllables, factor, opts)
		if bg := lines[i].Background; bg != nil {
			smoothRun(bg.Syllables, factor, opts)
		}
	}
}

// smoothRun splits syllables into groups and smooths each one.
func smoothRun(syllables []lyric.Syllable, factor float64, opts config.SmoothingOptions) {
	start := 0
	for i := 1; i <= len(syllables); i++ {
		if i < len(syllables) && sameGroup(syllables[i-1], syllables[i], opts) {
			continue
		}
		if i-start >= 3 {
			smoothGroup(syllables[start:i], factor, opts.Iterations)
		}
		start = i
	}
}

func sameGroup(prev, cur lyric.Syllable, opts config.SmoothingOptions) bool {
	gap := cur.StartMs - prev.EndMs
	if gap < 0 || gap > opts.GapThresholdMs {
		return false
	}
	diff := lyric.Duration(cur.StartMs, cur.EndMs) - lyric.Duration(prev.StartMs, prev.EndMs)
	if diff < 0 {
		diff = -diff
	}
	return diff <= opts.DurationThresholdMs
}

func smoothGroup(group []lyric.Syllable, factor float64, iterations int) {
	n := len(group)
	d := make([]float64, n)
	gaps := make([]int64, n)
	var total float64
	for i, s := range group {
		d[i] = float64(lyric.Duration(s.StartMs, s.EndMs))
		total += d[i]
		if i > 0 {
			gaps[i] = s.StartMs - group[i-1].EndMs
		}
	}
	if total == 0 {
		return
	}

	next := make([]float64, n)
	for iter := 0; iter < iterations; iter++ {
		next[0], next[n-1] = d[0], d[n-1]
		for i := 1; i < n-1; i++ {
			mean := (d[i-1] + d[i+1]) / 2
			next[i] = d[i] + factor*(mean-d[i])
		}
		d, next = next, d
	}

	var smoothed float64
	for _, v := range d {
		smoothed += v
	}
	scale := total / smoothed

	origin := group[0].StartMs
	lastEnd := group[n-1].EndMs
	var acc float64
	var gapSum int64
	cursor := origin
	for i := range group {
		gapSum += gaps[i]
		acc += d[i] * scale
		start := cursor + gaps[i]
		end := origin + gapSum + int64(math.Round(acc))
		if i == n-1 {
			end = lastEnd
		}
		end = max(end, start)
		group[i].StartMs = start
		group[i].EndMs = end
		group[i].DurationMs = lyric.DurationPtr(start, end)
		cursor = end
	}
}
