package pipeline

import (
	"log/slog"
	"regexp"
	"sync"
)

type regexKey struct {
	pattern       string
	caseSensitive bool
}

// RegexCache memoizes compiled patterns by pattern text and case
// sensitivity. Patterns that fail to compile are remembered as nil so the
// warning is logged once. A nil *RegexCache compiles on every call.
type RegexCache struct {
	mu sync.Mutex
	m  map[regexKey]*regexp.Regexp
}

// NewRegexCache returns an empty cache.
func NewRegexCache() *RegexCache {
	return &RegexCache{m: make(map[regexKey]*regexp.Regexp)}
}

// Get returns the compiled pattern, or nil if it does not compile.
func (c *RegexCache) Get(pattern string, caseSensitive bool) *regexp.Regexp {
	if c == nil {
		return compilePattern(pattern, caseSensitive)
	}

	key := regexKey{pattern: pattern, caseSensitive: caseSensitive}
	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.m[key]; ok {
		return re
	}
	re := compilePattern(pattern, caseSensitive)
	c.m[key] = re
	return re
}

// Len returns the number of cached keys.
func (c *RegexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func compilePattern(pattern string, caseSensitive bool) *regexp.Regexp {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		slog.Warn("invalid pattern ignored", "pattern", pattern, "err", err)
		return nil
	}
	return re
}
