package pipeline

import (
	"log/slog"
	"sync"

	"ttml2amll/internal/config"
	"ttml2amll/internal/lyric"

	"github.com/longbridgeapp/opencc"
)

// Converter rewrites text between Han script variants.
type Converter interface {
	Convert(text string) (string, error)
}

type converterEntry struct {
	once sync.Once
	conv Converter
	err  error
}

// ConverterCache builds one Converter per conversion mode, at most once,
// and shares it between callers. Concurrent first users of a mode wait for
// the same build. It is safe for concurrent use.
type ConverterCache struct {
	mu      sync.Mutex
	entries map[config.ConversionMode]*converterEntry
	build   func(mode config.ConversionMode) (Converter, error)
}

// NewConverterCache returns a cache backed by OpenCC dictionaries.
func NewConverterCache() *ConverterCache {
	return newConverterCache(func(mode config.ConversionMode) (Converter, error) {
		cc, err := opencc.New(string(mode))
		if err != nil {
			return nil, err
		}
		return cc, nil
	})
}

func newConverterCache(build func(config.ConversionMode) (Converter, error)) *ConverterCache {
	return &ConverterCache{
		entries: make(map[config.ConversionMode]*converterEntry),
		build:   build,
	}
}

// Get returns the converter for mode, or nil when mode is disabled or its
// converter failed to initialize.
func (c *ConverterCache) Get(mode config.ConversionMode) Converter {
	if !mode.Enabled() {
		return nil
	}

	c.mu.Lock()
	e, ok := c.entries[mode]
	if !ok {
		e = &converterEntry{}
		c.entries[mode] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.conv, e.err = c.build(mode)
		if e.err != nil {
			slog.Error("converter initialization failed", "mode", mode, "err", e.err)
		}
	})
	if e.err != nil {
		return nil
	}
	return e.conv
}

// ConvertScript applies the mode's conversion to syllables, flat text and
// translations of every line and background section. Romanizations are
// left alone. An unusable mode leaves lines unchanged.
func ConvertScript(lines []lyric.Line, mode config.ConversionMode, cache *ConverterCache) {
	conv := cache.Get(mode)
	if conv == nil {
		return
	}
	convert := func(s string) string {
		if s == "" {
			return s
		}
		out, err := conv.Convert(s)
		if err != nil {
			slog.Warn("conversion failed", "mode", mode, "err", err)
			return s
		}
		return out
	}

	for i := range lines {
		line := &lines[i]
		for j := range line.Syllables {
			line.Syllables[j].Text = convert(line.Syllables[j].Text)
		}
		if line.Text != nil {
			line.SetText(convert(*line.Text))
		} else if len(line.Syllables) > 0 {
			line.SetText(lyric.JoinSyllables(line.Syllables))
		}
		for j := range line.Translations {
			line.Translations[j].Text = convert(line.Translations[j].Text)
		}

		if bg := line.Background; bg != nil {
			for j := range bg.Syllables {
				bg.Syllables[j].Text = convert(bg.Syllables[j].Text)
			}
			for j := range bg.Translations {
				bg.Translations[j].Text = convert(bg.Translations[j].Text)
			}
		}
	}
}
