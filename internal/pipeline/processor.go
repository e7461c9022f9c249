package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"ttml2amll/internal/config"
	"ttml2amll/internal/lyric"
	"ttml2amll/internal/ttml"
)

// Caches holds the state shared between Process calls.
type Caches struct {
	Regex     *RegexCache
	Converter *ConverterCache
}

// NewCaches returns empty caches.
func NewCaches() *Caches {
	return &Caches{
		Regex:     NewRegexCache(),
		Converter: NewConverterCache(),
	}
}

// Process parses a TTML document and runs the processing chain on it,
// returning display-ready lines. Only a fatal parse error is returned;
// every pass degrades to a no-op on bad options.
func Process(src string, opts *config.ChainOptions, caches *Caches) (*TTMLLyric, error) {
	if opts == nil {
		d := config.DefaultChain()
		opts = &d
	}
	if caches == nil {
		caches = NewCaches()
	}

	doc, err := ttml.Parse(src, ttml.Options{
		DefaultLanguages: ttml.DefaultLanguages{
			Main:         opts.DefaultLanguages.Main,
			Translation:  opts.DefaultLanguages.Translation,
			Romanization: opts.DefaultLanguages.Romanization,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parse ttml: %w", err)
	}
	lines := doc.Lines

	// Stage 1: drop credits and boilerplate.
	if opts.MetadataStripper.Enabled {
		lines = StripMetadataLines(lines, opts.MetadataStripper, caches.Regex)
	}

	// Stage 2: singers, only when the document names none.
	if !hasSingerInfo(lines) && opts.AgentRecognizer.Enabled {
		lines = RecognizeAgents(lines, opts.AgentRecognizer, caches.Regex)
		StandardizeAgentIDs(lines)
	}
	sides := AssignDuetSides(lines)

	// Stage 3: timing.
	if opts.ApplyAutoSplitting {
		SplitWords(lines, opts.PunctuationWeight)
	}
	if opts.Smoothing != nil {
		SmoothSyllables(lines, *opts.Smoothing)
	}

	// Stage 4: script.
	if opts.ChineseConversionMode.Enabled() {
		ConvertScript(lines, opts.ChineseConversionMode, caches.Converter)
	}

	result := &TTMLLyric{
		Lines:    displayLines(lines, sides),
		Metadata: metadataEntries(&doc.Metadata),
		Warnings: doc.Warnings,
	}
	slog.Debug("lyric processed",
		"source_lines", len(doc.Lines),
		"display_lines", len(result.Lines),
		"warnings", len(doc.Warnings))
	return result, nil
}

// displayLines maps lines to player lines. A background section becomes
// its own line right after its parent, on the parent's duet side.
func displayLines(lines []lyric.Line, sides map[string]bool) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		isDuet := false

		if words := displayWords(l.Syllables); len(words) > 0 {
			isDuet = sides[l.Agent]
			out = append(out, Line{
				Words:           words,
				TranslatedLyric: joinTranslations(l.Translations),
				RomanLyric:      joinRomanizations(l.Romanizations),
				IsDuet:          isDuet,
				StartTime:       l.StartMs,
				EndTime:         l.EndMs,
			})
		}

		bg := l.Background
		if bg == nil {
			continue
		}
		if words := displayWords(bg.Syllables); len(words) > 0 {
			out = append(out, Line{
				Words:           words,
				TranslatedLyric: joinTranslations(bg.Translations),
				RomanLyric:      joinRomanizations(bg.Romanizations),
				IsBG:            true,
				IsDuet:          isDuet,
				StartTime:       bg.StartMs,
				EndTime:         bg.EndMs,
			})
		}
	}
	return out
}

func displayWords(syllables []lyric.Syllable) []Word {
	if len(syllables) == 0 {
		return nil
	}
	words := make([]Word, len(syllables))
	for i, s := range syllables {
		text := s.Text
		if s.EndsWithSpace {
			text += " "
		}
		words[i] = Word{StartTime: s.StartMs, EndTime: s.EndMs, Word: text}
	}
	return words
}

func joinTranslations(entries []lyric.TranslationEntry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, Separator)
}

func joinRomanizations(entries []lyric.RomanizationEntry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, Separator)
}

func metadataEntries(m *lyric.Metadata) []MetadataEntry {
	out := make([]MetadataEntry, 0, m.Len())
	for _, k := range m.Keys() {
		out = append(out, MetadataEntry{Key: k, Values: m.Values(k)})
	}
	return out
}
