package lyric

import (
	"strings"
)

// NormalizeWhitespace trims s and collapses every internal whitespace run
// into a single space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinSyllables concatenates syllable texts, inserting a space after every
// syllable flagged EndsWithSpace.
func JoinSyllables(syllables []Syllable) string {
	var b strings.Builder
	for _, s := range syllables {
		b.WriteString(s.Text)
		if s.EndsWithSpace {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// concatSyllables concatenates syllable texts verbatim.
func concatSyllables(syllables []Syllable) string {
	var b strings.Builder
	for _, s := range syllables {
		b.WriteString(s.Text)
	}
	return b.String()
}

// RawText returns the flat line text when present, otherwise the
// untrimmed concatenation of the syllable texts.
func (l *Line) RawText() string {
	if l.Text != nil {
		return *l.Text
	}
	return concatSyllables(l.Syllables)
}

// PlainText returns the trimmed flat text when non-empty, otherwise the
// trimmed concatenation of the syllable texts.
func (l *Line) PlainText() string {
	if l.Text != nil && *l.Text != "" {
		return strings.TrimSpace(*l.Text)
	}
	return strings.TrimSpace(concatSyllables(l.Syllables))
}

// SetText replaces the flat line text.
func (l *Line) SetText(s string) {
	l.Text = &s
}
