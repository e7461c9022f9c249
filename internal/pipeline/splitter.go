package pipeline

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"ttml2amll/internal/lyric"

	"github.com/rivo/uniseg"
)

// charClass classifies a grapheme cluster by its leading rune.
type charClass int

const (
	classCJK charClass = iota
	classLatin
	classNumeric
	classWhitespace
	classOther
)

func classify(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classWhitespace
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return classLatin
	case r >= '0' && r <= '9':
		return classNumeric
	case r >= 0x4E00 && r <= 0x9FFF, // CJK unified ideographs
		r >= 0x3040 && r <= 0x309F, // hiragana
		r >= 0x30A0 && r <= 0x30FF, // katakana
		r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return classCJK
	}
	return classOther
}

type token struct {
	text  string
	class charClass
}

// mergeable reports whether adjacent clusters of these classes form one
// token. CJK characters and punctuation always stand alone.
func mergeable(prev, cur charClass) bool {
	return prev == cur && (cur == classLatin || cur == classNumeric || cur == classWhitespace)
}

// tokenize splits text into grapheme-cluster tokens.
func tokenize(text string) []token {
	var (
		tokens []token
		cur    strings.Builder
		class  charClass
	)
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		r, _ := utf8.DecodeRuneInString(cluster)
		c := classify(r)
		if cur.Len() > 0 && !mergeable(class, c) {
			tokens = append(tokens, token{text: cur.String(), class: class})
			cur.Reset()
		}
		cur.WriteString(cluster)
		class = c
	}
	if cur.Len() > 0 {
		tokens = append(tokens, token{text: cur.String(), class: class})
	}
	return tokens
}

func (t token) weight(punctuationWeight float64) float64 {
	switch t.class {
	case classCJK, classLatin, classNumeric:
		return float64(utf8.RuneCountInString(t.text))
	case classOther:
		return punctuationWeight
	}
	return 0
}

// splitLine distributes [startMs, endMs] over the tokens of text in
// proportion to their weight. The last visible token ends exactly at endMs.
func splitLine(text string, startMs, endMs int64, punctuationWeight float64) []lyric.Syllable {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	lastVisible := -1
	total := 0.0
	for i, t := range tokens {
		total += t.weight(punctuationWeight)
		if t.class != classWhitespace {
			lastVisible = i
		}
	}
	if total <= 0 {
		return nil
	}

	perWeight := float64(lyric.Duration(startMs, endMs)) / total
	var (
		syllables []lyric.Syllable
		acc       float64
		cursor    = startMs
	)
	for i, t := range tokens {
		if t.class == classWhitespace {
			if n := len(syllables); n > 0 {
				syllables[n-1].EndsWithSpace = true
			}
			continue
		}

		acc += t.weight(punctuationWeight)
		end := startMs + int64(math.Round(acc*perWeight))
		if i == lastVisible {
			end = endMs
		}
		syllables = append(syllables, lyric.Syllable{
			Text:       t.text,
			StartMs:    cursor,
			EndMs:      end,
			DurationMs: lyric.DurationPtr(cursor, end),
		})
		cursor = end
	}
	return syllables
}

// SplitWords gives line-timed lines word-level timing. A line qualifies
// when it has at most one syllable, non-blank flat text and a positive
// duration; its syllables are replaced by the split result.
func SplitWords(lines []lyric.Line, punctuationWeight float64) {
	for i := range lines {
		line := &lines[i]
		if len(line.Syllables) > 1 || line.EndMs <= line.StartMs {
			continue
		}
		if line.Text == nil || strings.TrimSpace(*line.Text) == "" {
			continue
		}
		if syllables := splitLine(*line.Text, line.StartMs, line.EndMs, punctuationWeight); len(syllables) > 0 {
			line.Syllables = syllables
		}
	}
}
