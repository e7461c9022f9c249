package pipeline

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"ttml2amll/internal/config"
	"ttml2amll/internal/lyric"
)

const (
	headerScanLimit = 20
	footerScanLimit = 10
)

// defaultPatterns catch copyright notices and credit lines that do not
// follow the "label: name" shape.
var defaultPatterns = []string{
	`^.*(著作权|版权|未经|未取得|未获).*许可.*不得.*(使用|翻唱|翻录).*$`,
	`(?:【.*?未经.*?】|\(.*?未经.*?\)|「.*?未经.*?」|（.*?未经.*?）|『.*?未经.*?』)`,
	`(?:【.*?音乐人.*?】|\(.*?音乐人.*?\)|「.*?音乐人.*?」|（.*?音乐人.*?）|『.*?音乐人.*?』)`,
	`.*?未经.*?许可.*?不得.*?使用.*? `,
	`.*?未经.*?许可.*?不得.*?方式.*? `,
	`未经著作权人书面许可，\s*不得以任何方式\s*[(\x{FF08}]包括.*?等[)\x{FF09}]\s*使用`,
	`.*?发行方\s*[：:].*?`,
	`.*?(?:工作室|特别企划).*?`,
	`^.*(联合|合作|总|首席)?策划\s*[:：].*$`,
}

// StripMetadataLines removes production credits from the head and tail of
// the lyric and then drops every line matching a boilerplate pattern.
// Applying it to its own output removes nothing further.
func StripMetadataLines(lines []lyric.Line, opts config.StripperOptions, cache *RegexCache) []lyric.Line {
	if !opts.Enabled {
		return lines
	}

	keywords := opts.Keywords
	if keywords == nil {
		keywords = defaultKeywords
	}
	patterns := opts.RegexPatterns
	if patterns == nil {
		patterns = defaultPatterns
	}

	if len(lines) == 0 || (len(keywords) == 0 && (!opts.EnableRegexStripping || len(patterns) == 0)) {
		return lines
	}
	originalCount := len(lines)

	if len(keywords) > 0 {
		m := newKeywordMatcher(keywords, opts.KeywordCaseSensitive)
		lines = stripCreditBlocks(lines, m)
		if len(lines) < originalCount {
			slog.Debug("credit lines removed", "remaining", len(lines))
		}
	}

	if opts.EnableRegexStripping && len(patterns) > 0 && len(lines) > 0 {
		lines = stripByPattern(lines, patterns, opts.RegexCaseSensitive, cache)
	}

	if len(lines) < originalCount {
		slog.Debug("metadata stripping finished", "before", originalCount, "after", len(lines))
	}
	return lines
}

// stripCreditBlocks keeps lines[header:footer], where header is one past
// the last credit line among the first lines and footer is the start of
// the trailing run of credit lines.
func stripCreditBlocks(lines []lyric.Line, m *keywordMatcher) []lyric.Line {
	n := len(lines)

	header := 0
	for i := 0; i < min(headerScanLimit, n); i++ {
		if m.match(lines[i].PlainText()) {
			header = i + 1
		}
	}

	footer := n
	if header < n {
		for i := n - 1; i >= max(n-footerScanLimit, header); i-- {
			if !m.match(lines[i].PlainText()) {
				break
			}
			footer = i
		}
	} else {
		footer = header
	}

	switch {
	case header < footer:
		return lines[header:footer]
	case header > 0 || footer < n:
		// Every line is a credit.
		return lines[:0]
	}
	return lines
}

func stripByPattern(lines []lyric.Line, patterns []string, caseSensitive bool, cache *RegexCache) []lyric.Line {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if re := cache.Get(p, caseSensitive); re != nil {
			compiled = append(compiled, re)
		}
	}
	if len(compiled) == 0 {
		return lines
	}

	before := len(lines)
	kept := lines[:0]
	for _, line := range lines {
		text := line.PlainText()
		matched := false
		for _, re := range compiled {
			if re.MatchString(text) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, line)
		}
	}
	if removed := before - len(kept); removed > 0 {
		slog.Debug("boilerplate lines removed", "count", removed)
	}
	return kept
}

type keywordMatcher struct {
	keywords      []string
	caseSensitive bool
}

func newKeywordMatcher(keywords []string, caseSensitive bool) *keywordMatcher {
	m := &keywordMatcher{caseSensitive: caseSensitive}
	if caseSensitive {
		m.keywords = keywords
		return m
	}
	m.keywords = make([]string, len(keywords))
	for i, k := range keywords {
		m.keywords[i] = strings.ToLower(k)
	}
	return m
}

// match reports whether text, after one optional leading [tag] or (tag),
// starts with a keyword followed by a half- or full-width colon.
func (m *keywordMatcher) match(text string) bool {
	rest := strings.TrimLeftFunc(text, unicode.IsSpace)
	switch {
	case strings.HasPrefix(rest, "["):
		if i := strings.IndexByte(rest, ']'); i >= 0 {
			rest = strings.TrimLeftFunc(rest[i+1:], unicode.IsSpace)
		}
	case strings.HasPrefix(rest, "("):
		if i := strings.IndexByte(rest, ')'); i >= 0 {
			rest = strings.TrimLeftFunc(rest[i+1:], unicode.IsSpace)
		}
	}
	if !m.caseSensitive {
		rest = strings.ToLower(rest)
	}

	for _, k := range m.keywords {
		after, ok := strings.CutPrefix(rest, k)
		if !ok {
			continue
		}
		after = strings.TrimLeftFunc(after, unicode.IsSpace)
		if strings.HasPrefix(after, ":") || strings.HasPrefix(after, "：") {
			return true
		}
	}
	return false
}
