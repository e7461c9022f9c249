package pipeline

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"ttml2amll/internal/config"
	"ttml2amll/internal/lyric"
)

// defaultAgentPattern matches "(Name):", "（Name）：" or "Name:" at the
// start of a line, including the whitespace around the colon.
const defaultAgentPattern = `^\s*(?:\((.+?)\)|（(.+?)）|([^\s:()（）]+))\s*[:：]\s*`

// RecognizeAgents reads singer names from line prefixes such as "汪：" and
// assigns them to Line.Agent, removing the prefix from the line. Lines that
// hold nothing but a marker switch the current singer and are dropped when
// opts.RemoveMarkerLines is set. Later unmarked lines inherit the current
// singer when opts.InheritAgent is set.
func RecognizeAgents(lines []lyric.Line, opts config.AgentOptions, cache *RegexCache) []lyric.Line {
	if !opts.Enabled {
		return lines
	}

	pattern := defaultAgentPattern
	if opts.CustomPattern != "" {
		pattern = opts.CustomPattern
	}
	re := cache.Get(pattern, opts.CaseSensitive)
	if re == nil {
		slog.Warn("agent recognition skipped", "pattern", pattern)
		return lines
	}

	out := lines[:0]
	current := ""
	for _, line := range lines {
		full := line.RawText()
		loc := re.FindStringSubmatchIndex(full)

		name := ""
		if loc != nil && loc[0] == 0 {
			name = firstGroup(full, loc)
		}
		if name == "" {
			if opts.InheritAgent {
				line.Agent = current
			}
			out = append(out, line)
			continue
		}

		prefix := full[:loc[1]]
		current = name
		if strings.TrimSpace(full[loc[1]:]) == "" {
			if opts.RemoveMarkerLines {
				continue
			}
		} else {
			line.Agent = name
		}
		removeAgentPrefix(&line, prefix)
		out = append(out, line)
	}
	return out
}

// firstGroup returns the first participating capture group, trimmed.
func firstGroup(s string, loc []int) string {
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			if name := strings.TrimSpace(s[loc[i]:loc[i+1]]); name != "" {
				return name
			}
		}
	}
	return ""
}

// removeAgentPrefix drops prefix from the syllables and the flat text. The
// prefix length is spent syllable by syllable; a syllable that only
// partially fits is truncated.
func removeAgentPrefix(line *lyric.Line, prefix string) {
	if len(line.Syllables) > 0 {
		budget := len(prefix)
		// Flat text joined from syllables carries a space per word gap.
		joined := line.Text != nil
		drained := 0
		for _, s := range line.Syllables {
			width := len(s.Text)
			if joined && s.EndsWithSpace {
				width++
			}
			if budget < width {
				break
			}
			budget -= width
			drained++
		}
		line.Syllables = line.Syllables[drained:]

		if budget > 0 && len(line.Syllables) > 0 {
			first := &line.Syllables[0]
			for budget < len(first.Text) && !utf8.RuneStart(first.Text[budget]) {
				budget++
			}
			if budget < len(first.Text) {
				first.Text = first.Text[budget:]
			} else {
				line.Syllables = line.Syllables[1:]
			}
		}
	}

	if line.Text == nil {
		return
	}
	if rest, ok := strings.CutPrefix(*line.Text, prefix); ok {
		line.SetText(rest)
	} else if len(line.Syllables) > 0 {
		line.SetText(lyric.JoinSyllables(line.Syllables))
	}
}
