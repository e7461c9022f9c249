package ttml

import (
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ttml2amll/internal/lyric"
)

// lastEvent remembers what the previous paragraph event closed, so that
// whitespace between spans can be attributed to it.
type lastEvent int

const (
	lastNone lastEvent = iota
	lastMainSyllable
	lastBackgroundSyllable
	lastLineSpan
)

// lineBuilder accumulates one <p> element. It is owned by the paragraph
// frame and only becomes a lyric.Line when the paragraph closes.
type lineBuilder struct {
	startMs  int64
	endMs    int64
	hasBegin bool
	hasEnd   bool
	agent    string
	songPart string
	key      string

	text          strings.Builder
	syllables     []lyric.Syllable
	translations  []lyric.TranslationEntry
	romanizations []lyric.RomanizationEntry
	bg            *lyric.BackgroundSection

	ignoredTimed int
	last         lastEvent
}

func (p *parser) startParagraph(el xml.StartElement) error {
	b := &lineBuilder{}

	begin, err := timeAttr(el, "begin")
	if err != nil {
		return err
	}
	end, err := timeAttr(el, "end")
	if err != nil {
		return err
	}
	if begin != nil {
		b.startMs, b.hasBegin = *begin, true
	}
	if end != nil {
		b.endMs, b.hasEnd = *end, true
	}

	b.agent, _ = attrValue(el.Attr, "ttm:agent", "agent")
	b.key, _ = attrValue(el.Attr, "itunes:key")
	if part, ok := attrValue(el.Attr, "itunes:song-part", "itunes:songPart"); ok {
		b.songPart = part
	} else {
		for i := len(p.stack) - 1; i >= 0; i-- {
			if div, ok := p.stack[i].(*divFrame); ok {
				b.songPart = div.songPart
				break
			}
		}
	}

	p.line = b
	p.push(&paragraphFrame{line: b})
	return nil
}

func (p *parser) startInParagraph(el xml.StartElement) error {
	b := p.line
	switch el.Name.Local {
	case "span":
		f := &spanFrame{}
		role, _ := attrValue(el.Attr, "ttm:role", "role")
		f.role = parseRole(role)
		f.lang, _ = attrValue(el.Attr, "xml:lang")
		f.scheme, _ = attrValue(el.Attr, "xml:scheme")

		var err error
		if f.begin, err = timeAttr(el, "begin"); err != nil {
			return err
		}
		if f.end, err = timeAttr(el, "end"); err != nil {
			return err
		}

		if f.role == roleBackground && b.bg == nil {
			b.bg = &lyric.BackgroundSection{}
			if f.begin != nil {
				b.bg.StartMs = *f.begin
			}
			if f.end != nil {
				b.bg.EndMs = *f.end
			}
		}
		b.last = lastNone
		p.push(f)
	case "br":
		p.warn("ignored <br> in paragraph %dms-%dms", b.startMs, b.endMs)
		p.push(&passthroughFrame{})
	default:
		p.push(&passthroughFrame{})
	}
	return nil
}

// openSpan returns the innermost span of the open paragraph.
func (p *parser) openSpan() *spanFrame {
	for i := len(p.stack) - 1; i >= 0; i-- {
		switch f := p.stack[i].(type) {
		case *spanFrame:
			return f
		case *paragraphFrame:
			return nil
		}
	}
	return nil
}

// inBackground reports whether an x-bg span is still open.
func (p *parser) inBackground() bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		switch f := p.stack[i].(type) {
		case *spanFrame:
			if f.role == roleBackground {
				return true
			}
		case *paragraphFrame:
			return false
		}
	}
	return false
}

func (p *parser) paragraphText(s string) {
	b := p.line

	// Whitespace right after a closed syllable is a word gap, not text.
	if b.last != lastNone && isSpace(s) {
		switch b.last {
		case lastMainSyllable:
			if n := len(b.syllables); n > 0 {
				b.syllables[n-1].EndsWithSpace = true
			}
		case lastBackgroundSyllable:
			if b.bg != nil {
				if n := len(b.bg.Syllables); n > 0 {
					b.bg.Syllables[n-1].EndsWithSpace = true
				}
			}
		case lastLineSpan:
			b.text.WriteByte(' ')
		}
		b.last = lastNone
		return
	}

	if span := p.openSpan(); span != nil {
		if !isSpace(s) {
			b.last = lastNone
		}
		span.buf.WriteString(s)
		return
	}

	// Whitespace between elements at paragraph level is formatting.
	if strings.TrimSpace(s) == "" {
		return
	}
	b.last = lastNone
	b.text.WriteString(s)
}

func (p *parser) closeSpan(f *spanFrame) error {
	b := p.line
	if b == nil {
		return fmt.Errorf("%w: span closed outside a paragraph", ErrInternal)
	}
	b.last = lastNone
	raw := f.buf.String()
	inBg := p.inBackground()

	switch f.role {
	case roleGeneric:
		p.closeGenericSpan(b, f, raw, inBg)
	case roleTranslation, roleRomanization:
		p.closeAuxiliarySpan(b, f, raw, inBg)
	case roleBackground:
		return p.closeBackgroundSpan(b, f, raw)
	}
	return nil
}

func (p *parser) closeGenericSpan(b *lineBuilder, f *spanFrame, raw string, inBg bool) {
	if p.lineMode {
		b.text.WriteString(raw)
		if f.begin != nil || f.end != nil {
			b.ignoredTimed++
		}
		b.last = lastLineSpan
		return
	}

	if f.begin == nil || f.end == nil {
		if t := strings.TrimSpace(raw); t != "" {
			p.warn("span %q has no timing in a word-timed document; text dropped", t)
		}
		return
	}
	if raw == "" {
		return
	}

	start, end := *f.begin, *f.end
	if start > end {
		p.warn("syllable %q has inverted timing (%dms > %dms); kept", strings.TrimSpace(raw), start, end)
	}
	syl := lyric.Syllable{
		StartMs:    start,
		EndMs:      max(end, start),
		DurationMs: lyric.DurationPtr(start, end),
	}
	if strings.TrimSpace(raw) == "" {
		syl.Text = " "
	} else {
		syl.Text = lyric.NormalizeWhitespace(raw)
		syl.EndsWithSpace = endsWithSpace(raw)
	}

	if inBg {
		if b.bg == nil {
			return
		}
		b.bg.Syllables = append(b.bg.Syllables, syl)
		b.last = lastBackgroundSyllable
		return
	}
	b.syllables = append(b.syllables, syl)
	b.last = lastMainSyllable
}

func (p *parser) closeAuxiliarySpan(b *lineBuilder, f *spanFrame, raw string, inBg bool) {
	text := lyric.NormalizeWhitespace(raw)
	if text == "" {
		return
	}

	if f.role == roleTranslation {
		lang := f.lang
		if lang == "" {
			lang = p.opts.DefaultLanguages.Translation
		}
		entry := lyric.TranslationEntry{Text: text, Lang: lang}
		if inBg && b.bg != nil {
			b.bg.Translations = append(b.bg.Translations, entry)
		} else {
			b.translations = append(b.translations, entry)
		}
		return
	}

	lang := f.lang
	if lang == "" {
		lang = p.opts.DefaultLanguages.Romanization
	}
	entry := lyric.RomanizationEntry{Text: text, Lang: lang, Scheme: f.scheme}
	if inBg && b.bg != nil {
		b.bg.Romanizations = append(b.bg.Romanizations, entry)
	} else {
		b.romanizations = append(b.romanizations, entry)
	}
}

func (p *parser) closeBackgroundSpan(b *lineBuilder, f *spanFrame, raw string) error {
	bg := b.bg
	if bg == nil {
		return fmt.Errorf("%w: background span closed without a section", ErrInternal)
	}

	if (f.begin == nil || f.end == nil) && len(bg.Syllables) > 0 {
		bg.StartMs, bg.EndMs = bg.Syllables[0].StartMs, bg.Syllables[0].EndMs
		for _, s := range bg.Syllables[1:] {
			bg.StartMs = min(bg.StartMs, s.StartMs)
			bg.EndMs = max(bg.EndMs, s.EndMs)
		}
	}

	direct := strings.TrimSpace(raw)
	if direct == "" {
		return nil
	}
	switch {
	case f.begin == nil || f.end == nil:
		p.warn("background span contains direct text %q without timing; dropped", direct)
	case len(bg.Syllables) > 0:
		p.warn("background span contains direct text %q beside syllables; dropped", direct)
	default:
		start, end := *f.begin, *f.end
		bg.Syllables = append(bg.Syllables, lyric.Syllable{
			Text:          lyric.NormalizeWhitespace(direct),
			StartMs:       start,
			EndMs:         max(end, start),
			DurationMs:    lyric.DurationPtr(start, end),
			EndsWithSpace: endsWithSpace(raw),
		})
		b.last = lastBackgroundSyllable
	}
	return nil
}

func (p *parser) closeParagraph(b *lineBuilder) {
	line := lyric.Line{
		StartMs:       b.startMs,
		EndMs:         b.endMs,
		Agent:         b.agent,
		SongPart:      b.songPart,
		Key:           b.key,
		Translations:  b.translations,
		Romanizations: b.romanizations,
	}
	if line.Agent == "" {
		line.Agent = lyric.DefaultAgent
	}

	p.backfill(&line, b)

	if p.lineMode {
		line.SetText(lyric.NormalizeWhitespace(b.text.String()))
		if b.ignoredTimed > 0 {
			p.warn("ignored timing of %d spans in line-timed paragraph %dms-%dms", b.ignoredTimed, b.startMs, b.endMs)
		}
	} else {
		p.assembleWords(&line, b)
	}

	if b.bg != nil {
		trimBackgroundBrackets(b.bg)
		if !b.bg.Empty() {
			line.Background = b.bg
		}
	}

	if n := len(line.Syllables); n > 0 {
		line.Syllables[n-1].EndsWithSpace = false
	}
	if line.Background != nil {
		if n := len(line.Background.Syllables); n > 0 {
			line.Background.Syllables[n-1].EndsWithSpace = false
		}
	}

	hasText := line.Text != nil && *line.Text != ""
	if len(line.Syllables) == 0 && hasText && line.EndMs > line.StartMs {
		line.Syllables = append(line.Syllables, lyric.Syllable{
			Text:       *line.Text,
			StartMs:    line.StartMs,
			EndMs:      line.EndMs,
			DurationMs: lyric.DurationPtr(line.StartMs, line.EndMs),
		})
	}

	if len(line.Syllables) == 0 && !hasText &&
		len(line.Translations) == 0 && len(line.Romanizations) == 0 &&
		line.Background == nil && line.EndMs <= line.StartMs {
		return
	}
	p.doc.Lines = append(p.doc.Lines, line)
}

// assembleWords finishes a word-timed paragraph.
func (p *parser) assembleWords(line *lyric.Line, b *lineBuilder) {
	line.Syllables = b.syllables

	if unwrapped := lyric.NormalizeWhitespace(b.text.String()); unwrapped != "" {
		if len(line.Syllables) == 0 {
			if line.StartMs > line.EndMs {
				p.warn("paragraph text %q has inverted timing (%dms > %dms)", unwrapped, line.StartMs, line.EndMs)
			}
			line.Syllables = append(line.Syllables, lyric.Syllable{
				Text:       unwrapped,
				StartMs:    line.StartMs,
				EndMs:      max(line.EndMs, line.StartMs),
				DurationMs: lyric.DurationPtr(line.StartMs, line.EndMs),
			})
		} else {
			p.warn("paragraph %dms-%dms has text outside spans: %q; dropped", line.StartMs, line.EndMs, unwrapped)
		}
	}

	if len(line.Syllables) == 0 {
		return
	}
	if !b.hasBegin {
		line.StartMs = line.Syllables[0].StartMs
		for _, s := range line.Syllables[1:] {
			line.StartMs = min(line.StartMs, s.StartMs)
		}
	}
	if !b.hasEnd {
		for _, s := range line.Syllables {
			line.EndMs = max(line.EndMs, s.EndMs)
		}
	}
	line.SetText(strings.TrimRightFunc(lyric.JoinSyllables(line.Syllables), unicode.IsSpace))
}

// backfill appends entries from the iTunesMetadata tables that the
// paragraph does not already carry inline.
func (p *parser) backfill(line *lyric.Line, b *lineBuilder) {
	if b.key == "" {
		return
	}

	if e, ok := p.tables[translationTable][b.key]; ok {
		if e.text != "" && !hasTranslation(line.Translations, e) {
			line.Translations = append(line.Translations, lyric.TranslationEntry{Text: e.text, Lang: e.lang})
		}
		if e.bgText != "" && b.bg != nil {
			bgEntry := tableEntry{text: e.bgText, lang: e.lang}
			if !hasTranslation(b.bg.Translations, bgEntry) {
				b.bg.Translations = append(b.bg.Translations, lyric.TranslationEntry{Text: e.bgText, Lang: e.lang})
			}
		}
	}

	if e, ok := p.tables[transliterationTable][b.key]; ok {
		if e.text != "" && !hasRomanization(line.Romanizations, e) {
			line.Romanizations = append(line.Romanizations, lyric.RomanizationEntry{Text: e.text, Lang: e.lang})
		}
		if e.bgText != "" && b.bg != nil {
			bgEntry := tableEntry{text: e.bgText, lang: e.lang}
			if !hasRomanization(b.bg.Romanizations, bgEntry) {
				b.bg.Romanizations = append(b.bg.Romanizations, lyric.RomanizationEntry{Text: e.bgText, Lang: e.lang})
			}
		}
	}
}

// Inline entries win over the table when they share text or language.
func hasTranslation(entries []lyric.TranslationEntry, e tableEntry) bool {
	for _, t := range entries {
		if t.Text == e.text || (e.lang != "" && t.Lang == e.lang) {
			return true
		}
	}
	return false
}

func hasRomanization(entries []lyric.RomanizationEntry, e tableEntry) bool {
	for _, r := range entries {
		if r.Text == e.text || (e.lang != "" && r.Lang == e.lang) {
			return true
		}
	}
	return false
}

// trimBackgroundBrackets removes the parentheses wrapping a backing-vocal
// run from its first and last syllables.
func trimBackgroundBrackets(bg *lyric.BackgroundSection) {
	if len(bg.Syllables) == 0 {
		return
	}
	first := &bg.Syllables[0]
	if t := strings.TrimLeft(first.Text, "(（"); t != first.Text {
		first.Text = strings.TrimLeftFunc(t, unicode.IsSpace)
	}
	last := &bg.Syllables[len(bg.Syllables)-1]
	if t := strings.TrimRight(last.Text, ")）"); t != last.Text {
		last.Text = strings.TrimRightFunc(t, unicode.IsSpace)
	}

	kept := bg.Syllables[:0]
	for _, s := range bg.Syllables {
		if s.Text != "" {
			kept = append(kept, s)
		}
	}
	bg.Syllables = kept
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
