package ttml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"ttml2amll/internal/lyric"
)

// DefaultLanguages are used when the document does not tag a language.
type DefaultLanguages struct {
	Main         string
	Translation  string
	Romanization string
}

// Options configures Parse.
type Options struct {
	DefaultLanguages DefaultLanguages
}

// timedSpan detects word-level timing anywhere in the raw source.
var timedSpan = regexp.MustCompile(`<(?:\w+:)?span\s+[^>]*begin\s*=`)

type parser struct {
	opts Options
	dec  *xml.Decoder
	doc  *lyric.Document

	stack []frame
	line  *lineBuilder

	lineMode      bool
	hasTimedSpans bool
	mainLang      string

	ids    map[string]bool
	agents map[string]int
	tables [2]map[string]tableEntry
}

// Parse reads a TTML document into the normalized lyric model.
//
// Malformed XML, bad time expressions and broken invariants abort the
// parse with a *ParseError. Every other anomaly is recorded in
// Document.Warnings and parsing continues.
func Parse(src string, opts Options) (*lyric.Document, error) {
	cleaned, warnings := dropUnknownEntities(src)

	p := &parser{
		opts:          opts,
		doc:           &lyric.Document{Warnings: warnings},
		hasTimedSpans: timedSpan.MatchString(cleaned),
		mainLang:      opts.DefaultLanguages.Main,
		ids:           make(map[string]bool),
		agents:        make(map[string]int),
	}
	p.tables[translationTable] = make(map[string]tableEntry)
	p.tables[transliterationTable] = make(map[string]tableEntry)

	p.dec = xml.NewDecoder(strings.NewReader(cleaned))
	p.dec.Strict = true

	for {
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.fail(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			err = p.start(t)
		case xml.EndElement:
			err = p.end()
		case xml.CharData:
			p.text(string(t))
		}
		if err != nil {
			return nil, p.fail(err)
		}
	}

	p.doc.LineTimed = p.lineMode
	slog.Debug("ttml parsed",
		"lines", len(p.doc.Lines),
		"line_timed", p.lineMode,
		"warnings", len(p.doc.Warnings))
	return p.doc, nil
}

func (p *parser) fail(err error) error {
	line, col := p.dec.InputPos()
	return &ParseError{Line: line, Column: col, Offset: p.dec.InputOffset(), Err: err}
}

func (p *parser) warn(format string, args ...any) {
	p.doc.Warnings = append(p.doc.Warnings, fmt.Sprintf(format, args...))
}

func (p *parser) push(f frame) {
	p.stack = append(p.stack, f)
}

func (p *parser) top() frame {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// inside reports whether a frame matching fn is open.
func (p *parser) inside(fn func(frame) bool) bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if fn(p.stack[i]) {
			return true
		}
	}
	return false
}

func (p *parser) inMetadata() bool {
	return p.inside(func(f frame) bool {
		_, ok := f.(*metadataFrame)
		return ok
	})
}

func (p *parser) inBody() bool {
	return p.inside(func(f frame) bool {
		_, ok := f.(*bodyFrame)
		return ok
	})
}

func (p *parser) start(el xml.StartElement) error {
	switch {
	case len(p.stack) == 0:
		p.startRoot(el)
		p.push(&rootFrame{})
		return nil
	case p.line != nil:
		return p.startInParagraph(el)
	case p.inMetadata():
		p.startInMetadata(el)
		return nil
	}

	switch el.Name.Local {
	case "metadata":
		p.push(&metadataFrame{})
	case "body":
		p.push(&bodyFrame{})
	case "div":
		if !p.inBody() {
			p.push(&passthroughFrame{})
			break
		}
		part, _ := attrValue(el.Attr, "itunes:song-part", "itunes:songPart")
		p.push(&divFrame{songPart: part})
	case "p":
		if !p.inBody() {
			p.push(&passthroughFrame{})
			break
		}
		return p.startParagraph(el)
	default:
		p.push(&passthroughFrame{})
	}
	return nil
}

// startRoot decides the timing mode once, before any paragraph is read.
func (p *parser) startRoot(el xml.StartElement) {
	timing, declared := attrValue(el.Attr, "itunes:timing")
	switch {
	case declared && timing == "line":
		p.lineMode = true
		if p.hasTimedSpans {
			p.warn("document declares line timing but contains timed spans; syllable timing is ignored")
		}
	case declared:
		if !p.hasTimedSpans {
			p.warn("document declares %q timing but contains no timed spans", timing)
		}
	case !p.hasTimedSpans:
		p.lineMode = true
		p.warn("no timed spans and no timing mode declared; treating document as line-timed")
	}

	if lang, ok := attrValue(el.Attr, "xml:lang"); ok && lang != "" {
		p.doc.Metadata.Add("xml:lang_root", lang)
		if p.mainLang == "" {
			p.mainLang = lang
		}
	}
}

func (p *parser) end() error {
	f := p.top()
	if f == nil {
		return fmt.Errorf("%w: end element with no open frame", ErrInternal)
	}
	p.stack = p.stack[:len(p.stack)-1]

	switch f := f.(type) {
	case *spanFrame:
		return p.closeSpan(f)
	case *paragraphFrame:
		if f.line != p.line {
			return fmt.Errorf("%w: paragraph frame does not own the open line", ErrInternal)
		}
		p.closeParagraph(f.line)
		p.line = nil
	case *songwriterFrame, *agentNameFrame, *metaTextFrame, *tableTextFrame:
		p.closeMetadata(f)
	}
	return nil
}

func (p *parser) text(s string) {
	switch {
	case p.line != nil:
		p.paragraphText(s)
	case p.inMetadata():
		p.metadataText(s)
	}
}

// timeAttr parses an optional time attribute.
func timeAttr(el xml.StartElement, name string) (*int64, error) {
	v, ok := attrValue(el.Attr, name)
	if !ok {
		return nil, nil
	}
	ms, err := ParseTime(v)
	if err != nil {
		return nil, fmt.Errorf("<%s %s>: %w", el.Name.Local, name, err)
	}
	return &ms, nil
}
