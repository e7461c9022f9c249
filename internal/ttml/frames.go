package ttml

import (
	"encoding/xml"
	"strings"
)

const (
	nsXML    = "http://www.w3.org/XML/1998/namespace"
	nsTTM    = "http://www.w3.org/ns/ttml#metadata"
	nsITunes = "http://music.apple.com/lyric-ttml-internal"
)

// knownPrefixes maps the conventional prefixes to their namespace URIs so
// names match whether or not the document declares them.
var knownPrefixes = map[string]string{
	"xml":    nsXML,
	"ttm":    nsTTM,
	"itunes": nsITunes,
}

// frame is one open element on the parser stack. Every start element pushes
// exactly one frame and every end element pops it.
type frame interface {
	isFrame()
}

type sealed struct{}

func (sealed) isFrame() {}

type spanRole int

const (
	roleGeneric spanRole = iota
	roleTranslation
	roleRomanization
	roleBackground
)

func parseRole(v string) spanRole {
	switch v {
	case "x-translation":
		return roleTranslation
	case "x-roman":
		return roleRomanization
	case "x-bg":
		return roleBackground
	}
	return roleGeneric
}

type tableKind int

const (
	translationTable tableKind = iota
	transliterationTable
)

type (
	// passthroughFrame stands in for elements that carry no meaning here.
	passthroughFrame struct{ sealed }

	rootFrame     struct{ sealed }
	bodyFrame     struct{ sealed }
	metadataFrame struct{ sealed }

	divFrame struct {
		sealed
		songPart string
	}

	paragraphFrame struct {
		sealed
		line *lineBuilder
	}

	spanFrame struct {
		sealed
		role   spanRole
		lang   string
		scheme string
		begin  *int64
		end    *int64
		buf    strings.Builder
	}

	itunesFrame      struct{ sealed }
	songwritersFrame struct{ sealed }

	tableFrame struct {
		sealed
		kind tableKind
	}

	tableEntryFrame struct {
		sealed
		kind tableKind
		lang string
	}

	tableTextFrame struct {
		sealed
		kind tableKind
		lang string
		key  string
		main strings.Builder
		bg   strings.Builder
	}

	// tableSpanFrame is a span nested in a table text; bg marks x-bg.
	tableSpanFrame struct {
		sealed
		bg bool
	}

	songwriterFrame struct {
		sealed
		buf strings.Builder
	}

	agentFrame struct {
		sealed
		id string
	}

	agentNameFrame struct {
		sealed
		id  string
		buf strings.Builder
	}

	// metaTextFrame collects the text of a generic ttm:* element.
	metaTextFrame struct {
		sealed
		key string
		buf strings.Builder
	}
)

// textSink is a metadata frame that accumulates character data.
type textSink interface {
	frame
	appendText(s string)
}

func (f *songwriterFrame) appendText(s string) { f.buf.WriteString(s) }
func (f *agentNameFrame) appendText(s string)  { f.buf.WriteString(s) }
func (f *metaTextFrame) appendText(s string)   { f.buf.WriteString(s) }

// tableEntry is one line of an out-of-band translation table.
type tableEntry struct {
	text   string
	bgText string
	lang   string
}

func inSpace(n xml.Name, prefix string) bool {
	if prefix == "" {
		return n.Space == ""
	}
	return n.Space == prefix || n.Space == knownPrefixes[prefix]
}

// attrValue returns the first attribute matching one of the given
// "prefix:local" or "local" names.
func attrValue(attrs []xml.Attr, names ...string) (string, bool) {
	for _, name := range names {
		prefix, local, ok := strings.Cut(name, ":")
		if !ok {
			prefix, local = "", name
		}
		for _, a := range attrs {
			if a.Name.Local == local && inSpace(a.Name, prefix) {
				return a.Value, true
			}
		}
	}
	return "", false
}

func isSpace(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}
