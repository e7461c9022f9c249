package ttml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"ttml2amll/internal/lyric"
)

func (p *parser) startInMetadata(el xml.StartElement) {
	name := el.Name
	parent := p.top()

	switch {
	case name.Local == "meta":
		k, hasKey := attrValue(el.Attr, "key")
		v, hasValue := attrValue(el.Attr, "value")
		if hasKey && hasValue && k != "" {
			p.doc.Metadata.Add(k, v)
		}
		p.push(&passthroughFrame{})

	case name.Local == "iTunesMetadata":
		p.push(&itunesFrame{})

	case name.Local == "translations" || name.Local == "transliterations":
		if _, ok := parent.(*itunesFrame); !ok {
			p.push(&passthroughFrame{})
			return
		}
		kind := translationTable
		if name.Local == "transliterations" {
			kind = transliterationTable
		}
		p.push(&tableFrame{kind: kind})

	case name.Local == "translation" || name.Local == "transliteration":
		table, ok := parent.(*tableFrame)
		if !ok {
			p.push(&passthroughFrame{})
			return
		}
		lang, _ := attrValue(el.Attr, "xml:lang")
		p.push(&tableEntryFrame{kind: table.kind, lang: lang})

	case name.Local == "text":
		entry, ok := parent.(*tableEntryFrame)
		key, hasKey := attrValue(el.Attr, "for")
		if !ok || !hasKey {
			p.push(&passthroughFrame{})
			return
		}
		p.push(&tableTextFrame{kind: entry.kind, lang: entry.lang, key: key})

	case name.Local == "span" && p.inTableText():
		role, _ := attrValue(el.Attr, "ttm:role", "role")
		p.push(&tableSpanFrame{bg: parseRole(role) == roleBackground})

	case name.Local == "songwriters":
		if _, ok := parent.(*itunesFrame); !ok {
			p.push(&passthroughFrame{})
			return
		}
		p.push(&songwritersFrame{})

	case name.Local == "songwriter":
		if _, ok := parent.(*songwritersFrame); !ok {
			p.push(&passthroughFrame{})
			return
		}
		p.push(&songwriterFrame{})

	case name.Local == "agent" && inSpace(name, "ttm"):
		id, ok := p.declareAgent(el)
		if !ok {
			p.push(&passthroughFrame{})
			return
		}
		p.push(&agentFrame{id: id})

	case name.Local == "name" && inSpace(name, "ttm"):
		agent, ok := parent.(*agentFrame)
		if !ok {
			p.push(&passthroughFrame{})
			return
		}
		p.push(&agentNameFrame{id: agent.id})

	case inSpace(name, "ttm"):
		p.push(&metaTextFrame{key: name.Local})

	default:
		p.push(&passthroughFrame{})
	}
}

func (p *parser) inTableText() bool {
	return p.inside(func(f frame) bool {
		_, ok := f.(*tableTextFrame)
		return ok
	})
}

// declareAgent records a ttm:agent declaration. Declarations without an
// xml:id cannot be referenced and are skipped.
func (p *parser) declareAgent(el xml.StartElement) (string, bool) {
	id, ok := attrValue(el.Attr, "xml:id")
	if !ok || id == "" {
		return "", false
	}
	if p.ids[id] {
		p.warn("duplicate xml:id %q; the last declaration wins", id)
	}
	p.ids[id] = true

	typ, _ := attrValue(el.Attr, "type")
	if typ == "" {
		typ = "person"
	}
	p.doc.Metadata.Add("agent-type-"+id, typ)

	if i, seen := p.agents[id]; seen {
		p.doc.Agents[i].Type = typ
	} else {
		p.agents[id] = len(p.doc.Agents)
		p.doc.Agents = append(p.doc.Agents, lyric.Agent{ID: id, Type: typ})
	}
	return id, true
}

// metadataText delivers character data to the nearest collecting frame.
func (p *parser) metadataText(s string) {
	bg := false
	for i := len(p.stack) - 1; i >= 0; i-- {
		switch f := p.stack[i].(type) {
		case *tableSpanFrame:
			bg = bg || f.bg
		case *tableTextFrame:
			if bg {
				f.bg.WriteString(s)
			} else {
				f.main.WriteString(s)
			}
			return
		case textSink:
			f.appendText(s)
			return
		case *metadataFrame:
			return
		}
	}
}

func (p *parser) closeMetadata(f frame) {
	switch f := f.(type) {
	case *songwriterFrame:
		if name := strings.TrimSpace(f.buf.String()); name != "" {
			p.doc.Metadata.Add("songwriters", name)
		}

	case *agentNameFrame:
		name := strings.TrimSpace(f.buf.String())
		if name == "" {
			return
		}
		p.doc.Metadata.Add("agent", fmt.Sprintf("%s=%s", f.id, name))
		if i, ok := p.agents[f.id]; ok {
			p.doc.Agents[i].Name = name
		}

	case *metaTextFrame:
		if v := lyric.NormalizeWhitespace(f.buf.String()); v != "" {
			p.doc.Metadata.Add(f.key, v)
		}

	case *tableTextFrame:
		e := tableEntry{
			text:   lyric.NormalizeWhitespace(f.main.String()),
			bgText: lyric.NormalizeWhitespace(f.bg.String()),
			lang:   f.lang,
		}
		if e.text == "" && e.bgText == "" {
			return
		}
		if e.lang == "" {
			if f.kind == translationTable {
				e.lang = p.opts.DefaultLanguages.Translation
			} else {
				e.lang = p.opts.DefaultLanguages.Romanization
			}
		}
		p.tables[f.kind][f.key] = e
	}
}
