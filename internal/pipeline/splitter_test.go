package pipeline

import (
	"reflect"
	"testing"

	"ttml2amll/internal/lyric"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello world", []string{"Hello", " ", "world"}},
		{"你好,世界123", []string{"你", "好", ",", "世", "界", "123"}},
		{"don't", []string{"don", "'", "t"}},
		{"", nil},
		{"あい", []string{"あ", "い"}},
	}

	for _, tt := range tests {
		var got []string
		for _, tok := range tokenize(tt.in) {
			got = append(got, tok.text)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitLine(t *testing.T) {
	got := splitLine("你好 world", 0, 1000, 0.5)

	want := []lyric.Syllable{
		{Text: "你", StartMs: 0, EndMs: 143},
		{Text: "好", StartMs: 143, EndMs: 286, EndsWithSpace: true},
		{Text: "world", StartMs: 286, EndMs: 1000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d syllables, want %d", len(got), len(want))
	}
	for i := range want {
		g := got[i]
		if g.Text != want[i].Text || g.StartMs != want[i].StartMs || g.EndMs != want[i].EndMs || g.EndsWithSpace != want[i].EndsWithSpace {
			t.Errorf("syllable %d = %+v, want %+v", i, g, want[i])
		}
		if g.DurationMs == nil || *g.DurationMs != g.EndMs-g.StartMs {
			t.Errorf("syllable %d duration = %v, want %d", i, g.DurationMs, g.EndMs-g.StartMs)
		}
	}
}

func TestSplitLine_Conserves(t *testing.T) {
	texts := []string{
		"摘一颗苹果",
		"Hello, world!",
		"trailing space ",
		"数字 2024 年",
		"「引号」",
	}
	for _, text := range texts {
		got := splitLine(text, 1234, 4321, 0.5)
		if len(got) == 0 {
			t.Errorf("splitLine(%q) returned nothing", text)
			continue
		}
		if got[0].StartMs != 1234 {
			t.Errorf("splitLine(%q) starts at %d, want 1234", text, got[0].StartMs)
		}
		if last := got[len(got)-1]; last.EndMs != 4321 {
			t.Errorf("splitLine(%q) ends at %d, want 4321", text, last.EndMs)
		}
		for i := 1; i < len(got); i++ {
			if got[i].StartMs != got[i-1].EndMs {
				t.Errorf("splitLine(%q) gap before %q", text, got[i].Text)
			}
			if got[i].EndMs < got[i].StartMs {
				t.Errorf("splitLine(%q) inverted syllable %q", text, got[i].Text)
			}
		}
	}
}

func TestSplitLine_PunctuationWeight(t *testing.T) {
	if got := splitLine("...", 0, 1000, 0); got != nil {
		t.Errorf("zero-weight punctuation split into %v", got)
	}

	got := splitLine("a.", 0, 1000, 1)
	if len(got) != 2 || got[0].EndMs != 500 {
		t.Errorf("split = %+v, want two halves", got)
	}
}

func TestSplitWords(t *testing.T) {
	lineMode := textLine("ab cd")
	lineMode.StartMs, lineMode.EndMs = 0, 1000
	lineMode.Syllables = []lyric.Syllable{{Text: "ab cd", StartMs: 0, EndMs: 1000}}

	wordMode := textLine("ab cd")
	wordMode.StartMs, wordMode.EndMs = 0, 1000
	wordMode.Syllables = []lyric.Syllable{{Text: "ab", EndsWithSpace: true}, {Text: "cd"}}

	noDuration := textLine("ab cd")
	noDuration.StartMs, noDuration.EndMs = 1000, 1000

	noText := lyric.Line{StartMs: 0, EndMs: 1000, Syllables: []lyric.Syllable{{Text: "ab cd"}}}

	blank := textLine("   ")
	blank.StartMs, blank.EndMs = 0, 1000

	lines := []lyric.Line{lineMode, wordMode, noDuration, noText, blank}
	SplitWords(lines, 0.5)

	if got := syllableTexts(lines[0].Syllables); !reflect.DeepEqual(got, []string{"ab", "cd"}) {
		t.Errorf("line-timed syllables = %v, want [ab cd]", got)
	}
	if !lines[0].Syllables[0].EndsWithSpace {
		t.Error("first word lost its trailing space")
	}
	if lines[0].Syllables[1].EndMs != 1000 {
		t.Errorf("last word ends at %d, want 1000", lines[0].Syllables[1].EndMs)
	}

	if len(lines[1].Syllables) != 2 || lines[1].Syllables[0].EndMs != 0 {
		t.Errorf("word-timed line was resplit: %+v", lines[1].Syllables)
	}
	if len(lines[2].Syllables) != 0 {
		t.Errorf("zero-length line was split: %+v", lines[2].Syllables)
	}
	if len(lines[3].Syllables) != 1 {
		t.Errorf("line without text was split: %+v", lines[3].Syllables)
	}
	if len(lines[4].Syllables) != 0 {
		t.Errorf("blank line was split: %+v", lines[4].Syllables)
	}
}
