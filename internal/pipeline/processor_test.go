package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"ttml2amll/internal/config"
	"ttml2amll/internal/ttml"
)

func words(l Line) []string {
	out := make([]string, len(l.Words))
	for i, w := range l.Words {
		out[i] = w.Word
	}
	return out
}

func TestProcess_Duet(t *testing.T) {
	const src = `<tt xmlns="http://www.w3.org/ns/ttml" xmlns:ttm="http://www.w3.org/ns/ttml#metadata">
<head><metadata><ttm:agent type="person" xml:id="v1"/><ttm:agent type="person" xml:id="v2"/><ttm:title>Duet</ttm:title></metadata></head>
<body><div>
<p begin="1s" end="3s" ttm:agent="v1"><span begin="1s" end="2s">Hello</span> <span begin="2s" end="3s">there</span><span ttm:role="x-translation" xml:lang="zh">你好</span><span ttm:role="x-translation" xml:lang="ja">こんにちは</span></p>
<p begin="3s" end="6s" ttm:agent="v2"><span begin="3s" end="5s">Hi</span><span ttm:role="x-bg"><span begin="5s" end="6s">(yeah)</span></span></p>
</div></body></tt>`

	got, err := Process(src, nil, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(got.Lines) != 3 {
		t.Fatalf("expected 3 display lines, got %d", len(got.Lines))
	}

	first := got.Lines[0]
	if want := []string{"Hello ", "there"}; !reflect.DeepEqual(words(first), want) {
		t.Errorf("words = %q, want %q", words(first), want)
	}
	if first.TranslatedLyric != "你好 / こんにちは" {
		t.Errorf("translation = %q, want %q", first.TranslatedLyric, "你好 / こんにちは")
	}
	if first.IsDuet || first.IsBG {
		t.Errorf("first line isDuet=%v isBG=%v, want false false", first.IsDuet, first.IsBG)
	}
	if first.StartTime != 1000 || first.EndTime != 3000 {
		t.Errorf("first line = [%d, %d], want [1000, 3000]", first.StartTime, first.EndTime)
	}

	if !got.Lines[1].IsDuet || got.Lines[1].IsBG {
		t.Errorf("second line isDuet=%v isBG=%v, want true false", got.Lines[1].IsDuet, got.Lines[1].IsBG)
	}

	bg := got.Lines[2]
	if !bg.IsBG || !bg.IsDuet {
		t.Errorf("background line isBG=%v isDuet=%v, want true true", bg.IsBG, bg.IsDuet)
	}
	if want := []string{"yeah"}; !reflect.DeepEqual(words(bg), want) {
		t.Errorf("background words = %q, want %q", words(bg), want)
	}

	found := false
	for _, m := range got.Metadata {
		if m.Key == "title" {
			found = reflect.DeepEqual(m.Values, []string{"Duet"})
		}
	}
	if !found {
		t.Errorf("metadata = %+v, want title [Duet]", got.Metadata)
	}
}

func TestProcess_RecognizesAgents(t *testing.T) {
	const src = `<tt><body><div>
<p begin="0s" end="2s">汪：摘一颗苹果</p>
<p begin="2s" end="4s">等你看我从门前过</p>
<p begin="4s" end="6s">BY2：像夏天的可乐</p>
</div></body></tt>`

	opts := config.DefaultChain()
	opts.ApplyAutoSplitting = true
	got, err := Process(src, &opts, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(got.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got.Lines))
	}
	if want := []string{"摘", "一", "颗", "苹", "果"}; !reflect.DeepEqual(words(got.Lines[0]), want) {
		t.Errorf("first line words = %q, want %q", words(got.Lines[0]), want)
	}
	if w := got.Lines[0].Words[0]; w.StartTime != 0 || w.EndTime != 400 {
		t.Errorf("first word = [%d, %d], want [0, 400]", w.StartTime, w.EndTime)
	}
	if last := got.Lines[0].Words[4]; last.EndTime != 2000 {
		t.Errorf("last word ends at %d, want 2000", last.EndTime)
	}

	sides := []bool{got.Lines[0].IsDuet, got.Lines[1].IsDuet, got.Lines[2].IsDuet}
	if want := []bool{false, false, true}; !reflect.DeepEqual(sides, want) {
		t.Errorf("isDuet = %v, want %v", sides, want)
	}
	if got.Lines[2].Words[0].Word != "像" {
		t.Errorf("third line starts with %q, want the prefix removed", got.Lines[2].Words[0].Word)
	}
}

func TestProcess_StripsCredits(t *testing.T) {
	const src = `<tt><body><div>
<p begin="0s" end="1s"><span begin="0s" end="1s">作词：某人</span></p>
<p begin="1s" end="2s"><span begin="1s" end="2s">歌词</span></p>
</div></body></tt>`

	got, err := Process(src, nil, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got.Lines) != 1 || words(got.Lines[0])[0] != "歌词" {
		t.Errorf("lines = %+v, want only the lyric line", got.Lines)
	}

	opts := config.DefaultChain()
	opts.MetadataStripper.Enabled = false
	opts.AgentRecognizer.Enabled = false
	got, err = Process(src, &opts, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got.Lines) != 2 {
		t.Errorf("got %d lines with stripping disabled, want 2", len(got.Lines))
	}
}

func TestProcess_ConvertsScript(t *testing.T) {
	const src = `<tt><body><div><p begin="0s" end="1s"><span begin="0s" end="1s">汉语</span><span ttm:role="x-roman">han yu</span></p></div></body></tt>`

	var builds atomic.Int32
	caches := &Caches{Regex: NewRegexCache(), Converter: fakeCache(&builds)}
	opts := config.DefaultChain()
	opts.ChineseConversionMode = config.ConversionS2T

	for i := 0; i < 2; i++ {
		got, err := Process(src, &opts, caches)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if w := got.Lines[0].Words[0].Word; w != "漢語" {
			t.Errorf("word = %q, want %q", w, "漢語")
		}
		if r := got.Lines[0].RomanLyric; r != "han yu" {
			t.Errorf("romanization = %q, want %q", r, "han yu")
		}
	}
	if n := builds.Load(); n != 1 {
		t.Errorf("converter built %d times across calls, want 1", n)
	}
}

func TestProcess_Smoothing(t *testing.T) {
	const src = `<tt><body><div><p begin="0s" end="1s"><span begin="0" end="0.1">a</span><span begin="0.1" end="0.4">b</span><span begin="0.4" end="0.5">c</span><span begin="0.5" end="0.8">d</span><span begin="0.8" end="0.9">e</span></p></div></body></tt>`

	opts := config.DefaultChain()
	opts.Smoothing = &config.SmoothingOptions{Factor: 0.3, DurationThresholdMs: 1000, GapThresholdMs: 100, Iterations: 5}
	got, err := Process(src, &opts, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	ws := got.Lines[0].Words
	if len(ws) != 5 || ws[0].StartTime != 0 || ws[4].EndTime != 900 {
		t.Fatalf("words = %+v, want five words spanning [0, 900]", ws)
	}
	if d := ws[1].EndTime - ws[1].StartTime; d >= 300 {
		t.Errorf("second word lasts %dms, want it shortened from 300", d)
	}
}

func TestProcess_EmptyBody(t *testing.T) {
	got, err := Process(`<tt><body></body></tt>`, nil, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(got.Lines))
	}
}

func TestProcess_ParseError(t *testing.T) {
	_, err := Process(`<tt><body><p begin="nonsense" end="1s">x</p></body></tt>`, nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ttml.ErrInvalidTime) {
		t.Errorf("error = %v, want ErrInvalidTime", err)
	}
	if !strings.HasPrefix(err.Error(), "parse ttml:") {
		t.Errorf("error = %q, want a parse ttml prefix", err)
	}
}
