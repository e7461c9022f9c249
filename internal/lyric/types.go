package lyric

// DefaultAgent is the singer id given to a paragraph that names none.
const DefaultAgent = "v1"

// ChorusAgent is the reserved singer id for lines sung by everyone.
const ChorusAgent = "v1000"

// Syllable is one timed unit of sung text.
type Syllable struct {
	Text       string `json:"text" yaml:"text"`
	StartMs    int64  `json:"startMs" yaml:"startMs"`
	EndMs      int64  `json:"endMs" yaml:"endMs"`
	DurationMs *int64 `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
	// EndsWithSpace records a visual word gap after the syllable.
	EndsWithSpace bool `json:"endsWithSpace,omitempty" yaml:"endsWithSpace,omitempty"`
}

// TranslationEntry is one translated rendering of a line.
type TranslationEntry struct {
	Text string `json:"text" yaml:"text"`
	Lang string `json:"lang,omitempty" yaml:"lang,omitempty"`
}

// RomanizationEntry is one transliteration of a line into Latin script.
type RomanizationEntry struct {
	Text   string `json:"text" yaml:"text"`
	Lang   string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
}

// BackgroundSection holds backing vocals nested inside a line.
type BackgroundSection struct {
	StartMs       int64               `json:"startMs" yaml:"startMs"`
	EndMs         int64               `json:"endMs" yaml:"endMs"`
	Syllables     []Syllable          `json:"syllables,omitempty" yaml:"syllables,omitempty"`
	Translations  []TranslationEntry  `json:"translations,omitempty" yaml:"translations,omitempty"`
	Romanizations []RomanizationEntry `json:"romanizations,omitempty" yaml:"romanizations,omitempty"`
}

// Empty reports whether the section carries nothing worth keeping.
func (b *BackgroundSection) Empty() bool {
	return len(b.Syllables) == 0 && len(b.Translations) == 0 && len(b.Romanizations) == 0
}

// Line is one lyric line. Text is set in line-timed documents and
// assembled from syllables in word-timed ones; both may be present.
type Line struct {
	StartMs       int64               `json:"startMs" yaml:"startMs"`
	EndMs         int64               `json:"endMs" yaml:"endMs"`
	Text          *string             `json:"text,omitempty" yaml:"text,omitempty"`
	Syllables     []Syllable          `json:"syllables,omitempty" yaml:"syllables,omitempty"`
	Translations  []TranslationEntry  `json:"translations,omitempty" yaml:"translations,omitempty"`
	Romanizations []RomanizationEntry `json:"romanizations,omitempty" yaml:"romanizations,omitempty"`
	Agent         string              `json:"agent,omitempty" yaml:"agent,omitempty"`
	Background    *BackgroundSection  `json:"background,omitempty" yaml:"background,omitempty"`
	SongPart      string              `json:"songPart,omitempty" yaml:"songPart,omitempty"`
	// Key correlates the line with out-of-band translation tables (e.g. "L1").
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Agent is a singer declared in the document head.
type Agent struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

// Document is the result of parsing one TTML source.
type Document struct {
	Lines     []Line
	Metadata  Metadata
	Agents    []Agent
	LineTimed bool
	Warnings  []string
}

// Duration returns end - start, or zero when the range is inverted.
func Duration(startMs, endMs int64) int64 {
	if endMs < startMs {
		return 0
	}
	return endMs - startMs
}

// DurationPtr is Duration boxed for Syllable.DurationMs.
func DurationPtr(startMs, endMs int64) *int64 {
	d := Duration(startMs, endMs)
	return &d
}
