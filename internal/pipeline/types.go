package pipeline

// Word is one timed word of a display line.
type Word struct {
	StartTime int64  `json:"startTime" yaml:"startTime"`
	EndTime   int64  `json:"endTime" yaml:"endTime"`
	Word      string `json:"word" yaml:"word"`
}

// Line is one display line as consumed by the player.
type Line struct {
	Words           []Word `json:"words" yaml:"words"`
	TranslatedLyric string `json:"translatedLyric" yaml:"translatedLyric"`
	RomanLyric      string `json:"romanLyric" yaml:"romanLyric"`
	IsBG            bool   `json:"isBG" yaml:"isBG"`
	IsDuet          bool   `json:"isDuet" yaml:"isDuet"`
	StartTime       int64  `json:"startTime" yaml:"startTime"`
	EndTime         int64  `json:"endTime" yaml:"endTime"`
}

// MetadataEntry is one raw metadata key with all of its values.
type MetadataEntry struct {
	Key    string   `json:"key" yaml:"key"`
	Values []string `json:"values" yaml:"values"`
}

// TTMLLyric is the display-ready result of Process.
type TTMLLyric struct {
	Lines    []Line          `json:"lines" yaml:"lines"`
	Metadata []MetadataEntry `json:"metadata" yaml:"metadata"`
	Warnings []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Separator joins several translations or romanizations of one line.
const Separator = " / "
