package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConversionMode names a Han script conversion table.
type ConversionMode string

const (
	ConversionOff  ConversionMode = "off"
	ConversionS2T  ConversionMode = "s2t"
	ConversionT2S  ConversionMode = "t2s"
	ConversionS2TW ConversionMode = "s2tw"
	ConversionTW2S ConversionMode = "tw2s"
	ConversionS2HK ConversionMode = "s2hk"
	ConversionHK2S ConversionMode = "hk2s"
)

var conversionModes = map[ConversionMode]bool{
	ConversionS2T:  true,
	ConversionT2S:  true,
	ConversionS2TW: true,
	ConversionTW2S: true,
	ConversionS2HK: true,
	ConversionHK2S: true,
}

// Enabled reports whether m names a conversion table. Unknown names and
// "off" disable conversion.
func (m ConversionMode) Enabled() bool {
	return conversionModes[m]
}

// StripperOptions controls removal of credit and copyright lines.
// Nil Keywords or RegexPatterns select the built-in lists; an empty
// non-nil list disables that rule.
type StripperOptions struct {
	Enabled              bool     `yaml:"enabled" json:"enabled"`
	Keywords             []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	KeywordCaseSensitive bool     `yaml:"keywordCaseSensitive" json:"keywordCaseSensitive"`
	EnableRegexStripping bool     `yaml:"enableRegexStripping" json:"enableRegexStripping"`
	RegexPatterns        []string `yaml:"regexPatterns,omitempty" json:"regexPatterns,omitempty"`
	RegexCaseSensitive   bool     `yaml:"regexCaseSensitive" json:"regexCaseSensitive"`
}

// SmoothingOptions tunes syllable duration smoothing.
type SmoothingOptions struct {
	Factor              float64 `yaml:"factor" json:"factor"`
	DurationThresholdMs int64   `yaml:"durationThresholdMs" json:"durationThresholdMs"`
	GapThresholdMs      int64   `yaml:"gapThresholdMs" json:"gapThresholdMs"`
	Iterations          int     `yaml:"iterations" json:"iterations"`
}

// DefaultSmoothing returns the smoothing parameters used when a config
// enables smoothing without tuning it.
func DefaultSmoothing() SmoothingOptions {
	return SmoothingOptions{
		Factor:              0.15,
		DurationThresholdMs: 50,
		GapThresholdMs:      100,
		Iterations:          5,
	}
}

// UnmarshalYAML fills keys missing from the document with DefaultSmoothing.
func (s *SmoothingOptions) UnmarshalYAML(node *yaml.Node) error {
	type plain SmoothingOptions
	p := plain(DefaultSmoothing())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = SmoothingOptions(p)
	return nil
}

// UnmarshalJSON fills keys missing from the document with DefaultSmoothing.
func (s *SmoothingOptions) UnmarshalJSON(data []byte) error {
	type plain SmoothingOptions
	p := plain(DefaultSmoothing())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = SmoothingOptions(p)
	return nil
}

// AgentOptions controls singer recognition from line prefixes.
type AgentOptions struct {
	Enabled           bool   `yaml:"enabled" json:"enabled"`
	CustomPattern     string `yaml:"customPattern,omitempty" json:"customPattern,omitempty"`
	CaseSensitive     bool   `yaml:"caseSensitive" json:"caseSensitive"`
	InheritAgent      bool   `yaml:"inheritAgent" json:"inheritAgent"`
	RemoveMarkerLines bool   `yaml:"removeMarkerLines" json:"removeMarkerLines"`
}

// DefaultLanguages are applied to untagged text while parsing.
type DefaultLanguages struct {
	Main         string `yaml:"main,omitempty" json:"main,omitempty"`
	Translation  string `yaml:"translation,omitempty" json:"translation,omitempty"`
	Romanization string `yaml:"romanization,omitempty" json:"romanization,omitempty"`
}

// ChainOptions holds the parameters of one parse-and-process run.
type ChainOptions struct {
	ApplyAutoSplitting    bool              `yaml:"applyAutoSplitting" json:"applyAutoSplitting"`
	PunctuationWeight     float64           `yaml:"punctuationWeight" json:"punctuationWeight"`
	ChineseConversionMode ConversionMode    `yaml:"chineseConversionMode" json:"chineseConversionMode"`
	MetadataStripper      StripperOptions   `yaml:"metadataStripper" json:"metadataStripper"`
	Smoothing             *SmoothingOptions `yaml:"smoothing,omitempty" json:"smoothing,omitempty"`
	AgentRecognizer       AgentOptions      `yaml:"agentRecognizer" json:"agentRecognizer"`
	DefaultLanguages      DefaultLanguages  `yaml:"defaultLanguages" json:"defaultLanguages"`
}

// Config holds the full application configuration.
type Config struct {
	ChainOptions `yaml:",inline"`

	MaxConcurrent int    `yaml:"maxConcurrent" json:"maxConcurrent"`
	OutputFormat  string `yaml:"outputFormat" json:"outputFormat"`

	// Remote inputs.
	MaxRetries      int `yaml:"maxRetries" json:"maxRetries"`
	RateLimitPerMin int `yaml:"rateLimitPerMin" json:"rateLimitPerMin"`
}

// DefaultChain returns the processing defaults.
func DefaultChain() ChainOptions {
	return ChainOptions{
		PunctuationWeight:     0.5,
		ChineseConversionMode: ConversionOff,
		MetadataStripper: StripperOptions{
			Enabled:              true,
			EnableRegexStripping: true,
		},
		AgentRecognizer: AgentOptions{
			Enabled:           true,
			CaseSensitive:     true,
			InheritAgent:      true,
			RemoveMarkerLines: true,
		},
	}
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		ChainOptions:    DefaultChain(),
		MaxConcurrent:   4,
		OutputFormat:    "json",
		MaxRetries:      3,
		RateLimitPerMin: 60,
	}
}

// Load reads a YAML or JSON config file over the defaults. Keys absent
// from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cfg and reports problems that the pipeline tolerates as
// warnings. The returned error is reserved for values no run can use.
func (c *Config) Validate() ([]string, error) {
	var warnings []string

	mode := c.ChineseConversionMode
	if mode != "" && mode != ConversionOff && !mode.Enabled() {
		warnings = append(warnings, fmt.Sprintf("unknown chineseConversionMode %q; conversion disabled", mode))
	}
	if mode.Enabled() && c.DefaultLanguages.Main != "" && !IsChinese(c.DefaultLanguages.Main) {
		warnings = append(warnings, fmt.Sprintf("chineseConversionMode %q set for non-Chinese main language %q", mode, c.DefaultLanguages.Main))
	}
	if c.PunctuationWeight < 0 {
		return warnings, fmt.Errorf("punctuationWeight must not be negative, got %g", c.PunctuationWeight)
	}
	for _, tag := range []string{c.DefaultLanguages.Main, c.DefaultLanguages.Translation, c.DefaultLanguages.Romanization} {
		if tag != "" && !ValidLanguageTag(tag) {
			warnings = append(warnings, fmt.Sprintf("malformed language tag %q", tag))
		}
	}

	if s := c.Smoothing; s != nil {
		if s.Factor < 0 || s.Factor > 0.5 {
			warnings = append(warnings, fmt.Sprintf("smoothing factor %g outside [0, 0.5]; clamped", s.Factor))
		}
		if s.Iterations < 0 || s.DurationThresholdMs < 0 || s.GapThresholdMs < 0 {
			return warnings, fmt.Errorf("smoothing thresholds and iterations must not be negative")
		}
	}

	if c.MaxConcurrent < 1 {
		return warnings, fmt.Errorf("maxConcurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if c.MaxRetries < 1 {
		return warnings, fmt.Errorf("maxRetries must be at least 1, got %d", c.MaxRetries)
	}
	if c.RateLimitPerMin < 1 {
		return warnings, fmt.Errorf("rateLimitPerMin must be at least 1, got %d", c.RateLimitPerMin)
	}
	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return warnings, fmt.Errorf("unsupported output format %q (want json or yaml)", c.OutputFormat)
	}
	return warnings, nil
}
