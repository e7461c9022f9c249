package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.MetadataStripper.Enabled || !cfg.MetadataStripper.EnableRegexStripping {
		t.Error("metadata stripper should be enabled with regex stripping by default")
	}
	if cfg.MetadataStripper.Keywords != nil || cfg.MetadataStripper.RegexPatterns != nil {
		t.Error("default stripper lists should be nil so built-in lists apply")
	}
	a := cfg.AgentRecognizer
	if !a.Enabled || !a.CaseSensitive || !a.InheritAgent || !a.RemoveMarkerLines {
		t.Errorf("agent recognizer defaults = %+v, want all enabled", a)
	}
	if cfg.PunctuationWeight != 0.5 {
		t.Errorf("PunctuationWeight = %g, want 0.5", cfg.PunctuationWeight)
	}
	if cfg.Smoothing != nil {
		t.Error("smoothing should be off by default")
	}
	if cfg.ChineseConversionMode.Enabled() {
		t.Error("conversion should be off by default")
	}
	if _, err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoad_YAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, "ttml2amll.yaml", `
applyAutoSplitting: true
chineseConversionMode: s2t
metadataStripper:
  keywords: ["作词"]
smoothing:
  factor: 0.3
maxConcurrent: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.ApplyAutoSplitting {
		t.Error("applyAutoSplitting not loaded")
	}
	if cfg.ChineseConversionMode != ConversionS2T {
		t.Errorf("mode = %q, want s2t", cfg.ChineseConversionMode)
	}
	if len(cfg.MetadataStripper.Keywords) != 1 || cfg.MetadataStripper.Keywords[0] != "作词" {
		t.Errorf("keywords = %v", cfg.MetadataStripper.Keywords)
	}
	if !cfg.MetadataStripper.Enabled || !cfg.MetadataStripper.EnableRegexStripping {
		t.Error("absent stripper keys lost their defaults")
	}
	if !cfg.AgentRecognizer.Enabled {
		t.Error("absent agentRecognizer section lost its defaults")
	}
	if cfg.PunctuationWeight != 0.5 {
		t.Errorf("PunctuationWeight = %g, want default 0.5", cfg.PunctuationWeight)
	}
	if cfg.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", cfg.MaxConcurrent)
	}

	want := DefaultSmoothing()
	want.Factor = 0.3
	if cfg.Smoothing == nil || *cfg.Smoothing != want {
		t.Errorf("smoothing = %+v, want %+v", cfg.Smoothing, want)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "opts.json", `{"agentRecognizer":{"enabled":false},"smoothing":{}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AgentRecognizer.Enabled {
		t.Error("agentRecognizer.enabled = true, want false")
	}
	if cfg.Smoothing == nil || *cfg.Smoothing != DefaultSmoothing() {
		t.Errorf("smoothing = %+v, want defaults", cfg.Smoothing)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := writeFile(t, "bad.yaml", "maxConcurrent: [1, 2\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("OutputFormat = %q, want json", cfg.OutputFormat)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TTML2AMLL_AUTO_SPLIT", "yes")
	t.Setenv("TTML2AMLL_CONVERSION_MODE", "T2S")
	t.Setenv("TTML2AMLL_SMOOTHING", "on")
	t.Setenv("TTML2AMLL_MAX_CONCURRENT", "8")
	t.Setenv("TTML2AMLL_OUTPUT_FORMAT", "YAML")
	t.Setenv("TTML2AMLL_RATE_LIMIT", "30")

	cfg := Default()
	if err := cfg.ApplyEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if !cfg.ApplyAutoSplitting {
		t.Error("AUTO_SPLIT not applied")
	}
	if cfg.ChineseConversionMode != ConversionT2S {
		t.Errorf("mode = %q, want t2s", cfg.ChineseConversionMode)
	}
	if cfg.Smoothing == nil || *cfg.Smoothing != DefaultSmoothing() {
		t.Errorf("smoothing = %+v, want defaults", cfg.Smoothing)
	}
	if cfg.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", cfg.MaxConcurrent)
	}
	if cfg.OutputFormat != "yaml" {
		t.Errorf("OutputFormat = %q, want yaml", cfg.OutputFormat)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Errorf("RateLimitPerMin = %d, want 30", cfg.RateLimitPerMin)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}

func TestApplyEnv_DotenvFile(t *testing.T) {
	path := writeFile(t, ".env", "TTML2AMLL_TRANSLATION_LANG=en\nTTML2AMLL_RECOGNIZE_AGENTS=false\n")
	t.Setenv("TTML2AMLL_TRANSLATION_LANG", "")
	t.Setenv("TTML2AMLL_RECOGNIZE_AGENTS", "")
	os.Unsetenv("TTML2AMLL_TRANSLATION_LANG")
	os.Unsetenv("TTML2AMLL_RECOGNIZE_AGENTS")

	cfg := Default()
	if err := cfg.ApplyEnv(path); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.DefaultLanguages.Translation != "en" {
		t.Errorf("translation lang = %q, want en", cfg.DefaultLanguages.Translation)
	}
	if cfg.AgentRecognizer.Enabled {
		t.Error("RECOGNIZE_AGENTS=false not applied")
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	t.Setenv("TTML2AMLL_MAX_CONCURRENT", "many")
	cfg := Default()
	err := cfg.ApplyEnv(filepath.Join(t.TempDir(), "absent.env"))
	if err == nil || !strings.Contains(err.Error(), "TTML2AMLL_MAX_CONCURRENT") {
		t.Errorf("error = %v, want one naming TTML2AMLL_MAX_CONCURRENT", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		warnings int
		wantErr  bool
	}{
		{"defaults", func(*Config) {}, 0, false},
		{"unknown mode", func(c *Config) { c.ChineseConversionMode = "s2j" }, 1, false},
		{"conversion for japanese", func(c *Config) {
			c.ChineseConversionMode = ConversionS2T
			c.DefaultLanguages.Main = "ja"
		}, 1, false},
		{"conversion for chinese", func(c *Config) {
			c.ChineseConversionMode = ConversionS2T
			c.DefaultLanguages.Main = "zh-Hans"
		}, 0, false},
		{"bad tag", func(c *Config) { c.DefaultLanguages.Translation = "not a tag" }, 1, false},
		{"factor clamped", func(c *Config) {
			s := DefaultSmoothing()
			s.Factor = 0.9
			c.Smoothing = &s
		}, 1, false},
		{"negative iterations", func(c *Config) {
			s := DefaultSmoothing()
			s.Iterations = -1
			c.Smoothing = &s
		}, 0, true},
		{"negative punctuation weight", func(c *Config) { c.PunctuationWeight = -0.5 }, 0, true},
		{"zero punctuation weight", func(c *Config) { c.PunctuationWeight = 0 }, 0, false},
		{"zero workers", func(c *Config) { c.MaxConcurrent = 0 }, 0, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, 0, true},
		{"zero rate", func(c *Config) { c.RateLimitPerMin = 0 }, 0, true},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			warnings, err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(warnings) != tt.warnings {
				t.Errorf("Validate() warnings = %v, want %d", warnings, tt.warnings)
			}
		})
	}
}

func TestLanguageTags(t *testing.T) {
	tests := []struct {
		tag     string
		valid   bool
		chinese bool
	}{
		{"zh-Hans", true, true},
		{"zh-Hant-TW", true, true},
		{"yue", true, true},
		{"ja-Latn", true, false},
		{"en", true, false},
		{"es-419", true, false},
		{"zh-CN", true, true},
		{"1en", false, false},
		{"english-language", false, false},
		{"not a tag", false, false},
	}
	for _, tt := range tests {
		if got := ValidLanguageTag(tt.tag); got != tt.valid {
			t.Errorf("ValidLanguageTag(%q) = %v, want %v", tt.tag, got, tt.valid)
		}
		if got := IsChinese(tt.tag); got != tt.chinese {
			t.Errorf("IsChinese(%q) = %v, want %v", tt.tag, got, tt.chinese)
		}
	}
}
