package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TTML2AMLL_"

// ApplyEnv loads the given dotenv files (".env" when none are named) and
// applies TTML2AMLL_* overrides to c. Missing dotenv files are ignored;
// variables already set in the process environment take precedence over
// dotenv values.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	var err error
	if c.ApplyAutoSplitting, err = envBool("AUTO_SPLIT", c.ApplyAutoSplitting); err != nil {
		return err
	}
	if c.PunctuationWeight, err = envFloat("PUNCTUATION_WEIGHT", c.PunctuationWeight); err != nil {
		return err
	}
	if v, ok := envString("CONVERSION_MODE"); ok {
		c.ChineseConversionMode = ConversionMode(strings.ToLower(v))
	}
	if c.MetadataStripper.Enabled, err = envBool("STRIP_METADATA", c.MetadataStripper.Enabled); err != nil {
		return err
	}
	if c.AgentRecognizer.Enabled, err = envBool("RECOGNIZE_AGENTS", c.AgentRecognizer.Enabled); err != nil {
		return err
	}
	if v, ok := envString("AGENT_PATTERN"); ok {
		c.AgentRecognizer.CustomPattern = v
	}

	smooth, err := envBool("SMOOTHING", c.Smoothing != nil)
	if err != nil {
		return err
	}
	switch {
	case smooth && c.Smoothing == nil:
		s := DefaultSmoothing()
		c.Smoothing = &s
	case !smooth:
		c.Smoothing = nil
	}

	if v, ok := envString("MAIN_LANG"); ok {
		c.DefaultLanguages.Main = v
	}
	if v, ok := envString("TRANSLATION_LANG"); ok {
		c.DefaultLanguages.Translation = v
	}
	if v, ok := envString("ROMANIZATION_LANG"); ok {
		c.DefaultLanguages.Romanization = v
	}

	if c.MaxConcurrent, err = envInt("MAX_CONCURRENT", c.MaxConcurrent); err != nil {
		return err
	}
	if c.MaxRetries, err = envInt("MAX_RETRIES", c.MaxRetries); err != nil {
		return err
	}
	if c.RateLimitPerMin, err = envInt("RATE_LIMIT", c.RateLimitPerMin); err != nil {
		return err
	}
	if v, ok := envString("OUTPUT_FORMAT"); ok {
		c.OutputFormat = strings.ToLower(v)
	}
	return nil
}

func envString(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + name))
	return v, v != ""
}

func envBool(name string, def bool) (bool, error) {
	v, ok := envString(name)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return def, fmt.Errorf("%s%s: invalid boolean %q", EnvPrefix, name, v)
}

func envInt(name string, def int) (int, error) {
	v, ok := envString(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	return n, nil
}

func envFloat(name string, def float64) (float64, error) {
	v, ok := envString(name)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
	}
	return f, nil
}
