package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"ttml2amll/internal/config"
	"ttml2amll/internal/pipeline"
	"ttml2amll/internal/worker"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <input>...",
	Short: "Convert TTML lyric files to AMLL lines",
	Long: `Convert TTML lyric documents into AMLL player lines. Inputs may be local
files, http(s) URLs or "-" for standard input. Each input is written as
<name>.json (or .yaml) next to the input, into --output-dir, or to standard
output for "-".

Settings are read from --config (YAML or JSON), then from TTML2AMLL_*
environment variables and a .env file, then from flags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

var (
	configPath string
	envFile    string
	outputDir  string
	format     string
	noAsync    bool

	maxConcurrent int
	maxRetries    int
	rateLimit     int

	// Processing flags.
	autoSplit         bool
	punctuationWeight float64
	convertMode       string
	stripMetadata     bool
	recognizeAgents   bool
	agentPattern      string
	smooth            bool
	mainLang          string
	translationLang   string
	romanizationLang  string
)

func init() {
	defaults := config.Default()

	processCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (YAML or JSON)")
	processCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file with TTML2AMLL_* settings")
	processCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default: next to each input)")
	processCmd.Flags().StringVar(&format, "format", defaults.OutputFormat, "output format: json, yaml")
	processCmd.Flags().BoolVar(&noAsync, "no-async", false, "process inputs one at a time")
	processCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", defaults.MaxConcurrent, "max inputs processed at once")
	processCmd.Flags().IntVar(&maxRetries, "max-retries", defaults.MaxRetries, "max attempts per remote input")
	processCmd.Flags().IntVar(&rateLimit, "rate-limit", defaults.RateLimitPerMin, "remote requests per minute")

	// Processing flags.
	processCmd.Flags().BoolVar(&autoSplit, "auto-split", defaults.ApplyAutoSplitting, "split line-timed lyrics into timed words")
	processCmd.Flags().Float64Var(&punctuationWeight, "punctuation-weight", defaults.PunctuationWeight, "time weight of a punctuation mark relative to a character")
	processCmd.Flags().StringVar(&convertMode, "convert", string(defaults.ChineseConversionMode), "Han script conversion: off, s2t, t2s, s2tw, tw2s, s2hk, hk2s")
	processCmd.Flags().BoolVar(&stripMetadata, "strip-metadata", defaults.MetadataStripper.Enabled, "remove credit and copyright lines")
	processCmd.Flags().BoolVar(&recognizeAgents, "recognize-agents", defaults.AgentRecognizer.Enabled, "read singer names from line prefixes")
	processCmd.Flags().StringVar(&agentPattern, "agent-pattern", "", "custom singer prefix pattern")
	processCmd.Flags().BoolVar(&smooth, "smooth", false, "smooth syllable durations")
	processCmd.Flags().StringVar(&mainLang, "main-lang", "", "language of untagged lyric text")
	processCmd.Flags().StringVar(&translationLang, "translation-lang", "", "language of untagged translations")
	processCmd.Flags().StringVar(&romanizationLang, "romanization-lang", "", "language of untagged romanizations")

	rootCmd.AddCommand(processCmd)
	// config reports what process would run with.
	configCmd.Flags().AddFlagSet(processCmd.Flags())
}

// loadConfig builds the effective configuration: file, then environment,
// then the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.OutputFormat = strings.ToLower(format)
	}
	if flags.Changed("max-concurrent") {
		cfg.MaxConcurrent = maxConcurrent
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = maxRetries
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimitPerMin = rateLimit
	}
	if flags.Changed("auto-split") {
		cfg.ApplyAutoSplitting = autoSplit
	}
	if flags.Changed("punctuation-weight") {
		cfg.PunctuationWeight = punctuationWeight
	}
	if flags.Changed("convert") {
		cfg.ChineseConversionMode = config.ConversionMode(strings.ToLower(convertMode))
	}
	if flags.Changed("strip-metadata") {
		cfg.MetadataStripper.Enabled = stripMetadata
	}
	if flags.Changed("recognize-agents") {
		cfg.AgentRecognizer.Enabled = recognizeAgents
	}
	if flags.Changed("agent-pattern") {
		cfg.AgentRecognizer.CustomPattern = agentPattern
	}
	if flags.Changed("smooth") {
		if !smooth {
			cfg.Smoothing = nil
		} else if cfg.Smoothing == nil {
			s := config.DefaultSmoothing()
			cfg.Smoothing = &s
		}
	}
	if flags.Changed("main-lang") {
		cfg.DefaultLanguages.Main = mainLang
	}
	if flags.Changed("translation-lang") {
		cfg.DefaultLanguages.Translation = translationLang
	}
	if flags.Changed("romanization-lang") {
		cfg.DefaultLanguages.Romanization = romanizationLang
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		slog.Warn("config", "warning", w)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Setup signal handling for graceful cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := worker.Options{
		Inputs:          args,
		OutputDir:       outputDir,
		Format:          cfg.OutputFormat,
		NoAsync:         noAsync,
		MaxConcurrent:   cfg.MaxConcurrent,
		MaxRetries:      cfg.MaxRetries,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Chain:           &cfg.ChainOptions,
		Caches:          pipeline.NewCaches(),
	}

	results, err := worker.Run(ctx, opts)
	if err != nil {
		return err
	}

	if !quiet {
		slog.Info("done", "inputs", len(results))
	}
	return nil
}
