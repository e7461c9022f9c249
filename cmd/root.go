package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	quiet     bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ttml2amll",
	Short: "Convert TTML lyrics into AMLL player lines",
	Long: `ttml2amll parses TTML lyric documents (Apple Music and AMLL flavors) and
turns them into display-ready player lines: credits are stripped, singers are
recognized, line-timed lyrics get word timing and Han script can be converted.`,
	// Processing failures are reported through the log, not with usage text.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		handler, err := newLogHandler(os.Stderr, logLevel(), logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

func logLevel() slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// newLogHandler builds the stderr handler. The json format suits batch runs
// whose logs are collected by other tools.
func newLogHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	}
	return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}
