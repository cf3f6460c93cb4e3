package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/ocrkit/config"
	"github.com/wudi/ocrkit/correct"
	"github.com/wudi/ocrkit/dictionary"
	"github.com/wudi/ocrkit/fuzzy"
	"github.com/wudi/ocrkit/langmodel"
	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/observability/charmlog"
	"github.com/wudi/ocrkit/ocr"
	"github.com/wudi/ocrkit/ocr/ocrspace"
	"github.com/wudi/ocrkit/ocr/tesseract"
	"github.com/wudi/ocrkit/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ocrkit",
		Short: "OCR text extraction and correction toolkit",
		Long: `ocrkit extracts text from scanned documents and repairs common OCR
recognition errors with a multi-stage correction pipeline: character
confusion patterns, dictionary spell checking, fuzzy vocabulary matching,
and optional context-based prediction.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newCorrectCmd(),
		newExtractCmd(),
		newCapabilitiesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": service.Version})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ocrkit version %s\n", service.Version)
		},
	}
}

// loadConfig reads the configuration named by --config, falling back to
// defaults plus the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger builds the structured logger the configuration asks for. A
// log file that cannot be opened falls back to stderr.
func newLogger(cfg *config.Config) observability.Logger {
	opts := charmlog.Options{Level: cfg.Log.Level, Prefix: "ocrkit"}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			return charmlog.New(f, opts)
		}
		fmt.Fprintf(os.Stderr, "cannot open log file %s: %v, logging to stderr\n", cfg.Log.File, err)
	}
	return charmlog.NewStderr(opts)
}

// buildEngine maps the configured provider to an OCR engine. Provider
// "none" yields a nil engine.
func buildEngine(cfg *config.Config) (ocr.Engine, error) {
	switch cfg.OCR.Provider {
	case "tesseract":
		return tesseract.NewEngine(), nil
	case "ocrspace":
		var opts []ocrspace.Option
		if cfg.OCR.OCRSpace.Endpoint != "" {
			opts = append(opts, ocrspace.WithEndpoint(cfg.OCR.OCRSpace.Endpoint))
		}
		if cfg.OCR.OCRSpace.Language != "" {
			opts = append(opts, ocrspace.WithLanguage(cfg.OCR.OCRSpace.Language))
		}
		return ocrspace.NewEngine(cfg.OCR.OCRSpace.APIKey, opts...), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown OCR provider %q", cfg.OCR.Provider)
	}
}

// newPipeline assembles a standalone correction pipeline for the CLI
// commands that do not go through the HTTP server.
func newPipeline(cfg *config.Config, log observability.Logger) (*correct.Pipeline, error) {
	var dict *dictionary.Dict
	var err error
	if cfg.Correct.DictionaryPath != "" {
		dict, err = dictionary.LoadFile(cfg.Correct.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
	} else {
		dict = dictionary.Default()
	}

	opts := []correct.Option{
		correct.WithDictionary(dict),
		correct.WithVocabulary(fuzzy.Default()),
		correct.WithFrequencies(dict),
		correct.WithLogger(log),
		correct.WithFuzzyThreshold(cfg.Correct.FuzzyThreshold),
		correct.WithRarityThreshold(cfg.Correct.RarityThreshold),
	}
	if cfg.Correct.Context.Endpoint != "" {
		opts = append(opts, correct.WithPredictor(
			langmodel.NewClient(cfg.Correct.Context.Endpoint, cfg.Correct.Context.Model)))
	}
	if !cfg.Correct.EnableSpell {
		opts = append(opts, correct.WithoutSpell())
	}
	if !cfg.Correct.EnableFuzzy {
		opts = append(opts, correct.WithoutFuzzy())
	}
	if !cfg.Correct.EnableContext {
		opts = append(opts, correct.WithoutContext())
	}
	return correct.New(opts...), nil
}
