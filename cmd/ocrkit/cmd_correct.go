package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/report"
)

func newCorrectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct [text]",
		Short: "Correct OCR errors in text",
		Long: `Correct runs text through the correction pipeline and prints the
result. Text comes from the argument, --file, or stdin.

Example:
  ocrkit correct "Teh rnouse is nice."
  cat scan.txt | ocrkit correct --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			pipeline, err := newPipeline(cfg, observability.NopLogger{})
			if err != nil {
				return err
			}
			res, err := pipeline.Run(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("correct text: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(res)
			}
			if showDiff, _ := cmd.Flags().GetBool("diff"); showDiff {
				fmt.Fprintln(out, report.PrettyDiff(text, res.CorrectedText))
				for _, c := range res.Corrections {
					fmt.Fprintf(out, "%3d: %s -> %s (%s)\n", c.Position, c.Original, c.Corrected, c.Method)
				}
				fmt.Fprintf(out, "confidence: %.2f\n", res.Confidence)
				return nil
			}
			fmt.Fprintln(out, res.CorrectedText)
			return nil
		},
	}
	cmd.Flags().String("file", "", "Read text from a file instead of the argument")
	cmd.Flags().Bool("diff", false, "Show a colored diff and the applied corrections")
	return cmd
}

// inputText resolves the text to correct: --file wins, then the argument,
// then stdin.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
