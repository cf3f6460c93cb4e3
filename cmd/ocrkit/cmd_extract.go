package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocr"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image-file>",
		Short: "Extract text from a scanned document",
		Long: `Extract runs the configured OCR engine over an image or PDF and
prints the recognized text. With --correct the text additionally goes
through the correction pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			if engine == nil {
				return fmt.Errorf("no OCR engine configured (provider is %q)", cfg.OCR.Provider)
			}

			var inputOpts []ocr.InputOption
			if langs := cfg.OCR.Tesseract.Languages; len(langs) > 0 {
				inputOpts = append(inputOpts, ocr.WithLanguages(langs...))
			}
			if dpi := cfg.OCR.Tesseract.DPI; dpi > 0 {
				inputOpts = append(inputOpts, ocr.WithDPI(dpi))
			}
			res, err := ocr.RecognizeFile(cmd.Context(), engine, args[0], inputOpts...)
			if err != nil {
				return fmt.Errorf("recognize %s: %w", args[0], err)
			}
			rawText := strings.TrimSpace(res.PlainText)
			if rawText == "" {
				return fmt.Errorf("no text found in %s", args[0])
			}

			doCorrect, _ := cmd.Flags().GetBool("correct")
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if !doCorrect {
				if jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"file": args[0],
						"text": rawText,
					})
				}
				fmt.Fprintln(out, rawText)
				return nil
			}

			pipeline, err := newPipeline(cfg, observability.NopLogger{})
			if err != nil {
				return err
			}
			corrected, err := pipeline.Run(cmd.Context(), rawText)
			if err != nil {
				return fmt.Errorf("correct text: %w", err)
			}
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"file":           args[0],
					"original_text":  rawText,
					"corrected_text": corrected.CorrectedText,
					"corrections":    corrected.Corrections,
					"confidence":     corrected.Confidence,
				})
			}
			fmt.Fprintln(out, corrected.CorrectedText)
			return nil
		},
	}
	cmd.Flags().Bool("correct", false, "Run the correction pipeline on the extracted text")
	return cmd
}
