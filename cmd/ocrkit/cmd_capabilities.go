package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocr/tesseract"
)

func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show active correction stages and OCR availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pipeline, err := newPipeline(cfg, observability.NopLogger{})
			if err != nil {
				return err
			}
			caps := pipeline.Capabilities()
			tessReady := tesseract.Available()

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"capabilities":        caps,
					"methods":             caps.Methods(),
					"provider":            cfg.OCR.Provider,
					"tesseract_installed": tessReady,
				})
			}
			fmt.Fprintln(out, "Correction stages:")
			fmt.Fprintf(out, "  pattern matching:   %v\n", caps.Pattern)
			fmt.Fprintf(out, "  spell check:        %v\n", caps.Spell)
			fmt.Fprintf(out, "  fuzzy matching:     %v\n", caps.Fuzzy)
			fmt.Fprintf(out, "  context prediction: %v\n", caps.Context && caps.WordFreq)
			fmt.Fprintln(out, "OCR:")
			fmt.Fprintf(out, "  provider:            %s\n", cfg.OCR.Provider)
			fmt.Fprintf(out, "  tesseract installed: %v\n", tessReady)
			return nil
		},
	}
}
