package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wudi/ocrkit/dictionary/redisdict"
	"github.com/wudi/ocrkit/langmodel"
	"github.com/wudi/ocrkit/service"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the OCR correction HTTP server",
		Long: `Serve starts the HTTP API: image upload with text extraction, text
correction, run history, and custom dictionary administration. The server
shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			log := newLogger(cfg)
			opts := []service.Option{service.WithLogger(log)}

			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			if engine != nil {
				opts = append(opts, service.WithEngine(engine))
			}
			if cfg.Correct.Context.Endpoint != "" {
				opts = append(opts, service.WithPredictor(
					langmodel.NewClient(cfg.Correct.Context.Endpoint, cfg.Correct.Context.Model)))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Redis.Addr != "" {
				words, err := redisdict.Open(ctx, cfg.Redis.Addr, cfg.Redis.DB)
				if err != nil {
					return fmt.Errorf("connect custom word store: %w", err)
				}
				opts = append(opts, service.WithCustomWords(words))
			}

			srv, err := service.New(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			defer srv.Close()

			return srv.Run(ctx)
		},
	}
	cmd.Flags().Int("port", 0, "Override the configured listen port")
	return cmd
}
