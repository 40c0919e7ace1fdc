package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meikuraledutech/orgchart/httpapi"
	"github.com/meikuraledutech/orgchart/metrics"
)

func serveCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.CreateSchema(ctx); err != nil {
				return err
			}
			if seedPath != "" {
				if _, err := loadSeed(ctx, e, seedPath); err != nil {
					return err
				}
			}

			opts := []httpapi.Option{
				httpapi.WithLogger(e.log),
				httpapi.WithMetrics(metrics.NewRegistry()),
				httpapi.WithLayout(e.cfg.Layout),
			}
			if e.cfg.SessionSecret != "" {
				sessions, err := httpapi.NewSessions(e.cfg.SessionSecret)
				if err != nil {
					return err
				}
				opts = append(opts, httpapi.WithSessions(sessions))
			} else {
				e.log.Warn("SESSION_SECRET is not set, admin routes are disabled")
			}

			app := httpapi.New(e.store, opts...)
			e.log.Info("listening", zap.String("addr", e.cfg.ListenAddr))
			return app.Listen(e.cfg.ListenAddr, fiber.ListenConfig{
				DisableStartupMessage: true,
				GracefulContext:       ctx,
			})
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file to load before serving")
	return cmd
}

// withSignals runs fn with a context cancelled on SIGINT or SIGTERM.
func withSignals(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}
