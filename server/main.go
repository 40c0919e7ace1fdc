// Command server runs the organization chart API and its maintenance tasks.
package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/config"
	"github.com/meikuraledutech/orgchart/logging"
	"github.com/meikuraledutech/orgchart/memory"
	"github.com/meikuraledutech/orgchart/postgres"
)

var (
	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed)
	info = color.New(color.FgCyan)
)

var (
	configPath string
	useMemory  bool
)

var rootCmd = &cobra.Command{
	Use:           "orgchart",
	Short:         "Organization chart API and layout tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "Use an in-memory store instead of Postgres")

	rootCmd.AddCommand(
		serveCmd(),
		schemaCmd(),
		seedCmd(),
		resetLayoutCmd(),
		renderCmd(),
		tokenCmd(),
	)
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	store orgchart.Store
	pool  *pgxpool.Pool
}

func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
	_ = e.log.Sync()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log}
	if useMemory {
		e.store = memory.New()
		log.Info("using in-memory store")
		return e, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.ConnectTimeout, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	e.pool = pool
	e.store = postgres.New(pool)
	return e, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		bad.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func done(format string, args ...any) {
	good.Fprintf(os.Stderr, "✓ "+format+"\n", args...)
}

func note(format string, args ...any) {
	info.Fprintf(os.Stderr, format+"\n", args...)
}
