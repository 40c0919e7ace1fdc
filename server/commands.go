package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/config"
	"github.com/meikuraledutech/orgchart/httpapi"
	"github.com/meikuraledutech/orgchart/render"
	"github.com/meikuraledutech/orgchart/seed"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create or drop the database tables",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create the tables if they do not exist",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSignals(cmd, func(ctx context.Context) error {
					e, err := setup(ctx)
					if err != nil {
						return err
					}
					defer e.Close()
					if err := e.store.CreateSchema(ctx); err != nil {
						return err
					}
					done("schema created")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop every table and its data",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSignals(cmd, func(ctx context.Context) error {
					e, err := setup(ctx)
					if err != nil {
						return err
					}
					defer e.Close()
					if err := e.store.DropSchema(ctx); err != nil {
						return err
					}
					done("schema dropped")
					return nil
				})
			},
		},
	)
	return cmd
}

func loadSeed(ctx context.Context, e *env, path string) (seed.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return seed.Result{}, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()

	file, err := seed.Parse(f)
	if err != nil {
		return seed.Result{}, err
	}
	res, err := seed.Apply(ctx, e.store, file)
	if err != nil {
		return res, err
	}
	for i, id := range res.StructureIDs {
		note("structure %q: %s", file.Structures[i].Name, id)
	}
	done("seeded %d members and %d connections", res.Members, res.Connections)
	return res, nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Insert the structures, members and connections of a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSignals(cmd, func(ctx context.Context) error {
				e, err := setup(ctx)
				if err != nil {
					return err
				}
				defer e.Close()
				if err := e.store.CreateSchema(ctx); err != nil {
					return err
				}
				_, err = loadSeed(ctx, e, args[0])
				return err
			})
		},
	}
}

func resetLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-layout <structure-id>",
		Short: "Clear every saved card position of a structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSignals(cmd, func(ctx context.Context) error {
				e, err := setup(ctx)
				if err != nil {
					return err
				}
				defer e.Close()
				if err := e.store.ResetLayout(ctx, args[0]); err != nil {
					return err
				}
				done("layout reset for %s", args[0])
				return nil
			})
		},
	}
}

func renderCmd() *cobra.Command {
	var out, seedPath string

	cmd := &cobra.Command{
		Use:   "render <structure-id>",
		Short: "Render a structure as SVG",
		Long: "Render a structure as SVG. With --memory and --seed the chart is drawn\n" +
			"from the seed file alone; the structure argument may then be its 1-based index.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSignals(cmd, func(ctx context.Context) error {
				e, err := setup(ctx)
				if err != nil {
					return err
				}
				defer e.Close()

				sid := args[0]
				if seedPath != "" {
					sid, err = seedAndPick(ctx, e, seedPath, sid)
					if err != nil {
						return err
					}
				}

				var w io.Writer = cmd.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				opts := render.DefaultOptions()
				opts.Layout = e.cfg.Layout
				opts.Logger = e.log
				if err := render.Chart(ctx, orgchart.NewStoreSource(e.store), sid, w, opts); err != nil {
					return err
				}
				if out != "" {
					done("wrote %s", out)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write the SVG to a file instead of stdout")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file to load first")
	return cmd
}

// seedAndPick loads a seed file and resolves a 1-based structure index to
// the id it was given. Anything else is returned as is.
func seedAndPick(ctx context.Context, e *env, path, arg string) (string, error) {
	res, err := loadSeed(ctx, e, path)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(res.StructureIDs) {
		return res.StructureIDs[n-1], nil
	}
	return arg, nil
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin session token for the " + httpapi.SessionCookie + " cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			sessions, err := httpapi.NewSessions(cfg.SessionSecret)
			if err != nil {
				return err
			}
			token, err := sessions.Issue(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			note("valid for %s", ttl)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
