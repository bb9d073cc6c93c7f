// Command collect runs WolfWise collectors once, without the HTTP server.
//
// Usage:
//
//	collect game 0022400123
//	collect in-game
//	collect lineup-stats --season 2024-25
//	collect leaders --store sqlite --sqlite-path wolfwise.db
//	collect jobs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	app "github.com/okian/wolfwise/internal/app"
	"github.com/okian/wolfwise/internal/config"
	"github.com/okian/wolfwise/internal/domain/model"
	"github.com/okian/wolfwise/pkg/logger"
)

type flags struct {
	season     string
	store      string
	sqlitePath string
	debugDir   string
	logLevel   string
}

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "collect",
		Short:         "Run WolfWise collectors once",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.season, "season", "", "season label, e.g. 2024-25 (default: configured or current)")
	pf.StringVar(&f.store, "store", "", "store driver: memory, sqlite or postgres (default: configured)")
	pf.StringVar(&f.sqlitePath, "sqlite-path", "", "sqlite database file")
	pf.StringVar(&f.debugDir, "debug-dir", "", "write substitution CSVs here")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(gameCmd(f))
	for _, c := range []struct{ use, job, short string }{
		{"in-game", "in_game", "Refresh today's (or the most recent) team game"},
		{"lineup-stats", "lineup_stats", "Collect season lineup totals"},
		{"leaders", "leaders", "Rebuild the league leaders tables"},
		{"hustle", "hustle", "Collect team hustle stats"},
		{"player-stats", "player_stats", "Collect the player stat card tables"},
		{"records", "records", "Scrape the all-time records pages"},
	} {
		root.AddCommand(jobCmd(f, c.use, c.job, c.short))
	}
	root.AddCommand(jobsCmd(f))
	return root
}

func gameCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "game <game-id>",
		Short: "Refresh the in-game tables of one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), f, func(ctx context.Context, svc *app.Service) error {
				return svc.Execute(ctx, model.NewGameJob(args[0]))
			})
		},
	}
}

func jobCmd(f *flags, use, job, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), f, func(ctx context.Context, svc *app.Service) error {
				return svc.Execute(ctx, model.NewBatchJob(job))
			})
		},
	}
}

func jobsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the registered collectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), f, func(_ context.Context, svc *app.Service) error {
				for _, name := range svc.Jobs() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

// withService loads configuration, applies flag overrides and runs fn
// against an initialized service.
func withService(parent context.Context, f *flags, fn func(context.Context, *app.Service) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	svc := app.New(cfg, app.WithLogger(logger.Named("collect")))
	if err := svc.Init(ctx); err != nil {
		return err
	}
	defer svc.Stop()
	return fn(ctx, svc)
}

func (f *flags) apply(cfg *config.Config) {
	if f.season != "" {
		cfg.Season = f.season
	}
	if f.store != "" {
		cfg.StoreDriver = f.store
	}
	if f.sqlitePath != "" {
		cfg.SQLitePath = f.sqlitePath
	}
	if f.debugDir != "" {
		cfg.DebugDir = f.debugDir
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
}
