package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/multiagent-studio/studio/internal/app"
	"github.com/multiagent-studio/studio/pkg/config"
	"github.com/multiagent-studio/studio/pkg/telemetry"
)

func newWebCommand(flags *globalFlags, s streams) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWeb(cmd.Context(), *flags, addr, s)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to web.addr)")
	return cmd
}

func runWeb(ctx context.Context, flags globalFlags, addr string, s streams) error {
	cfg, err := flags.load()
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	level := new(slog.LevelVar)
	level.Set(telemetry.ParseLevel(cfg.Log.Level))
	logger := telemetry.NewLeveledLogger(os.Stderr, level, cfg.Log.Format)

	// Only the log level follows file edits; everything else needs a restart.
	if flags.configPath != "" {
		watcher, err := config.NewWatcher(flags.options(), config.WithWatchLogger(logger))
		if err != nil {
			return &exitError{code: exitConfig, err: NewConfigError(err, flags.configPath)}
		}
		watcher.OnChange(func(next *config.Config) {
			level.Set(telemetry.ParseLevel(next.Log.Level))
			logger.Info("log level reloaded", "level", next.Log.Level)
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	a, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		return &exitError{code: exitConfig, err: NewConfigError(err, flags.configPath)}
	}
	defer func() { _ = a.Close(context.Background()) }()

	srv, err := a.NewWebServer()
	if err != nil {
		return &exitError{code: exitFault, err: NewUnexpectedError(err)}
	}
	if addr == "" {
		addr = a.Settings().WebAddr()
	}
	fmt.Fprintf(s.out, "MultiAgent Studio web UI listening on %s\n", addr)
	if !a.Settings().Credential().Ready() {
		fmt.Fprintf(s.out, "warning: %s is not set, runs are disabled\n", a.Settings().Credential().EnvVar)
	}

	if err := srv.ListenAndServe(ctx, addr); err != nil && !stderrors.Is(err, context.Canceled) {
		return &exitError{code: exitFault, err: NewServeError(err, addr)}
	}
	return nil
}

func newRolesCommand(flags *globalFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the available agent roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			settings, err := app.NewSettings(cfg)
			if err != nil {
				return &exitError{code: exitConfig, err: NewConfigError(err, flags.configPath)}
			}
			catalog := settings.Catalog()
			def := catalog.Default()

			tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tNAME\tDESCRIPTION")
			for i, r := range catalog.Roles() {
				name := r.Name
				if r.ID == def.ID {
					name += " (default)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.ID, name, r.Description)
			}
			return tw.Flush()
		},
	}
}

func newVersionCommand(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			bold := color.New(color.Bold)
			bold.Fprint(s.out, "studio")
			fmt.Fprintf(s.out, " %s\n", app.Version)
		},
	}
}
