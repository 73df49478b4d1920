// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/multiagent-studio/studio/internal/app"
	"github.com/multiagent-studio/studio/pkg/config"
	"github.com/multiagent-studio/studio/pkg/input"
	"github.com/multiagent-studio/studio/pkg/present"
	"github.com/multiagent-studio/studio/pkg/session"
)

// Exit codes.
const (
	exitOK     = 0
	exitFault  = 1
	exitConfig = 2
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type globalFlags struct {
	configPath string
	profile    string
	dotenv     string
	sets       []string
	jsonErrors bool
}

func (f globalFlags) options() config.Options {
	return config.Options{Path: f.configPath, Profile: f.profile, DotEnv: f.dotenv, Overrides: f.sets}
}

func (f globalFlags) load() (*config.Config, error) {
	cfg, err := config.LoadWithOptions(f.options())
	if err != nil {
		return nil, NewConfigError(err, f.configPath)
	}
	return cfg, nil
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func run(ctx context.Context, args []string, s streams) int {
	root := newRootCommand(s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if stderrors.As(err, &ee) {
		if ee.err != nil {
			printError(s.err, ee.err, jsonErrors(root))
		}
		return ee.code
	}
	printError(s.err, NewInvalidArgumentError("command", err.Error()), jsonErrors(root))
	return exitConfig
}

func jsonErrors(root *cobra.Command) bool {
	v, _ := root.PersistentFlags().GetBool("json-errors")
	return v
}

func printError(w io.Writer, err error, asJSON bool) {
	var ce *CLIError
	if stderrors.As(err, &ce) {
		ce.PrintError(w, asJSON)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}

func newRootCommand(s streams) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "studio",
		Short:         "Run role-based AI agents from the terminal or a web page",
		Long:          "MultiAgent Studio runs a single role persona against a language model.\nWith no command it starts the interactive session.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), flags, s)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&flags.profile, "profile", "", "config profile overlay (config.<profile>.yaml)")
	pf.StringVar(&flags.dotenv, "dotenv", "", "path to a .env file (\"-\" disables, default ./.env)")
	pf.StringArrayVar(&flags.sets, "set", nil, "override a config key (key=value, repeatable)")
	pf.BoolVar(&flags.jsonErrors, "json-errors", false, "print errors as JSON")

	root.AddCommand(
		newWebCommand(&flags, s),
		newRolesCommand(&flags, s),
		newVersionCommand(s),
	)
	return root
}

func runInteractive(ctx context.Context, flags globalFlags, s streams) (err error) {
	cfg, err := flags.load()
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	a, err := app.New(cfg)
	if err != nil {
		return &exitError{code: exitConfig, err: NewConfigError(err, flags.configPath)}
	}
	defer func() { _ = a.Close(context.Background()) }()

	src, out, device, closeSrc := lineSource(s)
	defer closeSrc()

	screen := a.NewTerminal(out, present.WithDevice(device))
	defer func() {
		if r := recover(); r != nil {
			screen.Fault(fmt.Errorf("%v", r))
			err = &exitError{code: exitFault}
		}
	}()

	runErr := a.NewLoop(src, out, present.WithDevice(device)).Run(ctx)
	switch {
	case runErr == nil:
		return nil
	case stderrors.Is(runErr, session.ErrMissingCredential):
		// The loop already explained what to set.
		return &exitError{code: exitFault}
	default:
		screen.Fault(runErr)
		a.Logger().Error("session aborted", "error", runErr)
		return &exitError{code: exitFault}
	}
}

// lineSource uses line editing when both ends are a terminal. The returned
// device is what the presenter probes for color and width.
func lineSource(s streams) (input.LineSource, io.Writer, io.Writer, func()) {
	inFile, inOK := s.in.(*os.File)
	outFile, outOK := s.out.(*os.File)
	if inOK && outOK && term.IsTerminal(int(inFile.Fd())) && term.IsTerminal(int(outFile.Fd())) {
		if ts, err := input.NewTerminalSource(); err == nil {
			return ts, ts.Stdout(), outFile, func() { _ = ts.Close() }
		}
	}
	return input.NewReaderSource(s.in, s.out), s.out, s.out, func() {}
}
