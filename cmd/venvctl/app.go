// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/invowk/venvctl/internal/config"
	"github.com/invowk/venvctl/internal/venv"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra handler receives an App reference.
	App struct {
		Config      ConfigProvider
		stdout      io.Writer
		stderr      io.Writer
		environ     []string
		workDir     string
		execCommand venv.ExecCommandFunc

		// Set by the root command's pre-run hook for the current invocation.
		settings *config.Config
		logger   *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
		// Environ replaces os.Environ for config overrides and child processes.
		Environ []string
		// WorkDir is where the project-local config file is looked up.
		WorkDir string
		// ExecCommand replaces exec.CommandContext for every child process.
		ExecCommand venv.ExecCommandFunc
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// sourceProvider is implemented by providers that can report which files
	// a configuration was merged from.
	sourceProvider interface {
		LoadWithSources(ctx context.Context, opts config.LoadOptions) (*config.Result, error)
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		verbose    bool
		configPath string
		envPath    string
		readonly   bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:      deps.Config,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		environ:     deps.Environ,
		workDir:     deps.WorkDir,
		execCommand: deps.ExecCommand,
		settings:    config.DefaultConfig(),
		logger:      newLogger(deps.Stderr, false),
	}, nil
}

// configure loads the configuration and applies the persistent flags on top.
// With lenient set, a load failure is reported as a warning and the defaults
// are used instead.
func (a *App) configure(ctx context.Context, flags *rootFlags, lenient bool) error {
	res, err := a.loadConfig(ctx, flags)
	if err != nil {
		if !lenient {
			return err
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		res = &config.Result{Config: config.DefaultConfig()}
	}

	a.settings = res.Config
	a.logger = newLogger(a.stderr, res.Config.UI.Verbose)
	return nil
}

// loadConfig loads the configuration for this invocation with the
// persistent flags applied on top.
func (a *App) loadConfig(ctx context.Context, flags *rootFlags) (*config.Result, error) {
	opts := config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        a.workDir,
		Environ:        a.environ,
	}

	var res *config.Result
	if sp, ok := a.Config.(sourceProvider); ok {
		loaded, err := sp.LoadWithSources(ctx, opts)
		if err != nil {
			return nil, err
		}
		res = loaded
	} else {
		cfg, err := a.Config.Load(ctx, opts)
		if err != nil {
			return nil, err
		}
		res = &config.Result{Config: cfg}
	}

	if flags.verbose {
		res.Config.UI.Verbose = true
	}
	if flags.readonly {
		res.Config.Readonly = true
	}
	return res, nil
}

// environmentOptions translates the effective settings into handle options.
func (a *App) environmentOptions() []venv.Option {
	cfg := a.settings
	opts := []venv.Option{
		venv.WithCreator(cfg.VirtualenvBinary),
		venv.WithInterpreter(cfg.Python),
		venv.WithSystemSitePackages(cfg.SystemSitePackages),
		venv.WithDownloadCache(cfg.DownloadCache),
		venv.WithReadonly(cfg.Readonly),
		venv.WithLogger(a.logger),
	}
	if a.environ != nil {
		opts = append(opts, venv.WithEnviron(a.environ))
	}
	if a.execCommand != nil {
		opts = append(opts, venv.WithExecCommand(a.execCommand))
	}
	return opts
}

// environment returns the handle selected by --env, or the active
// environment when the flag is not set.
func (a *App) environment(ctx context.Context, flags *rootFlags) (*venv.Environment, error) {
	if flags.envPath != "" {
		return venv.New(flags.envPath, a.environmentOptions()...)
	}
	env, err := venv.Discover(ctx, a.environmentOptions()...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("using active environment", "path", env.Path())
	return env, nil
}

// newLogger returns a slog logger backed by charmbracelet/log. Debug records
// are only shown when verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: "venvctl",
		Level:  level,
	})
	return slog.New(handler)
}
