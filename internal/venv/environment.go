// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/invowk/venvctl/pkg/platform"
)

const (
	// DefaultCreator is the environment-creation tool used when none is configured.
	DefaultCreator = "virtualenv"

	// LogFileName receives the stdout of every logged command.
	LogFileName = "build.log"
	// ErrorLogFileName receives the stderr of every logged command.
	ErrorLogFileName = "build.err"

	pipTool = "pip"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures an Environment.
	Option func(*Environment)

	// Environment is a handle on one virtualenv directory.
	// The zero value is not usable; construct one with New or Discover.
	Environment struct {
		path               string
		interpreter        string
		creator            string
		systemSitePackages bool
		downloadCache      string
		readonly           bool
		baseEnviron        []string
		environ            []string
		execCommand        ExecCommandFunc
		logger             *slog.Logger
		goos               string

		ready      bool
		pipVersion string
	}
)

// WithInterpreter selects the Python interpreter virtualenv builds the
// environment from (virtualenv -p). It is also the interpreter Discover probes.
func WithInterpreter(python string) Option {
	return func(e *Environment) {
		e.interpreter = python
	}
}

// WithSystemSitePackages gives the environment access to the interpreter's
// global site-packages (virtualenv --system-site-packages).
func WithSystemSitePackages(enabled bool) Option {
	return func(e *Environment) {
		e.systemSitePackages = enabled
	}
}

// WithDownloadCache exports PIP_DOWNLOAD_CACHE to every child process.
// A leading ~ and $VAR references are expanded against the child environment.
func WithDownloadCache(dir string) Option {
	return func(e *Environment) {
		e.downloadCache = dir
	}
}

// WithReadonly marks the environment readonly. Create, install, uninstall and
// wheel builds then fail with ErrReadonly without starting a process.
func WithReadonly(readonly bool) Option {
	return func(e *Environment) {
		e.readonly = readonly
	}
}

// WithCreator overrides the environment-creation executable (default "virtualenv").
func WithCreator(binary string) Option {
	return func(e *Environment) {
		if binary != "" {
			e.creator = binary
		}
	}
}

// WithEnviron replaces the inherited process environment children start from.
// Entries use the KEY=VALUE form of os.Environ.
func WithEnviron(environ []string) Option {
	return func(e *Environment) {
		e.baseEnviron = slices.Clone(environ)
	}
}

// WithExecCommand sets a custom exec command function (for testing).
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(e *Environment) {
		if fn != nil {
			e.execCommand = fn
		}
	}
}

// WithLogger sets the structured logger used for skip notices and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Environment) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// withGOOS overrides the host OS used for the bin/Scripts layout (for testing).
func withGOOS(goos string) Option {
	return func(e *Environment) {
		e.goos = goos
	}
}

// New returns a handle on the environment at path. The path is made absolute
// and a trailing separator is removed. New performs no filesystem access; the
// environment is created on the first operation that needs it.
func New(path string, opts ...Option) (*Environment, error) {
	e := newDefaults(opts...)

	if strings.TrimSpace(path) == "" {
		return nil, &InvalidPathError{Value: path, Reason: "path is empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &InvalidPathError{Value: path, Reason: err.Error()}
	}
	if filepath.Dir(abs) == abs {
		return nil, &InvalidPathError{Value: path, Reason: "a filesystem root cannot hold an environment"}
	}
	if e.goos == platform.Windows && platform.IsWindowsReservedName(filepath.Base(abs)) {
		return nil, &InvalidPathError{Value: path, Reason: "name is reserved on Windows"}
	}
	e.path = abs

	environ, err := childEnviron(e.baseEnviron, e.downloadCache)
	if err != nil {
		return nil, err
	}
	e.environ = environ

	return e, nil
}

func newDefaults(opts ...Option) *Environment {
	e := &Environment{
		creator:     DefaultCreator,
		execCommand: exec.CommandContext,
		logger:      slog.Default(),
		goos:        runtime.GOOS,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.baseEnviron == nil {
		e.baseEnviron = os.Environ()
	}
	return e
}

// Path returns the absolute environment directory.
func (e *Environment) Path() string { return e.path }

// Name returns the environment directory's base name, which is what
// virtualenv is invoked with.
func (e *Environment) Name() string { return filepath.Base(e.path) }

// Parent returns the directory virtualenv runs in when creating the environment.
func (e *Environment) Parent() string { return filepath.Dir(e.path) }

// PipPath returns the absolute path of pip inside the environment.
func (e *Environment) PipPath() string {
	return platform.EnvExecutable(e.goos, e.path, pipTool)
}

// LogPath returns the path of the stdout build log.
func (e *Environment) LogPath() string { return filepath.Join(e.path, LogFileName) }

// ErrorLogPath returns the path of the stderr build log.
func (e *Environment) ErrorLogPath() string { return filepath.Join(e.path, ErrorLogFileName) }

// Readonly reports whether mutating operations are refused.
func (e *Environment) Readonly() bool { return e.readonly }

// Ready reports whether the environment has been verified or created.
func (e *Environment) Ready() bool { return e.ready }

// Environ returns a copy of the variables child processes run with.
func (e *Environment) Environ() []string { return slices.Clone(e.environ) }

// String returns the environment path.
func (e *Environment) String() string { return e.path }
