// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// EnsureReady verifies the environment exists, creating it with virtualenv
// when pip is missing. Once it has succeeded it never runs virtualenv again
// for this handle.
//
// Readonly handles whose pip is missing fail with a *ReadonlyError.
// A virtualenv failure returns a *CreationError.
func (e *Environment) EnsureReady(ctx context.Context) error {
	if e.ready {
		return nil
	}

	if e.pipExists() {
		e.ready = true
		return nil
	}

	if e.readonly {
		return &ReadonlyError{Op: "create", Path: e.path}
	}

	if err := e.create(ctx); err != nil {
		return err
	}

	e.ready = true
	return nil
}

// Exists reports whether the environment has been created, without creating it.
func (e *Environment) Exists() bool {
	return e.ready || e.pipExists()
}

// pipExists reports whether pip is a regular file at the platform location.
func (e *Environment) pipExists() bool {
	info, err := os.Stat(e.PipPath())
	return err == nil && info.Mode().IsRegular()
}

func (e *Environment) create(ctx context.Context) error {
	parent := e.Parent()
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory %s: %w", parent, err)
	}

	argv := e.CreateArgs()
	e.logger.Info("creating environment", "path", e.path, "creator", e.creator)

	stdout, stderr, err := e.spawn(ctx, parent, argv)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return &CreationError{
				Name:     e.Name(),
				ExitCode: cmdErr.ExitCode,
				Output:   cmdErr.Output(),
				Err:      cmdErr,
			}
		}
		return err
	}

	e.writeLog(LogFileName, stdout, true)
	e.writeLog(ErrorLogFileName, stderr, true)
	return nil
}

// CreateArgs returns the argument vector used to create the environment.
//
// The result has the form: virtualenv [-p <python>] [--system-site-packages] <name>
func (e *Environment) CreateArgs() []string {
	argv := []string{e.creator}
	if e.interpreter != "" {
		argv = append(argv, "-p", e.interpreter)
	}
	if e.systemSitePackages {
		argv = append(argv, "--system-site-packages")
	}
	return append(argv, e.Name())
}
