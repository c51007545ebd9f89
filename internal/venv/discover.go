// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"errors"
	"strings"

	"github.com/invowk/venvctl/pkg/platform"
)

// prefixProbe prints the interpreter prefix only when it runs inside a
// virtual environment, covering both legacy virtualenv (sys.real_prefix) and
// the venv module (sys.base_prefix).
const prefixProbe = "import sys; print(sys.prefix if getattr(sys, 'real_prefix', None) or sys.prefix != getattr(sys, 'base_prefix', sys.prefix) else '')"

// Discover returns a handle on the currently active environment.
//
// VIRTUAL_ENV in the child environment wins when set. Otherwise the
// interpreter (WithInterpreter, or python3 then python) is asked for its
// prefix, which is used only if that interpreter runs inside a virtual
// environment. ErrPathNotFound is returned when neither yields a path.
func Discover(ctx context.Context, opts ...Option) (*Environment, error) {
	probe := newDefaults(opts...)

	if path := lookupEnv(probe.baseEnviron, EnvVirtualEnv); strings.TrimSpace(path) != "" {
		return New(path, opts...)
	}

	environ, err := childEnviron(probe.baseEnviron, "")
	if err != nil {
		return nil, err
	}
	probe.environ = environ

	var errs []error
	for _, python := range probe.interpreterCandidates() {
		stdout, _, err := probe.spawn(ctx, "", []string{python, "-c", prefixProbe})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prefix := strings.TrimSpace(stdout); prefix != "" {
			return New(prefix, opts...)
		}
		probe.logger.Debug("interpreter is not inside a virtual environment", "python", python)
		return nil, &InvalidPathError{Value: "", Reason: python + " is not running inside a virtual environment"}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, errors.Join(append([]error{&InvalidPathError{Value: "", Reason: "no virtual environment is active"}}, errs...)...)
}

func (e *Environment) interpreterCandidates() []string {
	if e.interpreter != "" {
		return []string{e.interpreter}
	}
	if e.goos == platform.Windows {
		return []string{"python", "py"}
	}
	return []string{"python3", "python"}
}
