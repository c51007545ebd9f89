// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/invowk/venvctl/pkg/platform"
	"github.com/invowk/venvctl/pkg/types"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// RunOption configures a single Run call.
	RunOption func(*runConfig)

	runConfig struct {
		log bool
	}
)

// WithoutLog keeps the command's output out of build.log and build.err.
// Read-only queries such as search use it to avoid log noise.
func WithoutLog() RunOption {
	return func(c *runConfig) {
		c.log = false
	}
}

// Run makes sure the environment exists, then runs argv inside it and returns
// its decoded stdout. The working directory is the environment root.
//
// Unless WithoutLog is given, stdout is appended to build.log and stderr to
// build.err whether or not the command succeeds. A non-zero exit returns a
// *CommandError; a process that could not be started returns a *LaunchError.
func (e *Environment) Run(ctx context.Context, argv []string, opts ...RunOption) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("run: empty argument vector")
	}

	cfg := runConfig{log: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := e.EnsureReady(ctx); err != nil {
		return "", err
	}

	stdout, stderr, err := e.spawn(ctx, e.path, argv)
	if cfg.log && !isLaunchError(err) {
		e.appendLog(LogFileName, stdout)
		e.appendLog(ErrorLogFileName, stderr)
	}
	return stdout, err
}

// pip runs the environment's pip with args.
func (e *Environment) pip(ctx context.Context, args []string, opts ...RunOption) (string, error) {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, e.PipPath())
	argv = append(argv, args...)
	return e.Run(ctx, argv, opts...)
}

// spawn runs argv in dir with the environment's variables and waits for it.
func (e *Environment) spawn(ctx context.Context, dir string, argv []string) (stdout, stderr string, err error) {
	cmd := e.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Env, e.environ...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	e.logger.Debug("running command", "cmd", quoteArgv(argv), "dir", dir)
	runErr := cmd.Run()

	stdout = decodeOutput(outBuf.Bytes())
	stderr = decodeOutput(errBuf.Bytes())

	if runErr == nil {
		return stdout, stderr, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout, stderr, fmt.Errorf("%s: %w", quoteArgv(argv), ctxErr)
	}
	if code, ok := types.ExitCodeOf(runErr); ok {
		return stdout, stderr, &CommandError{
			Argv:     argv,
			ExitCode: code,
			Stdout:   stdout,
			Stderr:   stderr,
		}
	}
	return stdout, stderr, &LaunchError{Path: e.resolveExecutable(argv[0]), Err: runErr}
}

// resolveExecutable returns the path a launch of name was attempted with,
// for diagnostics.
func (e *Environment) resolveExecutable(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if !strings.ContainsAny(name, `/\`) {
		if lp, err := exec.LookPath(name); err == nil {
			return lp
		}
	}
	return filepath.Join(e.path, name)
}

// appendLog appends s and a line separator to the named log file.
// Failures are reported through the logger only.
func (e *Environment) appendLog(name, s string) {
	e.writeLog(name, s, false)
}

func (e *Environment) writeLog(name, s string, truncate bool) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	path := filepath.Join(e.path, name)
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		e.logger.Warn("failed to open build log", "path", path, "error", err)
		return
	}
	if _, err := f.WriteString(s + e.lineSeparator()); err != nil {
		e.logger.Warn("failed to write build log", "path", path, "error", err)
	}
	if err := f.Close(); err != nil {
		e.logger.Warn("failed to close build log", "path", path, "error", err)
	}
}

func (e *Environment) lineSeparator() string {
	if e.goos == platform.Windows {
		return "\r\n"
	}
	return "\n"
}

// decodeOutput converts child output to text. A UTF-16 byte order mark
// switches the decoder; everything else is read as UTF-8 with invalid
// sequences replaced.
func decodeOutput(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(decoded)
}

// quoteArgv renders argv as a command line that can be pasted into a shell.
func quoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = strconv.Quote(arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}

func isLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}
