// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/venvctl/pkg/types"
)

const (
	// OpInstall is a pip install or upgrade.
	OpInstall Operation = "install"
	// OpUninstall is a pip uninstall.
	OpUninstall Operation = "uninstall"
	// OpWheel is a pip wheel build.
	OpWheel Operation = "wheel"
)

var (
	// ErrPathNotFound is returned when no usable environment path could be determined.
	ErrPathNotFound = errors.New("environment path not found")

	// ErrReadonly is returned when a mutating operation is attempted on a readonly environment.
	ErrReadonly = errors.New("environment is readonly")

	// ErrCreationFailed is the sentinel error wrapped by CreationError.
	ErrCreationFailed = errors.New("environment creation failed")

	// ErrLaunch is the sentinel error wrapped by LaunchError.
	ErrLaunch = errors.New("failed to launch command")

	// ErrCommandFailed is the sentinel error wrapped by CommandError.
	ErrCommandFailed = errors.New("command failed")

	// ErrInstallationFailed is wrapped by PackageError for failed installs and upgrades.
	ErrInstallationFailed = errors.New("package installation failed")

	// ErrRemovalFailed is wrapped by PackageError for failed uninstalls.
	ErrRemovalFailed = errors.New("package removal failed")

	// ErrWheelBuildFailed is wrapped by PackageError for failed wheel builds.
	ErrWheelBuildFailed = errors.New("wheel build failed")

	// ErrWheelBuildUnsupported is returned when the wheel package is not installed.
	ErrWheelBuildUnsupported = errors.New("wheel building is not supported in this environment")

	// ErrInvalidOptions is the sentinel error wrapped by InvalidOptionError.
	ErrInvalidOptions = errors.New("invalid pip options")
)

type (
	// Operation names the pip subcommand a PackageError came from.
	Operation string

	// InvalidPathError is returned by New when the path cannot name an environment.
	InvalidPathError struct {
		Value  string
		Reason string
	}

	// ReadonlyError is returned when Op was attempted on a readonly environment.
	// No process is started before it is returned.
	ReadonlyError struct {
		Op   string
		Path string
	}

	// CreationError is returned when virtualenv exits non-zero.
	CreationError struct {
		Name     string
		ExitCode types.ExitCode
		Output   string
		Err      error
	}

	// LaunchError is returned when a child process could not be started at all.
	// Path is the resolved executable the launch was attempted with.
	LaunchError struct {
		Path string
		Err  error
	}

	// CommandError is returned when a child process ran and exited non-zero.
	CommandError struct {
		Argv     []string
		ExitCode types.ExitCode
		Stdout   string
		Stderr   string
	}

	// PackageError is returned when pip exits non-zero for a package operation.
	// It matches ErrInstallationFailed, ErrRemovalFailed or ErrWheelBuildFailed
	// depending on Op, and the underlying *CommandError through errors.As.
	PackageError struct {
		Op       Operation
		Package  string
		ExitCode types.ExitCode
		Output   string
		Err      error
	}

	// InvalidOptionError is returned when an extra pip option cannot be passed
	// as a single argv token.
	InvalidOptionError struct {
		Index int
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid environment path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrPathNotFound so callers can use errors.Is for programmatic detection.
func (e *InvalidPathError) Unwrap() error { return ErrPathNotFound }

// Error implements the error interface.
func (e *ReadonlyError) Error() string {
	return fmt.Sprintf("cannot %s: environment %s is readonly", e.Op, e.Path)
}

// Unwrap returns ErrReadonly so callers can use errors.Is for programmatic detection.
func (e *ReadonlyError) Unwrap() error { return ErrReadonly }

// Error implements the error interface.
func (e *CreationError) Error() string {
	return fmt.Sprintf("failed to create environment %q (exit code %d)%s", e.Name, e.ExitCode, outputSuffix(e.Output))
}

// Unwrap returns ErrCreationFailed and the underlying command error.
func (e *CreationError) Unwrap() []error { return unwrapAll(ErrCreationFailed, e.Err) }

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrLaunch and the OS error that prevented the launch.
func (e *LaunchError) Unwrap() []error { return unwrapAll(ErrLaunch, e.Err) }

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with code %d%s", quoteArgv(e.Argv), e.ExitCode, outputSuffix(e.Stderr))
}

// Unwrap returns ErrCommandFailed so callers can use errors.Is for programmatic detection.
func (e *CommandError) Unwrap() error { return ErrCommandFailed }

// Output returns stdout followed by stderr.
func (e *CommandError) Output() string {
	return joinOutput(e.Stdout, e.Stderr)
}

// Error implements the error interface.
func (e *PackageError) Error() string {
	return fmt.Sprintf("pip %s %s failed (exit code %d)%s", e.Op, e.Package, e.ExitCode, outputSuffix(lastLines(e.Output, 5)))
}

// Unwrap returns the sentinel for Op and the underlying command error.
func (e *PackageError) Unwrap() []error {
	return unwrapAll(e.Op.sentinel(), e.Err)
}

// Error implements the error interface.
func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid pip option at index %d: %q", e.Index, e.Value)
}

// Unwrap returns ErrInvalidOptions so callers can use errors.Is for programmatic detection.
func (e *InvalidOptionError) Unwrap() error { return ErrInvalidOptions }

// String returns the operation name.
func (o Operation) String() string { return string(o) }

func (o Operation) sentinel() error {
	switch o {
	case OpUninstall:
		return ErrRemovalFailed
	case OpWheel:
		return ErrWheelBuildFailed
	default:
		return ErrInstallationFailed
	}
}

// validateOptions rejects options that cannot be a meaningful argv token.
func validateOptions(options []string) error {
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" || strings.ContainsRune(opt, 0) {
			return &InvalidOptionError{Index: i, Value: opt}
		}
	}
	return nil
}

func unwrapAll(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}

func outputSuffix(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	return ": " + output
}

func joinOutput(stdout, stderr string) string {
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	case strings.HasSuffix(stdout, "\n"):
		return stdout + stderr
	default:
		return stdout + "\n" + stderr
	}
}

// lastLines keeps the tail of long pip output so error strings stay readable.
// The full output remains available on the error value.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
