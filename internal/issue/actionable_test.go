// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "create environment"},
			expected: "failed to create environment",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "create environment",
				Resource:  "/srv/app/.venv",
			},
			expected: "failed to create environment: /srv/app/.venv",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "load configuration",
				Cause:     errors.New("field not allowed"),
			},
			expected: "failed to load configuration: field not allowed",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "install package",
				Resource:  "requests==2.31.0",
				Cause:     errors.New("pip exited with code 1"),
			},
			expected: "failed to install package: requests==2.31.0: pip exited with code 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "uninstall package",
				Resource:    "flask",
				Suggestions: []string{"Inspect build.err", "Retry with --verbose"},
			},
			contains: []string{"failed to uninstall package", "flask", "• Inspect build.err", "• Retry with --verbose"},
		},
		{
			name: "no chain when not verbose",
			err: &ActionableError{
				Operation: "build wheel",
				Cause:     errors.New("exit code 1"),
			},
			contains: []string{"failed to build wheel: exit code 1"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested chain when verbose",
			err: &ActionableError{
				Operation: "upgrade packages",
				Cause: &ActionableError{
					Operation: "install package",
					Cause:     errors.New("no matching distribution"),
				},
			},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. failed to install package: no matching distribution",
				"2. no matching distribution",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	if NewErrorContext().WithResource("/srv/app/.venv").Build() != nil {
		t.Error("Build() without an operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without an operation should return nil")
	}

	cause := errors.New("permission denied")
	err := NewErrorContext().
		WithOperation("create environment").
		WithResource("/srv/app/.venv").
		WithSuggestion("Check directory permissions").
		WithSuggestions("Pick another path", "Run with --readonly to only inspect").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if err.Operation != "create environment" || err.Resource != "/srv/app/.venv" {
		t.Errorf("unexpected context %+v", err)
	}
	if len(err.Suggestions) != 3 || !err.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 3", err.Suggestions)
	}
	if !errors.Is(err, cause) {
		t.Error("Build() should keep the cause")
	}

	var ae *ActionableError
	built := NewErrorContext().WithOperation("test").BuildError()
	if !errors.As(built, &ae) {
		t.Error("BuildError() should return *ActionableError")
	}
}

func TestErrorContext_Reuse(t *testing.T) {
	ctx := NewErrorContext().
		WithOperation("install package").
		WithSuggestion("Check the package name")

	err1 := ctx.Wrap(errors.New("error 1")).Build()
	err2 := ctx.Wrap(errors.New("error 2")).Build()

	if err1.Cause.Error() == err2.Cause.Error() {
		t.Error("reused context should allow different causes")
	}
	if err1.Operation != err2.Operation {
		t.Error("reused context should preserve operation")
	}
}
