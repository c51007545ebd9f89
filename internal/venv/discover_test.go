// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func TestDiscover_VirtualEnvVariable(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "active")
	recorder := NewMockCommandRecorder(t)

	env, err := Discover(context.Background(),
		WithEnviron([]string{"VIRTUAL_ENV=" + root}),
		WithExecCommand(recorder.CommandFunc(t)),
	)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if env.Path() != root {
		t.Errorf("Path() = %q, want %q", env.Path(), root)
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestDiscover_InterpreterPrefix(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "probed")
	recorder := NewMockCommandRecorder(t)
	recorder.On("-c", MockResponse{Stdout: root + "\n"})

	env, err := Discover(context.Background(),
		WithEnviron([]string{"__PYVENV_LAUNCHER__=/usr/bin/python3"}),
		WithInterpreter("python3.12"),
		WithExecCommand(recorder.CommandFunc(t)),
	)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if env.Path() != root {
		t.Errorf("Path() = %q, want %q", env.Path(), root)
	}

	recorder.AssertInvocationCount(t, 1)
	inv := recorder.LastInvocation()
	if inv.Name != "python3.12" {
		t.Errorf("probe interpreter = %q, want python3.12", inv.Name)
	}
	if slices.Contains(inv.Cmd.Env, "__PYVENV_LAUNCHER__=/usr/bin/python3") {
		t.Error("probe should not inherit __PYVENV_LAUNCHER__")
	}
}

func TestDiscover_NotInsideEnvironment(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder(t)
	recorder.On("-c", MockResponse{Stdout: "\n"})

	_, err := Discover(context.Background(), WithEnviron([]string{"HOME=/home/tester"}), WithExecCommand(recorder.CommandFunc(t)))
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("Discover() error = %v, want ErrPathNotFound", err)
	}
	recorder.AssertInvocationCount(t, 1)
}

func TestDiscover_NoInterpreter(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder(t)
	recorder.LaunchFailure = true

	_, err := Discover(context.Background(), WithEnviron([]string{"HOME=/home/tester"}), WithExecCommand(recorder.CommandFunc(t)))
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("Discover() error = %v, want ErrPathNotFound", err)
	}
	if !errors.Is(err, ErrLaunch) {
		t.Errorf("Discover() error should carry the launch failures: %v", err)
	}
	recorder.AssertInvocationCount(t, 2)
}

func TestInterpreterCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{"posix", []Option{withGOOS("linux")}, []string{"python3", "python"}},
		{"windows", []Option{withGOOS("windows")}, []string{"python", "py"}},
		{"explicit", []Option{withGOOS("windows"), WithInterpreter("pypy3")}, []string{"pypy3"}},
	}

	for _, tt := range tests {
		if got := newDefaults(tt.opts...).interpreterCandidates(); !slices.Equal(got, tt.want) {
			t.Errorf("%s: interpreterCandidates() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
