// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/invowk/venvctl/pkg/platform"
)

func TestNew_EmptyPath(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"", "   "} {
		_, err := New(path)
		if !errors.Is(err, ErrPathNotFound) {
			t.Errorf("New(%q) error = %v, want ErrPathNotFound", path, err)
		}
		var pathErr *InvalidPathError
		if !errors.As(err, &pathErr) {
			t.Errorf("New(%q) error should be *InvalidPathError, got %T", path, err)
		}
	}
}

func TestNew_PerformsNoIO(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "missing", "env")
	recorder := NewMockCommandRecorder(t)

	env, err := New(root, WithExecCommand(recorder.CommandFunc(t)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("New() should not create %s, stat error = %v", root, err)
	}
	if env.Ready() {
		t.Error("new environment should not be ready")
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestNew_NormalizesPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env, err := New(dir + string(filepath.Separator) + "env" + string(filepath.Separator))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	want := filepath.Join(dir, "env")
	if env.Path() != want {
		t.Errorf("Path() = %q, want %q", env.Path(), want)
	}
	if env.Name() != "env" {
		t.Errorf("Name() = %q, want env", env.Name())
	}
	if env.Parent() != dir {
		t.Errorf("Parent() = %q, want %q", env.Parent(), dir)
	}
	if env.String() != want {
		t.Errorf("String() = %q, want %q", env.String(), want)
	}
	if env.LogPath() != filepath.Join(want, "build.log") || env.ErrorLogPath() != filepath.Join(want, "build.err") {
		t.Errorf("unexpected log paths %q %q", env.LogPath(), env.ErrorLogPath())
	}
}

func TestNew_RelativePathIsMadeAbsolute(t *testing.T) {
	t.Parallel()

	env, err := New("relative-env")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !filepath.IsAbs(env.Path()) {
		t.Errorf("Path() = %q, want absolute", env.Path())
	}
}

func TestNew_RejectsFilesystemRoot(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == platform.Windows {
		t.Skip("root path differs on Windows")
	}

	if _, err := New("/"); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("New(/) error = %v, want ErrPathNotFound", err)
	}
}

func TestNew_RejectsWindowsReservedName(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "CON"), withGOOS(platform.Windows))
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("New(CON) on windows error = %v, want ErrPathNotFound", err)
	}

	if _, err := New(filepath.Join(t.TempDir(), "CON"), withGOOS(platform.Linux)); err != nil {
		t.Errorf("New(CON) on linux error = %v, want nil", err)
	}
}

func TestPipPath_PlatformLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	posix, err := New(filepath.Join(dir, "env"), withGOOS(platform.Linux))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if want := filepath.Join(dir, "env", "bin", "pip"); posix.PipPath() != want {
		t.Errorf("PipPath() = %q, want %q", posix.PipPath(), want)
	}

	windows, err := New(filepath.Join(dir, "env"), withGOOS(platform.Windows))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if want := filepath.Join(dir, "env", "Scripts", "pip.exe"); windows.PipPath() != want {
		t.Errorf("PipPath() = %q, want %q", windows.PipPath(), want)
	}
}

func TestNew_ChildEnviron(t *testing.T) {
	t.Parallel()

	base := []string{
		"HOME=/home/tester",
		"CACHE_ROOT=/var/cache",
		"__PYVENV_LAUNCHER__=/usr/bin/python3",
		"PATH=/usr/bin",
	}

	tests := []struct {
		name      string
		cache     string
		wantCache string
	}{
		{name: "no cache", cache: ""},
		{name: "plain path", cache: "/tmp/pip-cache", wantCache: "/tmp/pip-cache"},
		{name: "variable", cache: "$CACHE_ROOT/pip", wantCache: "/var/cache/pip"},
		{name: "braced variable", cache: "${CACHE_ROOT}/pip", wantCache: "/var/cache/pip"},
		{name: "tilde", cache: "~/.cache/pip", wantCache: "/home/tester/.cache/pip"},
		{name: "bare tilde", cache: "~", wantCache: "/home/tester"},
		{name: "unset variable", cache: "$NOPE/pip", wantCache: "/pip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, err := New(filepath.Join(t.TempDir(), "env"), WithEnviron(base), WithDownloadCache(tt.cache))
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			environ := env.Environ()

			if got := lookupEnv(environ, "__PYVENV_LAUNCHER__"); got != "" {
				t.Errorf("__PYVENV_LAUNCHER__ should be stripped, got %q", got)
			}
			if got := lookupEnv(environ, "PATH"); got != "/usr/bin" {
				t.Errorf("PATH = %q, want inherited value", got)
			}
			if got := lookupEnv(environ, EnvPythonIOEncoding); got != "utf-8" {
				t.Errorf("PYTHONIOENCODING = %q, want utf-8", got)
			}

			got := lookupEnv(environ, EnvDownloadCache)
			if got != tt.wantCache {
				t.Errorf("PIP_DOWNLOAD_CACHE = %q, want %q", got, tt.wantCache)
			}
		})
	}
}

func TestNew_KeepsCallerPythonIOEncoding(t *testing.T) {
	t.Parallel()

	env, err := New(filepath.Join(t.TempDir(), "env"), WithEnviron([]string{"PYTHONIOENCODING=latin-1"}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := lookupEnv(env.Environ(), EnvPythonIOEncoding); got != "latin-1" {
		t.Errorf("PYTHONIOENCODING = %q, want latin-1", got)
	}
}

func TestEnviron_ReturnsCopy(t *testing.T) {
	t.Parallel()

	env, err := New(filepath.Join(t.TempDir(), "env"), WithEnviron([]string{"A=1"}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	environ := env.Environ()
	environ[0] = "A=2"
	if !slices.Contains(env.Environ(), "A=1") {
		t.Error("Environ() should return a copy")
	}
}

func TestSetEnv_ReplacesDuplicates(t *testing.T) {
	t.Parallel()

	got := setEnv([]string{"A=1", "B=2", "A=3"}, "A", "4")
	if !slices.Equal(got, []string{"B=2", "A=4"}) {
		t.Errorf("setEnv() = %v", got)
	}
}
