// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/venvctl/internal/issue"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolated returns load options that touch nothing outside t.TempDir.
func isolated(t *testing.T) (LoadOptions, string, string) {
	t.Helper()
	root := t.TempDir()
	cfgDir := filepath.Join(root, "config")
	workDir := filepath.Join(root, "project")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return LoadOptions{ConfigDirPath: cfgDir, WorkDir: workDir, Environ: []string{}}, cfgDir, workDir
}

func TestLoadWithSources_Defaults(t *testing.T) {
	t.Parallel()
	opts, _, _ := isolated(t)

	res, err := LoadWithSources(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}
	if len(res.Sources) != 0 {
		t.Errorf("Sources = %v, want none", res.Sources)
	}
	want := DefaultConfig()
	if *res.Config != *want {
		t.Errorf("Config = %+v, want %+v", *res.Config, *want)
	}
}

func TestLoadWithSources_Precedence(t *testing.T) {
	t.Parallel()
	opts, cfgDir, workDir := isolated(t)

	userFile := filepath.Join(cfgDir, "config.cue")
	writeFile(t, userFile, `
virtualenv_binary: "/opt/bin/virtualenv"
python: "python3.12"
ui: color_scheme: "dark"
`)
	projectFile := filepath.Join(workDir, ProjectFileName)
	writeFile(t, projectFile, `
python: "python3.11"
system_site_packages: true
`)
	opts.Environ = []string{"VENVCTL_READONLY=true", "VENVCTL_UI_VERBOSE=1", "UNRELATED=x"}

	res, err := LoadWithSources(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}

	if len(res.Sources) != 2 || res.Sources[0] != userFile || res.Sources[1] != projectFile {
		t.Errorf("Sources = %v, want [%s %s]", res.Sources, userFile, projectFile)
	}
	cfg := res.Config
	if cfg.VirtualenvBinary != "/opt/bin/virtualenv" {
		t.Errorf("VirtualenvBinary = %q", cfg.VirtualenvBinary)
	}
	if cfg.Python != "python3.11" {
		t.Errorf("Python = %q, project file should win", cfg.Python)
	}
	if !cfg.SystemSitePackages {
		t.Error("SystemSitePackages should come from the project file")
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q", cfg.UI.ColorScheme)
	}
	if !cfg.Readonly || !cfg.UI.Verbose {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadWithSources_ExplicitFile(t *testing.T) {
	t.Parallel()
	opts, cfgDir, workDir := isolated(t)

	writeFile(t, filepath.Join(cfgDir, "config.cue"), `readonly: true`)
	writeFile(t, filepath.Join(workDir, ProjectFileName), `python: "python3.9"`)
	explicit := filepath.Join(t.TempDir(), "custom.cue")
	writeFile(t, explicit, `download_cache: "/var/cache/pip"`)
	opts.ConfigFilePath = explicit

	res, err := LoadWithSources(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0] != explicit {
		t.Errorf("Sources = %v, want only %s", res.Sources, explicit)
	}
	if res.Config.Readonly || res.Config.Python != "" {
		t.Errorf("explicit file should replace the user and project files: %+v", res.Config)
	}
	if res.Config.DownloadCache != "/var/cache/pip" {
		t.Errorf("DownloadCache = %q", res.Config.DownloadCache)
	}
}

func TestLoadWithSources_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		explicit bool
		environ  []string
		want     []string
		is       error
	}{
		{
			name:     "explicit file missing",
			explicit: true,
			want:     []string{"config file not found"},
		},
		{
			name: "syntax error",
			file: "readonly: {",
			want: []string{"failed to load configuration", "config.cue"},
		},
		{
			name: "unknown field",
			file: `colour: "red"`,
			want: []string{"failed to load configuration"},
		},
		{
			name: "schema rejects color scheme",
			file: `ui: color_scheme: "neon"`,
			want: []string{"ui.color_scheme"},
		},
		{
			name:    "env color scheme validated",
			environ: []string{"VENVCTL_UI_COLOR_SCHEME=neon"},
			want:    []string{"invalid color scheme"},
			is:      ErrInvalidColorScheme,
		},
		{
			name:    "env empty binary",
			environ: []string{"VENVCTL_VIRTUALENV_BINARY="},
			want:    []string{"virtualenv_binary"},
			is:      ErrInvalidConfig,
		},
		{
			name:    "env malformed bool",
			environ: []string{"VENVCTL_READONLY=maybe"},
			want:    []string{"readonly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, cfgDir, _ := isolated(t)
			if tt.file != "" {
				writeFile(t, filepath.Join(cfgDir, "config.cue"), tt.file)
			}
			if tt.explicit {
				opts.ConfigFilePath = filepath.Join(cfgDir, "absent.cue")
			}
			if tt.environ != nil {
				opts.Environ = tt.environ
			}

			_, err := LoadWithSources(context.Background(), opts)
			if err == nil {
				t.Fatal("LoadWithSources() should fail")
			}
			for _, s := range tt.want {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q should contain %q", err, s)
				}
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Errorf("error should be actionable, got %T", err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("errors.Is(%v) = false", tt.is)
			}
		})
	}
}

func TestLoadWithSources_Canceled(t *testing.T) {
	t.Parallel()
	opts, _, _ := isolated(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadWithSources(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestProvider_Load(t *testing.T) {
	t.Parallel()
	opts, _, _ := isolated(t)
	opts.Environ = []string{"VENVCTL_PYTHON=python3.13"}

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Python != "python3.13" {
		t.Errorf("Python = %q", cfg.Python)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()
	opts, cfgDir, _ := isolated(t)

	path, created, err := CreateDefaultConfig(cfgDir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if !created || path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	// The generated file must load back to the defaults.
	res, err := LoadWithSources(context.Background(), opts)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if *res.Config != *DefaultConfig() {
		t.Errorf("round trip = %+v", *res.Config)
	}

	writeFile(t, path, "readonly: true\n")
	if _, created, err := CreateDefaultConfig(cfgDir); err != nil || created {
		t.Errorf("second CreateDefaultConfig() = %v, %v; want no overwrite", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "readonly: true\n" {
		t.Errorf("existing file overwritten: %q", data)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()
	opts, cfgDir, _ := isolated(t)

	cfg := &Config{
		VirtualenvBinary:   "/usr/bin/virtualenv",
		Python:             "python3.12",
		SystemSitePackages: true,
		DownloadCache:      "/tmp/pip-cache",
		Readonly:           true,
		UI:                 UIConfig{Verbose: true, ColorScheme: ColorSchemeLight},
	}
	writeFile(t, filepath.Join(cfgDir, "config.cue"), GenerateCUE(cfg))

	res, err := LoadWithSources(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}
	if *res.Config != *cfg {
		t.Errorf("round trip = %+v, want %+v", *res.Config, *cfg)
	}
}

func TestGenerateTOML(t *testing.T) {
	t.Parallel()

	out, err := GenerateTOML(DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateTOML() error: %v", err)
	}
	for _, want := range []string{"virtualenv_binary = 'virtualenv'", "[ui]", "color_scheme = 'auto'"} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateTOML() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "python") {
		t.Errorf("empty python should be omitted\n%s", out)
	}
}

func TestEnvVar(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]string{
		"readonly":        "VENVCTL_READONLY",
		"ui.verbose":      "VENVCTL_UI_VERBOSE",
		"ui.color_scheme": "VENVCTL_UI_COLOR_SCHEME",
	} {
		if got := EnvVar(key); got != want {
			t.Errorf("EnvVar(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil || got != dir {
		t.Errorf("ConfigDir() = %q, %v; want %q", got, err, dir)
	}
	path, err := ConfigFilePath("")
	if err != nil || path != filepath.Join(dir, "config.cue") {
		t.Errorf("ConfigFilePath(\"\") = %q, %v", path, err)
	}
}
