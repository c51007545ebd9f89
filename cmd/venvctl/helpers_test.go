// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/invowk/venvctl/internal/config"
	"github.com/invowk/venvctl/pkg/platform"
	"github.com/invowk/venvctl/pkg/types"
)

const fakePipVersion = "pip 23.2.1 from /env/lib/python3.11/site-packages/pip (python 3.11)\n"

type (
	// fakeResponse is what a faked child process prints and exits with.
	fakeResponse struct {
		stdout string
		stderr string
		exit   int
	}

	// fakeRunner answers child processes by their first argument and records
	// every invocation as name followed by its arguments.
	fakeRunner struct {
		mu        sync.Mutex
		responses map[string]fakeResponse
		calls     [][]string
	}

	// stubConfig is a ConfigProvider returning a fixed result.
	stubConfig struct {
		cfg *config.Config
		err error
	}
)

func newFakeRunner(responses map[string]fakeResponse) *fakeRunner {
	if responses == nil {
		responses = map[string]fakeResponse{}
	}
	if _, ok := responses["-V"]; !ok {
		responses["-V"] = fakeResponse{stdout: fakePipVersion}
	}
	return &fakeRunner{responses: responses}
}

func (f *fakeRunner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	resp := f.responses[key]
	f.calls = append(f.calls, append([]string{filepath.Base(name)}, args...))

	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	//nolint:gosec // TestHelperProcess is a test-only pattern
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{
		"GO_WANT_HELPER_PROCESS=1",
		fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", resp.exit),
		"GO_HELPER_STDOUT=" + resp.stdout,
		"GO_HELPER_STDERR=" + resp.stderr,
	}
	return cmd
}

// subcommands returns the first argument of every recorded call.
func (f *fakeRunner) subcommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		if len(c) > 1 {
			subs = append(subs, c[1])
		}
	}
	return subs
}

func (f *fakeRunner) count(sub string) int {
	n := 0
	for _, s := range f.subcommands() {
		if s == sub {
			n++
		}
	}
	return n
}

func (s stubConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := config.DefaultConfig()
	if s.cfg != nil {
		clone := *s.cfg
		cfg = &clone
	}
	return cfg, nil
}

// TestHelperProcess is used by fakeRunner to simulate child processes.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("GO_HELPER_STDERR"))

	exitCode := 0
	fmt.Sscanf(os.Getenv("GO_HELPER_EXIT_CODE"), "%d", &exitCode)
	os.Exit(exitCode)
}

// newEnvDir creates an environment directory holding a pip file.
func newEnvDir(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "env")
	pip := platform.EnvExecutable(runtime.GOOS, root, "pip")
	if err := os.MkdirAll(filepath.Dir(pip), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pip, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

type cliResult struct {
	stdout string
	stderr string
	code   types.ExitCode
}

// runCLI runs the command tree against runner with a stubbed configuration.
func runCLI(t *testing.T, runner *fakeRunner, cfg ConfigProvider, args ...string) cliResult {
	t.Helper()

	if cfg == nil {
		cfg = stubConfig{}
	}
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, Dependencies{
		Config:      cfg,
		Stdout:      &stdout,
		Stderr:      &stderr,
		Environ:     []string{"HOME=/home/tester", "PATH=" + os.Getenv("PATH")},
		WorkDir:     t.TempDir(),
		ExecCommand: runner.command,
	})
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}
