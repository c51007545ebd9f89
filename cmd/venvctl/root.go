// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for venvctl.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/invowk/venvctl/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the venvctl command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "venvctl",
		Short: "Manage Python virtual environments and their packages",
		Long: TitleStyle.Render("venvctl") + SubtitleStyle.Render(" - Manage Python virtual environments and their packages") + `

venvctl drives virtualenv and pip for one environment at a time. The
environment is created on first use; packages already present are not
installed again.

The environment is the --env directory, or the active one (VIRTUAL_ENV,
then the prefix of the configured interpreter).

` + SubtitleStyle.Render("Examples:") + `
  venvctl --env .venv install requests==2.31.0
  venvctl --env .venv install -r requirements.txt
  venvctl installed flask
  venvctl --env .venv upgrade --all
  venvctl config show`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.configure(cmd.Context(), flags, false)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/venvctl/config.cue)")
	pf.StringVar(&flags.envPath, "env", "", "environment directory (default is the active environment)")
	pf.BoolVar(&flags.readonly, "readonly", false, "refuse to create environments or change packages")

	rootCmd.AddCommand(
		newCreateCommand(app, flags),
		newInstallCommand(app, flags),
		newUninstallCommand(app, flags),
		newUpgradeCommand(app, flags),
		newWheelCommand(app, flags),
		newFreezeCommand(app, flags),
		newInstalledCommand(app, flags),
		newSearchCommand(app, flags),
		newInfoCommand(app, flags),
		newConfigCommand(app, flags),
	)

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// Run executes the command tree with args and returns the process exit code.
// Failures are reported on the App's stderr, followed by the matching issue
// page when one exists.
func Run(ctx context.Context, args []string, deps Dependencies) types.ExitCode {
	app, err := NewApp(deps)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return types.ExitFailure
	}

	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err = fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		app.reportIssue(err)
	}
	return exitCodeFor(err)
}

// Execute runs venvctl with the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(int(Run(context.Background(), os.Args[1:], Dependencies{})))
}
