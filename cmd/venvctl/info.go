// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/invowk/venvctl/internal/venv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newInfoCommand(app *App, flags *rootFlags) *cobra.Command {
	var plain bool

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the environment",
		Long: `Describe the environment: its location, whether it exists, the pip version
and the number of installed packages. An environment that does not exist yet
is not created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}

			md, err := describeEnvironment(cmd, env)
			if err != nil {
				return err
			}
			if plain {
				fmt.Fprint(app.stdout, md)
				return nil
			}

			rendered, err := glamour.Render(md, app.settings.UI.ColorScheme.GlamourStyle())
			if err != nil {
				return fmt.Errorf("failed to render environment info: %w", err)
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}

	infoCmd.Flags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")
	return infoCmd
}

// describeEnvironment renders env as a markdown table. pip is only queried
// when the environment already exists.
func describeEnvironment(cmd *cobra.Command, env *venv.Environment) (string, error) {
	pipVersion, packages := "-", "-"
	exists := env.Exists()
	if exists {
		v, err := env.PipVersion(cmd.Context())
		if err != nil {
			return "", err
		}
		pkgs, err := env.InstalledPackages(cmd.Context())
		if err != nil {
			return "", err
		}
		pipVersion, packages = v, strconv.Itoa(len(pkgs))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Environment %s\n\n", env.Name())
	sb.WriteString("| Property | Value |\n|---|---|\n")
	row := func(k, v string) { fmt.Fprintf(&sb, "| %s | %s |\n", k, v) }
	row("Path", "`"+env.Path()+"`")
	row("pip", "`"+env.PipPath()+"`")
	row("Created", yesNo(exists))
	row("Readonly", yesNo(env.Readonly()))
	row("pip version", pipVersion)
	row("Installed packages", packages)
	row("Build log", "`"+env.LogPath()+"`")
	row("Error log", "`"+env.ErrorLogPath()+"`")
	return sb.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
