// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		python         string
		systemPackages bool
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the environment unless it already exists",
		Long: `Create the environment with virtualenv unless its pip is already present.

Every other command creates the environment on first use as well; create
only makes the step explicit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if python != "" {
				app.settings.Python = python
			}
			if systemPackages {
				app.settings.SystemSitePackages = true
			}

			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if env.Exists() {
				fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Environment already exists at"), CmdStyle.Render(env.Path()))
				return nil
			}
			if err := env.EnsureReady(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Created environment at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(env.Path()))
			return nil
		},
	}

	createCmd.Flags().StringVarP(&python, "python", "p", "", "interpreter to build the environment from (overrides config)")
	createCmd.Flags().BoolVar(&systemPackages, "system-site-packages", false, "give the environment access to the global site-packages")
	return createCmd
}
