// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/invowk/venvctl/internal/issue"
	"github.com/invowk/venvctl/pkg/pkgspec"
	"github.com/invowk/venvctl/pkg/types"

	"github.com/spf13/cobra"
)

func newFreezeCommand(app *App, flags *rootFlags) *cobra.Command {
	var namesOnly bool

	freezeCmd := &cobra.Command{
		Use:   "freeze",
		Short: "List installed packages",
		Long: `List the packages installed in the environment as name==version, in pip's
order. With --names only the lower-cased names are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if namesOnly {
				names, err := env.InstalledPackageNames(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(app.stdout, name)
				}
				return nil
			}

			pkgs, err := env.InstalledPackages(cmd.Context())
			if err != nil {
				return err
			}
			for _, pkg := range pkgs {
				fmt.Fprintln(app.stdout, pkg.String())
			}
			return nil
		},
	}

	freezeCmd.Flags().BoolVar(&namesOnly, "names", false, "print package names only")
	return freezeCmd
}

func newInstalledCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "installed <package> [version]",
		Short: "Check whether a package is installed",
		Long: `Check whether a package is installed. A version, given either as a second
argument or as name==version, must match exactly. Name variants such as
Foo_Bar and foo-bar are equivalent.

Exits with status 1 when the package is absent.`,
		Example: `  venvctl installed requests
  venvctl installed requests 2.31.0
  venvctl installed Zope_Interface==6.1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := pkgspec.Parse(args[0])
			if len(args) == 2 {
				spec = pkgspec.FromPair(args[0], args[1])
			}

			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}
			installed, err := env.IsInstalled(cmd.Context(), spec)
			if err != nil {
				return err
			}
			if !installed {
				return &ExitError{Code: types.ExitFailure, Err: fmt.Errorf("%s is not installed", spec)}
			}
			fmt.Fprintf(app.stdout, "%s %s is installed\n", SuccessStyle.Render("✓"), CmdStyle.Render(spec.String()))
			return nil
		},
	}
}

func newSearchCommand(app *App, flags *rootFlags) *cobra.Command {
	var namesOnly bool

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the package index",
		Long: `Search the package index with pip search and print each result with its
summary, sorted by name. The index must still provide the search API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}

			results, err := env.Search(cmd.Context(), args[0])
			if err != nil {
				return issue.NewErrorContext().
					WithOperation(opSearch).
					WithResource(args[0]).
					WithSuggestion("Check that the configured index supports pip search").
					Wrap(err).
					BuildError()
			}

			for _, name := range slices.Sorted(maps.Keys(results)) {
				if namesOnly || results[name] == "" {
					fmt.Fprintln(app.stdout, name)
					continue
				}
				fmt.Fprintf(app.stdout, "%s - %s\n", CmdStyle.Render(name), results[name])
			}
			return nil
		},
	}

	searchCmd.Flags().BoolVar(&namesOnly, "names", false, "print result names only")
	return searchCmd
}
