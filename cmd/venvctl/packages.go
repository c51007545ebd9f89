// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/invowk/venvctl/internal/venv"
	"github.com/invowk/venvctl/pkg/pkgspec"

	"github.com/spf13/cobra"
)

// requirementFlags are the selectors shared by the package commands.
type requirementFlags struct {
	files    []string
	editable []string
}

func (f *requirementFlags) register(cmd *cobra.Command, withEditable bool) {
	cmd.Flags().StringArrayVarP(&f.files, "requirement", "r", nil, "install from the given requirements file (repeatable)")
	if withEditable {
		cmd.Flags().StringArrayVarP(&f.editable, "editable", "e", nil, "install a project in editable mode from a path or VCS url (repeatable)")
	}
}

// requirements combines positional arguments and flags, positional first.
func (f *requirementFlags) requirements(args []string) ([]pkgspec.Requirement, error) {
	reqs := make([]pkgspec.Requirement, 0, len(args)+len(f.files)+len(f.editable))
	for _, arg := range args {
		reqs = append(reqs, pkgspec.ParseRequirement(arg))
	}
	for _, file := range f.files {
		reqs = append(reqs, pkgspec.Requirement{Mode: pkgspec.ModeRequirementsFile, Target: file})
	}
	for _, target := range f.editable {
		reqs = append(reqs, pkgspec.Requirement{Mode: pkgspec.ModeEditable, Target: target, Spec: pkgspec.Parse(target)})
	}
	if len(reqs) == 0 {
		return nil, errors.New("no package given")
	}
	return reqs, nil
}

func newInstallCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		sel  requirementFlags
		opts venv.InstallOptions
	)

	installCmd := &cobra.Command{
		Use:   "install [package...]",
		Short: "Install packages unless they are already present",
		Long: `Install packages into the environment.

A package is a name (requests), a pinned version (requests==2.31.0) or a VCS
url (git+https://host/repo.git#egg=name). Packages already present are
skipped unless --force or --upgrade is given. Editable projects and
requirements files are always handed to pip.`,
		Example: `  venvctl install requests==2.31.0 flask
  venvctl install -r requirements.txt
  venvctl install -e ./src/mylib
  venvctl install --upgrade -o --index-url=https://mirror/simple requests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := sel.requirements(args)
			if err != nil {
				return err
			}
			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				if err := env.Install(cmd.Context(), req, opts); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(req.String()))
			}
			return nil
		},
	}

	sel.register(installCmd, true)
	installCmd.Flags().BoolVar(&opts.Force, "force", false, "reinstall even when the package is present")
	installCmd.Flags().BoolVarP(&opts.Upgrade, "upgrade", "U", false, "upgrade to the newest available version")
	installCmd.Flags().StringArrayVarP(&opts.Options, "option", "o", nil, "extra pip argument, one token each (repeatable)")
	return installCmd
}

func newUninstallCommand(app *App, flags *rootFlags) *cobra.Command {
	var sel requirementFlags

	uninstallCmd := &cobra.Command{
		Use:   "uninstall [package...]",
		Short: "Remove installed packages",
		Long: `Remove packages from the environment. Packages that are not installed are
skipped. Every package listed in a requirements file is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := sel.requirements(args)
			if err != nil {
				return err
			}
			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				if err := env.Uninstall(cmd.Context(), req); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(req.String()))
			}
			return nil
		},
	}

	sel.register(uninstallCmd, false)
	return uninstallCmd
}

func newUpgradeCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		sel   requirementFlags
		all   bool
		force bool
	)

	upgradeCmd := &cobra.Command{
		Use:   "upgrade [package...]",
		Short: "Upgrade packages to their newest version",
		Long: `Upgrade the given packages, or with --all every installed package.

With --all the package list is read once up front and the first failing
upgrade stops the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && (len(args) > 0 || len(sel.files) > 0) {
				return errors.New("--all cannot be combined with package arguments")
			}

			var reqs []pkgspec.Requirement
			if !all {
				var err error
				if reqs, err = sel.requirements(args); err != nil {
					return err
				}
			}

			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if all {
				if err := env.UpgradeAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s Upgraded all packages in %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(env.Path()))
				return nil
			}

			for _, req := range reqs {
				if err := env.Upgrade(cmd.Context(), req, force); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(req.String()))
			}
			return nil
		},
	}

	sel.register(upgradeCmd, false)
	upgradeCmd.Flags().BoolVar(&all, "all", false, "upgrade every installed package")
	upgradeCmd.Flags().BoolVar(&force, "force", false, "reinstall the package and its dependencies even when up to date")
	return upgradeCmd
}

func newWheelCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		sel     requirementFlags
		options []string
	)

	wheelCmd := &cobra.Command{
		Use:   "wheel [package...]",
		Short: "Build wheel archives",
		Long: `Build wheel archives with pip wheel. The wheel package must be installed in
the environment first.`,
		Example: `  venvctl wheel -r requirements.txt -o -w -o dist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := sel.requirements(args)
			if err != nil {
				return err
			}
			env, err := app.environment(cmd.Context(), flags)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				if err := env.BuildWheel(cmd.Context(), req, options); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s Built %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(req.String()))
			}
			return nil
		},
	}

	sel.register(wheelCmd, false)
	wheelCmd.Flags().StringArrayVarP(&options, "option", "o", nil, "extra pip wheel argument, one token each (repeatable)")
	return wheelCmd
}
