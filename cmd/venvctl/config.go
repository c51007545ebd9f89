// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/invowk/venvctl/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `venvctl config` command tree. A broken config
// file only produces a warning here so that path and init keep working.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage venvctl configuration",
		Long: `Manage venvctl configuration.

Settings are merged from, lowest precedence first:
  - built-in defaults
  - the user file: $XDG_CONFIG_HOME/venvctl/config.cue
  - the project file: .venvctl.cue in the working directory
  - VENVCTL_* environment variables (e.g. VENVCTL_READONLY=true)
  - the --verbose and --readonly flags

--config names a file that replaces both the user and project files.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.configure(cmd.Context(), flags, true)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return showConfigPath(app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default user configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			switch format {
			case "cue":
				fmt.Fprint(app.stdout, config.GenerateCUE(res.Config))
			case "toml":
				out, err := config.GenerateTOML(res.Config)
				if err != nil {
					return err
				}
				fmt.Fprint(app.stdout, out)
			default:
				return fmt.Errorf("unknown format %q (valid: cue, toml)", format)
			}
			return nil
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlags) error {
	res, err := app.loadConfig(ctx, flags)
	if err != nil {
		return err
	}
	cfg := res.Config

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if len(res.Sources) == 0 {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config files"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s:\n", keyStyle.Render("Config files"))
		for _, src := range res.Sources {
			fmt.Fprintf(w, "  - %s\n", src)
		}
	}
	fmt.Fprintln(w)

	optional := func(s string) string {
		if s == "" {
			return SubtitleStyle.Render("(not set)")
		}
		return valueStyle.Render(s)
	}

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("virtualenv_binary"), valueStyle.Render(cfg.VirtualenvBinary))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("python"), optional(cfg.Python))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("system_site_packages"), valueStyle.Render(fmt.Sprint(cfg.SystemSitePackages)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("download_cache"), optional(cfg.DownloadCache))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("readonly"), valueStyle.Render(fmt.Sprint(cfg.Readonly)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))

	return nil
}

func showConfigPath(app *App, flags *rootFlags) error {
	w := app.stdout
	if flags.configPath != "" {
		fmt.Fprintf(w, "Config file: %s\n", flags.configPath)
		return nil
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	userFile, err := config.ConfigFilePath(cfgDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", userFile)
	fmt.Fprintf(w, "Project file: %s\n", filepath.Join(app.workDir, config.ProjectFileName))
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Configuration already exists at"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
