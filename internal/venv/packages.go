// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/invowk/venvctl/pkg/pkgspec"

	"golang.org/x/mod/semver"
)

// freezeAllSince is the first pip release whose freeze accepts --all.
const freezeAllSince = "v8.1.0"

// InstallOptions controls how Install invokes pip.
type InstallOptions struct {
	// Force reinstalls even when the package is present (--ignore-installed),
	// or together with Upgrade reinstalls dependencies too (--force-reinstall).
	Force bool
	// Upgrade upgrades the package to the newest version (--upgrade).
	Upgrade bool
	// Options are extra pip arguments appended last, one token each.
	Options []string
}

// Install installs req unless it is already present.
//
// The presence check only applies to plain package requirements without
// Force or Upgrade. Editable and requirements-file directives are always
// handed to pip because their installed state cannot be derived from the
// directive itself. A skipped install is recorded in build.log.
func (e *Environment) Install(ctx context.Context, req pkgspec.Requirement, opts InstallOptions) error {
	if e.readonly {
		return &ReadonlyError{Op: "install " + req.Name(), Path: e.path}
	}
	if err := validateOptions(opts.Options); err != nil {
		return err
	}

	if !opts.Force && !opts.Upgrade && req.Checkable() {
		installed, err := e.IsInstalled(ctx, req.Spec)
		if err != nil {
			return err
		}
		if installed {
			e.logSkip(fmt.Sprintf("%s is already installed, skipping (use force to override)", req.Target))
			return nil
		}
	}

	_, err := e.pip(ctx, InstallArgs(req, opts))
	return packageError(OpInstall, req, err)
}

// InstallArgs returns the pip arguments (without the pip executable) Install uses.
func InstallArgs(req pkgspec.Requirement, opts InstallOptions) []string {
	args := append([]string{"install"}, req.Args()...)
	switch {
	case opts.Upgrade:
		args = append(args, "--upgrade")
		if opts.Force {
			args = append(args, "--force-reinstall")
		}
	case opts.Force:
		args = append(args, "--ignore-installed")
	}
	return append(args, opts.Options...)
}

// Uninstall removes req if it is installed. A requirements-file directive is
// always handed to pip. A skipped removal is recorded in build.log.
func (e *Environment) Uninstall(ctx context.Context, req pkgspec.Requirement) error {
	if e.readonly {
		return &ReadonlyError{Op: "uninstall " + req.Name(), Path: e.path}
	}

	args := []string{"uninstall", "-y"}
	if req.Mode == pkgspec.ModeRequirementsFile {
		args = append(args, req.Args()...)
	} else {
		installed, err := e.IsInstalled(ctx, req.Spec)
		if err != nil {
			return err
		}
		if !installed {
			e.logSkip(fmt.Sprintf("%s is not installed, skipping", req.Target))
			return nil
		}
		args = append(args, req.Spec.PackageName())
	}

	_, err := e.pip(ctx, args)
	return packageError(OpUninstall, req, err)
}

// Upgrade upgrades req. With force, the package and its dependencies are
// reinstalled even when up to date.
func (e *Environment) Upgrade(ctx context.Context, req pkgspec.Requirement, force bool) error {
	return e.Install(ctx, req, InstallOptions{Upgrade: true, Force: force})
}

// UpgradeAll upgrades every installed package. The package list is taken
// once before the first upgrade. The first failing upgrade stops the loop
// and its error is returned; packages after it are left untouched.
func (e *Environment) UpgradeAll(ctx context.Context) error {
	names, err := e.InstalledPackageNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := e.Upgrade(ctx, pkgspec.ParseRequirement(name), false); err != nil {
			return err
		}
	}
	return nil
}

// BuildWheel builds wheel archives for req. The wheel package must already be
// installed in the environment, otherwise ErrWheelBuildUnsupported is returned
// without running pip wheel.
func (e *Environment) BuildWheel(ctx context.Context, req pkgspec.Requirement, options []string) error {
	if e.readonly {
		return &ReadonlyError{Op: "build wheel for " + req.Name(), Path: e.path}
	}
	if err := validateOptions(options); err != nil {
		return err
	}

	hasWheel, err := e.IsInstalled(ctx, pkgspec.NameOnly{Name: "wheel"})
	if err != nil {
		return err
	}
	if !hasWheel {
		return fmt.Errorf("%w: install the wheel package first", ErrWheelBuildUnsupported)
	}

	args := append([]string{"wheel"}, req.Args()...)
	args = append(args, options...)
	_, err = e.pip(ctx, args)
	return packageError(OpWheel, req, err)
}

// IsInstalled reports whether spec is in the live installed set. A pinned
// spec needs the exact version; an unpinned one only an equivalent name.
// A nil spec, as carried by requirements-file directives, is never installed.
func (e *Environment) IsInstalled(ctx context.Context, spec pkgspec.Spec) (bool, error) {
	if spec == nil {
		return false, nil
	}
	pkgs, err := e.InstalledPackages(ctx)
	if err != nil {
		return false, err
	}
	return pkgspec.Contains(pkgs, spec), nil
}

// InstalledPackages returns the packages pip freeze reports, in pip's order.
// The result is never cached.
func (e *Environment) InstalledPackages(ctx context.Context) ([]pkgspec.Package, error) {
	args := []string{"freeze", "-l"}

	all, err := e.freezeSupportsAll(ctx)
	if err != nil {
		return nil, err
	}
	if all {
		args = append(args, "--all")
	}

	out, err := e.pip(ctx, args)
	if err != nil {
		return nil, err
	}
	return pkgspec.ParseFreeze(out), nil
}

// InstalledPackageNames returns the lower-cased names of the installed packages.
func (e *Environment) InstalledPackageNames(ctx context.Context) ([]string, error) {
	pkgs, err := e.InstalledPackages(ctx)
	if err != nil {
		return nil, err
	}
	return pkgspec.Names(pkgs), nil
}

// Search queries the package index and maps each result name to its summary.
// Nothing is written to the build logs.
func (e *Environment) Search(ctx context.Context, term string) (map[string]string, error) {
	out, err := e.pip(ctx, []string{"search", term}, WithoutLog())
	if err != nil {
		return nil, err
	}
	return pkgspec.ParseSearch(out), nil
}

// SearchNames returns the sorted result names of Search.
func (e *Environment) SearchNames(ctx context.Context, term string) ([]string, error) {
	results, err := e.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(results)), nil
}

// PipVersion returns the version pip reports for itself, e.g. "23.2.1".
// The first successful answer is cached for the lifetime of the handle.
func (e *Environment) PipVersion(ctx context.Context) (string, error) {
	if e.pipVersion != "" {
		return e.pipVersion, nil
	}

	out, err := e.pip(ctx, []string{"-V"})
	if err != nil {
		return "", err
	}

	// pip 23.2.1 from /env/lib/python3.11/site-packages/pip (python 3.11)
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return "", fmt.Errorf("unexpected pip -V output %q", strings.TrimSpace(out))
	}
	e.pipVersion = fields[1]
	return e.pipVersion, nil
}

func (e *Environment) freezeSupportsAll(ctx context.Context) (bool, error) {
	version, err := e.PipVersion(ctx)
	if err != nil {
		return false, err
	}
	canonical := semverOf(version)
	if canonical == "" {
		e.logger.Debug("unrecognized pip version, omitting freeze --all", "version", version)
		return false, nil
	}
	return semver.Compare(canonical, freezeAllSince) >= 0, nil
}

// semverOf maps a PEP 440 release such as "23.2.1", "24.0" or "9.0.3.post1"
// onto a semver string, keeping at most three numeric components.
func semverOf(version string) string {
	var parts []string
	for part := range strings.SplitSeq(version, ".") {
		digits := part
		if i := strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
			digits = part[:i]
		}
		if digits == "" {
			break
		}
		parts = append(parts, digits)
		if len(parts) == 3 || len(digits) != len(part) {
			break
		}
	}
	if len(parts) == 0 {
		return ""
	}
	v := "v" + strings.Join(parts, ".")
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

func (e *Environment) logSkip(msg string) {
	e.appendLog(LogFileName, msg)
	e.logger.Info(msg, "env", e.path)
}

// packageError wraps a pip non-zero exit for op. Other errors pass through.
func packageError(op Operation, req pkgspec.Requirement, err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}
	return &PackageError{
		Op:       op,
		Package:  req.Name(),
		ExitCode: cmdErr.ExitCode,
		Output:   cmdErr.Output(),
		Err:      cmdErr,
	}
}
