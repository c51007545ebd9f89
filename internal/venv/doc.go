// SPDX-License-Identifier: MPL-2.0

// Package venv drives virtualenv and pip for a single on-disk Python environment.
//
// An Environment is a cheap handle bound to a directory. Nothing touches the
// filesystem until the first operation that needs pip, at which point the
// directory is created with virtualenv unless pip is already present. Every
// operation then runs pip as a child process inside the environment, captures
// its output into build.log and build.err, and turns non-zero exits into
// typed errors:
//
//	env, err := venv.New("/srv/envs/app", venv.WithDownloadCache("~/.cache/pip"))
//	if err != nil {
//		return err
//	}
//	if err := env.Install(ctx, pkgspec.ParseRequirement("requests==2.31.0"), venv.InstallOptions{}); err != nil {
//		var pkgErr *venv.PackageError
//		if errors.As(err, &pkgErr) {
//			fmt.Println(pkgErr.Output)
//		}
//		return err
//	}
//
// An Environment holds no locks and no OS resources between calls. It must
// not be shared by goroutines that mutate the same environment.
package venv
