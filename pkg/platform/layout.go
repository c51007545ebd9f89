// SPDX-License-Identifier: MPL-2.0

package platform

import "path/filepath"

const (
	posixScriptsDir   = "bin"
	windowsScriptsDir = "Scripts"
	windowsExeSuffix  = ".exe"
)

// ScriptsDir returns the directory, relative to an environment root, in which
// virtualenv installs console scripts for goos.
func ScriptsDir(goos string) string {
	if goos == Windows {
		return windowsScriptsDir
	}
	return posixScriptsDir
}

// ExecutableName returns tool with the executable suffix goos expects.
func ExecutableName(goos, tool string) string {
	if goos == Windows {
		return tool + windowsExeSuffix
	}
	return tool
}

// EnvExecutable returns the path of tool inside the environment rooted at root,
// e.g. root/bin/pip on POSIX and root\Scripts\pip.exe on Windows.
func EnvExecutable(goos, root, tool string) string {
	return filepath.Join(root, ScriptsDir(goos), ExecutableName(goos, tool))
}
