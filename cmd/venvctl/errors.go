// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/venvctl/internal/config"
	"github.com/invowk/venvctl/internal/issue"
	"github.com/invowk/venvctl/internal/venv"
)

const (
	opLoadConfig     = "load configuration"
	opValidateConfig = "validate configuration"
	opSearch         = "search packages"
)

// classifyError maps a command failure to the issue catalog. The zero Id
// means no issue page applies.
func classifyError(err error) issue.Id {
	var (
		ae        *issue.ActionableError
		launchErr *venv.LaunchError
	)
	isActionable := errors.As(err, &ae)

	switch {
	case err == nil:
		return 0
	case errors.Is(err, venv.ErrReadonly):
		return issue.ReadonlyEnvironmentId
	case errors.Is(err, config.ErrInvalidConfig),
		isActionable && (ae.Operation == opLoadConfig || ae.Operation == opValidateConfig):
		return issue.ConfigLoadFailedId
	case errors.Is(err, venv.ErrPathNotFound):
		return issue.EnvironmentNotFoundId
	case errors.Is(err, venv.ErrInvalidOptions):
		return issue.InvalidPipOptionsId
	case errors.Is(err, venv.ErrWheelBuildUnsupported):
		return issue.WheelUnsupportedId
	case errors.Is(err, venv.ErrWheelBuildFailed):
		return issue.WheelBuildFailedId
	case errors.Is(err, venv.ErrInstallationFailed):
		return issue.PackageInstallFailedId
	case errors.Is(err, venv.ErrRemovalFailed):
		return issue.PackageRemovalFailedId
	case errors.Is(err, venv.ErrCreationFailed):
		return issue.EnvironmentCreationFailedId
	case errors.As(err, &launchErr):
		if strings.HasPrefix(strings.ToLower(filepath.Base(launchErr.Path)), "pip") {
			return issue.PipLaunchFailedId
		}
		return issue.VirtualenvNotFoundId
	case isActionable && ae.Operation == opSearch:
		return issue.SearchFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// reportIssue prints what the error message alone does not carry: the
// suggestions of an actionable error and the matching issue page.
func (a *App) reportIssue(err error) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasSuggestions() {
		fmt.Fprintln(a.stderr)
		fmt.Fprintln(a.stderr, WarningStyle.Render("Suggestions:"))
		for _, s := range ae.Suggestions {
			fmt.Fprintf(a.stderr, "  • %s\n", s)
		}
	}

	id := classifyError(err)
	if id == 0 {
		return
	}
	page := issue.Get(id)
	if page == nil {
		return
	}
	rendered, renderErr := page.Render(a.settings.UI.ColorScheme.GlamourStyle())
	if renderErr != nil {
		a.logger.Debug("failed to render issue page", "id", id, "error", renderErr)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}
