// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/runcfg/runcfg/internal/config"
	"github.com/runcfg/runcfg/internal/issue"
	"github.com/runcfg/runcfg/pkg/cfgalgebra"
	"github.com/runcfg/runcfg/pkg/cfgload"
	"github.com/runcfg/runcfg/pkg/cfgoverride"
	"github.com/runcfg/runcfg/pkg/cfgstore"
	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/types"
)

// classifyError maps a command failure to an issue catalog ID, an exit code
// and a styled message. Known sentinels win over the issue attached by an
// ActionableError, since they name the more specific cause.
func classifyError(err error, verbose bool) (issueID issue.Id, code types.ExitCode, styledMsg string) {
	code = types.ExitFailure

	switch {
	case errors.Is(err, cfgoverride.ErrParse):
		issueID, code = issue.OverrideParseFailedId, types.ExitUsage
	case errors.Is(err, cfgalgebra.ErrNotEnoughConfigs):
		issueID, code = issue.NotEnoughConfigsId, types.ExitUsage
	case errors.Is(err, cfgload.ErrUnsupportedFormat):
		issueID, code = issue.UnsupportedFormatId, types.ExitUsage
	case errors.Is(err, cfgtree.ErrInvalidUpdateMode),
		errors.Is(err, cfgtree.ErrInvalidClobberMode),
		errors.Is(err, cfgtree.ErrInvalidReportMode),
		errors.Is(err, types.ErrInvalidSnapshotTag),
		errors.Is(err, config.ErrInvalidLogLevel),
		errors.Is(err, config.ErrInvalidLogFormat):
		code = types.ExitUsage
	case errors.Is(err, cfgtree.ErrReadOnlyConfig):
		issueID = issue.ReadOnlyConfigId
	case errors.Is(err, cfgtree.ErrKeyNotFound):
		issueID = issue.KeyNotFoundId
	case errors.Is(err, cfgtree.ErrInvalidPath):
		issueID = issue.InvalidPathId
	case errors.Is(err, cfgtree.ErrDuplicateConfig):
		issueID = issue.DuplicateConfigId
	case errors.Is(err, cfgstore.ErrSerializationVersion):
		issueID = issue.SerializationVersionId
	case errors.Is(err, config.ErrRepoConfigNotFound):
		issueID = issue.RepoConfigNotFoundId
	case errors.Is(err, fs.ErrPermission):
		issueID = issue.PermissionDeniedId
	case errors.Is(err, fs.ErrNotExist):
		issueID = issue.ConfigFileNotFoundId
	default:
		issueID, _ = issue.IssueOf(err)
	}

	return issueID, code, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors render with their suggestions; verbose mode adds the chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
