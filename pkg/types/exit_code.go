// SPDX-License-Identifier: MPL-2.0

package types

import "strconv"

// ExitCode is the process status returned by runcfg commands.
type ExitCode int

const (
	// ExitSuccess means the command completed.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure status.
	ExitFailure ExitCode = 1
	// ExitUsage reports invalid flags, arguments or override entries.
	ExitUsage ExitCode = 2
	// ExitDifferent is returned by comparison commands run with
	// --exit-code when the configs differ.
	ExitDifferent ExitCode = 3
)

// ExitCodes lists every status runcfg exits with, in ascending order.
var ExitCodes = []ExitCode{ExitSuccess, ExitFailure, ExitUsage, ExitDifferent}

// IsSuccess reports whether c is ExitSuccess.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal status.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// Meaning returns a one-line description for help output, empty for
// statuses runcfg never uses.
func (c ExitCode) Meaning() string {
	switch c {
	case ExitSuccess:
		return "success; configs are identical for --exit-code comparisons"
	case ExitFailure:
		return "the command failed"
	case ExitUsage:
		return "invalid flags, arguments, modes or override entries"
	case ExitDifferent:
		return "the compared configs differ (with --exit-code)"
	}
	return ""
}
