// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"errors"
	"fmt"
)

const (
	// UpdateAssignOnce rejects reassigning an existing leaf to a different
	// value. Assigning a subtree over a subtree merges key by key.
	UpdateAssignOnce UpdateMode = "assign_once"
	// UpdateOverwrite replaces existing values, subtrees included.
	UpdateOverwrite UpdateMode = "overwrite"
	// UpdateUpdate replaces existing leaves and merges subtrees recursively.
	UpdateUpdate UpdateMode = "update"

	// ClobberAllow permits replacing a leaf with a subtree and vice versa.
	ClobberAllow ClobberMode = "allow_clobbering_keys"
	// ClobberForbid rejects any assignment that changes a key's shape.
	ClobberForbid ClobberMode = "no_clobbering"

	// ReportNone returns Missing for absent keys without a trace.
	ReportNone ReportMode = "none"
	// ReportWarn logs a warning and returns Missing for absent keys.
	ReportWarn ReportMode = "warn"
	// ReportRaise returns a KeyNotFoundError for absent keys.
	ReportRaise ReportMode = "raise"

	// DefaultUpdateMode is the update mode of a Config built without options.
	DefaultUpdateMode = UpdateAssignOnce
	// DefaultClobberMode is the clobber mode of a Config built without options.
	DefaultClobberMode = ClobberAllow
	// DefaultReportMode is the report mode of a Config built without options.
	DefaultReportMode = ReportRaise
)

var (
	// ErrInvalidUpdateMode is the sentinel error wrapped by InvalidUpdateModeError.
	ErrInvalidUpdateMode = errors.New("invalid update mode")
	// ErrInvalidClobberMode is the sentinel error wrapped by InvalidClobberModeError.
	ErrInvalidClobberMode = errors.New("invalid clobber mode")
	// ErrInvalidReportMode is the sentinel error wrapped by InvalidReportModeError.
	ErrInvalidReportMode = errors.New("invalid report mode")
)

type (
	// UpdateMode controls reassignment of existing keys.
	UpdateMode string

	// ClobberMode controls shape changes between leaves and subtrees.
	ClobberMode string

	// ReportMode controls how missing keys are reported on read.
	ReportMode string

	// InvalidUpdateModeError is returned when an UpdateMode value is not recognized.
	InvalidUpdateModeError struct {
		Value UpdateMode
	}

	// InvalidClobberModeError is returned when a ClobberMode value is not recognized.
	InvalidClobberModeError struct {
		Value ClobberMode
	}

	// InvalidReportModeError is returned when a ReportMode value is not recognized.
	InvalidReportModeError struct {
		Value ReportMode
	}
)

// Error implements the error interface.
func (e *InvalidUpdateModeError) Error() string {
	return fmt.Sprintf("invalid update mode %q (valid: assign_once, overwrite, update)", e.Value)
}

// Unwrap returns ErrInvalidUpdateMode so callers can use errors.Is for programmatic detection.
func (e *InvalidUpdateModeError) Unwrap() error { return ErrInvalidUpdateMode }

// Error implements the error interface.
func (e *InvalidClobberModeError) Error() string {
	return fmt.Sprintf("invalid clobber mode %q (valid: allow_clobbering_keys, no_clobbering)", e.Value)
}

// Unwrap returns ErrInvalidClobberMode so callers can use errors.Is for programmatic detection.
func (e *InvalidClobberModeError) Unwrap() error { return ErrInvalidClobberMode }

// Error implements the error interface.
func (e *InvalidReportModeError) Error() string {
	return fmt.Sprintf("invalid report mode %q (valid: none, warn, raise)", e.Value)
}

// Unwrap returns ErrInvalidReportMode so callers can use errors.Is for programmatic detection.
func (e *InvalidReportModeError) Unwrap() error { return ErrInvalidReportMode }

// String returns the string representation of the UpdateMode.
func (m UpdateMode) String() string { return string(m) }

// Validate returns nil if the UpdateMode is one of the defined modes.
func (m UpdateMode) Validate() error {
	switch m {
	case UpdateAssignOnce, UpdateOverwrite, UpdateUpdate:
		return nil
	default:
		return &InvalidUpdateModeError{Value: m}
	}
}

// String returns the string representation of the ClobberMode.
func (m ClobberMode) String() string { return string(m) }

// Validate returns nil if the ClobberMode is one of the defined modes.
func (m ClobberMode) Validate() error {
	switch m {
	case ClobberAllow, ClobberForbid:
		return nil
	default:
		return &InvalidClobberModeError{Value: m}
	}
}

// String returns the string representation of the ReportMode.
func (m ReportMode) String() string { return string(m) }

// Validate returns nil if the ReportMode is one of the defined modes.
func (m ReportMode) Validate() error {
	switch m {
	case ReportNone, ReportWarn, ReportRaise:
		return nil
	default:
		return &InvalidReportModeError{Value: m}
	}
}

// ParseUpdateMode converts s to an UpdateMode. The empty string yields the default.
func ParseUpdateMode(s string) (UpdateMode, error) {
	if s == "" {
		return DefaultUpdateMode, nil
	}
	m := UpdateMode(s)
	return m, m.Validate()
}

// ParseClobberMode converts s to a ClobberMode. The empty string yields the default.
func ParseClobberMode(s string) (ClobberMode, error) {
	if s == "" {
		return DefaultClobberMode, nil
	}
	m := ClobberMode(s)
	return m, m.Validate()
}

// ParseReportMode converts s to a ReportMode. The empty string yields the default.
func ParseReportMode(s string) (ReportMode, error) {
	if s == "" {
		return DefaultReportMode, nil
	}
	m := ReportMode(s)
	return m, m.Validate()
}
