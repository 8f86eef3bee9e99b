// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound is the sentinel error wrapped by KeyNotFoundError.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
	ErrInvalidPath = errors.New("invalid path")
	// ErrReadOnlyConfig is the sentinel error wrapped by ReadOnlyConfigError.
	ErrReadOnlyConfig = errors.New("config value is read-only")
	// ErrDuplicateConfig is the sentinel error wrapped by DuplicateConfigError.
	ErrDuplicateConfig = errors.New("duplicate config")
	// ErrEmptyConfigList is returned when a single config is requested from an empty list.
	ErrEmptyConfigList = errors.New("config list is empty")
	// ErrMultipleConfigs is returned when a single config is requested from a list holding several.
	ErrMultipleConfigs = errors.New("config list holds more than one config")
)

type (
	// KeyNotFoundError reports a lookup that failed at Path[Segment].
	KeyNotFoundError struct {
		Path      Path
		Segment   int
		Available []string
	}

	// InvalidPathError reports a path that descends through a leaf or is empty.
	InvalidPathError struct {
		Path    Path
		Segment int
		Found   Kind
		Reason  string
	}

	// ReadOnlyConfigError reports an assignment rejected by the update or
	// clobber policy of the receiving Config.
	ReadOnlyConfigError struct {
		Path    Path
		Mode    UpdateMode
		Clobber bool
		Old     Value
		New     Value
	}

	// DuplicateConfigError reports two entries of a ConfigList with equal content.
	DuplicateConfigError struct {
		First      int
		Second     int
		FirstName  string
		SecondName string
		Rendered   string
	}
)

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	seg := ""
	if e.Segment >= 0 && e.Segment < len(e.Path) {
		seg = e.Path[e.Segment]
	}
	msg := fmt.Sprintf("key %q not found", seg)
	if len(e.Path) > 1 {
		msg += fmt.Sprintf(" while resolving %s", e.Path.Tuple())
	}
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// Unwrap returns ErrKeyNotFound so callers can use errors.Is for programmatic detection.
func (e *KeyNotFoundError) Unwrap() error { return ErrKeyNotFound }

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid path %s: %s", e.Path.Tuple(), e.Reason)
	}
	return fmt.Sprintf("invalid path %s: %q is a %s, not a subtree", e.Path.Tuple(), e.Path[e.Segment], e.Found)
}

// Unwrap returns ErrInvalidPath so callers can use errors.Is for programmatic detection.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

// Error implements the error interface.
func (e *ReadOnlyConfigError) Error() string {
	if e.Clobber {
		return fmt.Sprintf("cannot replace %s at %s with %s: clobbering is disabled",
			kindOf(e.Old), e.Path.Tuple(), kindOf(e.New))
	}
	return fmt.Sprintf("cannot reassign %s (update mode %s): existing value %s, new value %s",
		e.Path.Tuple(), e.Mode, Repr(e.Old), Repr(e.New))
}

// Unwrap returns ErrReadOnlyConfig so callers can use errors.Is for programmatic detection.
func (e *ReadOnlyConfigError) Unwrap() error { return ErrReadOnlyConfig }

// Error implements the error interface.
func (e *DuplicateConfigError) Error() string {
	first, second := fmt.Sprintf("#%d", e.First), fmt.Sprintf("#%d", e.Second)
	if e.FirstName != "" {
		first += " (" + e.FirstName + ")"
	}
	if e.SecondName != "" {
		second += " (" + e.SecondName + ")"
	}
	return fmt.Sprintf("configs %s and %s are identical:\n%s", first, second, e.Rendered)
}

// Unwrap returns ErrDuplicateConfig so callers can use errors.Is for programmatic detection.
func (e *DuplicateConfigError) Unwrap() error { return ErrDuplicateConfig }

func kindOf(v Value) string {
	if v == nil {
		return KindMissing.String()
	}
	if v.Kind() == KindConfig {
		return "subtree"
	}
	return "leaf"
}
