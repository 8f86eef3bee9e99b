// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSnapshotTag is the sentinel error wrapped by InvalidSnapshotTagError.
var ErrInvalidSnapshotTag = errors.New("invalid snapshot tag")

type (
	// SnapshotTag is the file-name prefix of a saved config, e.g. "config"
	// in config.txt. It must be a single non-blank path element.
	SnapshotTag string

	// InvalidSnapshotTagError is returned when a SnapshotTag is blank, contains
	// a path separator, or names a relative directory.
	InvalidSnapshotTagError struct {
		Value  SnapshotTag
		Reason string
	}
)

// String returns the string representation of the SnapshotTag.
func (t SnapshotTag) String() string { return string(t) }

// Validate returns an error if the tag cannot be used as a file-name prefix.
func (t SnapshotTag) Validate() error {
	s := string(t)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidSnapshotTagError{Value: t, Reason: "must be non-empty"}
	case strings.ContainsAny(s, `/\`):
		return &InvalidSnapshotTagError{Value: t, Reason: "must not contain path separators"}
	case s == "." || s == "..":
		return &InvalidSnapshotTagError{Value: t, Reason: "must not be a relative directory"}
	case strings.ContainsRune(s, 0):
		return &InvalidSnapshotTagError{Value: t, Reason: "must not contain NUL"}
	}
	return nil
}

// Error implements the error interface for InvalidSnapshotTagError.
func (e *InvalidSnapshotTagError) Error() string {
	return fmt.Sprintf("invalid snapshot tag %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidSnapshotTag for errors.Is() compatibility.
func (e *InvalidSnapshotTagError) Unwrap() error { return ErrInvalidSnapshotTag }
