// SPDX-License-Identifier: MPL-2.0

package cfgstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// V2 is the legacy layout: every leaf is read back as a string.
	V2 Version = "v2"
	// V3 is the current layout: leaves keep their types.
	V3 Version = "v3"

	// CurrentVersion is written by Save.
	CurrentVersion = V3

	// VersionFileName is the name of the version marker file.
	VersionFileName = "config_version.txt"
)

// ErrSerializationVersion is the sentinel error wrapped by SerializationVersionError.
var ErrSerializationVersion = errors.New("unsupported config serialization version")

type (
	// Version identifies a serialized layout.
	Version string

	// SerializationVersionError reports a version marker with unknown content.
	SerializationVersionError struct {
		Path    string
		Version Version
	}
)

// Error implements the error interface.
func (e *SerializationVersionError) Error() string {
	return fmt.Sprintf("%s: unsupported config version %q (supported: %s, %s)", e.Path, e.Version, V2, V3)
}

// Unwrap returns ErrSerializationVersion so callers can use errors.Is for programmatic detection.
func (e *SerializationVersionError) Unwrap() error { return ErrSerializationVersion }

// String returns the string representation of the Version.
func (v Version) String() string { return string(v) }

// Validate returns nil if the Version is one this package can read.
func (v Version) Validate() error {
	switch v {
	case V2, V3:
		return nil
	default:
		return &SerializationVersionError{Version: v}
	}
}

// ReadVersion returns the layout version of dir. A missing marker means V2.
func ReadVersion(dir string) (Version, error) {
	path := filepath.Join(dir, VersionFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return V2, nil
	}
	if err != nil {
		return "", fmt.Errorf("read version marker: %w", err)
	}
	v := Version(strings.TrimSpace(string(data)))
	if v.Validate() != nil {
		return "", &SerializationVersionError{Path: path, Version: v}
	}
	return v, nil
}
