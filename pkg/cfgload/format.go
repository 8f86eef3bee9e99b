// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// FormatCUE is a CUE document.
	FormatCUE Format = "cue"
	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML document.
	FormatTOML Format = "toml"
	// FormatJSON is a JSON object.
	FormatJSON Format = "json"
	// FormatHCL is an HCL body of attributes and blocks. Import only.
	FormatHCL Format = "hcl"
)

var (
	// ErrUnsupportedFormat is the sentinel error wrapped by UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrNotAMapping is returned when a document's root is not a mapping.
	ErrNotAMapping = errors.New("document root is not a mapping")

	extensions = map[string]Format{
		".cue":  FormatCUE,
		".yaml": FormatYAML,
		".yml":  FormatYAML,
		".toml": FormatTOML,
		".json": FormatJSON,
		".hcl":  FormatHCL,
	}
)

type (
	// Format names a config file syntax.
	Format string

	// UnsupportedFormatError is returned for unknown formats or for formats
	// that cannot be used in the requested direction.
	UnsupportedFormatError struct {
		Format Format
		Op     string
	}
)

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: format %q cannot be used for %s", ErrUnsupportedFormat, e.Format, e.Op)
	}
	return fmt.Sprintf("%s: %q (supported: cue, yaml, toml, json, hcl)", ErrUnsupportedFormat, e.Format)
}

// Unwrap returns ErrUnsupportedFormat so callers can use errors.Is for programmatic detection.
func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// String returns the format name.
func (f Format) String() string { return string(f) }

// Validate returns an error if f is not a known format.
func (f Format) Validate() error {
	switch f {
	case FormatCUE, FormatYAML, FormatTOML, FormatJSON, FormatHCL:
		return nil
	default:
		return &UnsupportedFormatError{Format: f}
	}
}

// CanExport reports whether trees can be written in f.
func (f Format) CanExport() bool {
	return f != FormatHCL && f.Validate() == nil
}

// ParseFormat parses a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	if s == "yml" {
		return FormatYAML, nil
	}
	f := Format(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// FormatFromPath detects the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: Format(strings.TrimPrefix(ext, "."))}
}
