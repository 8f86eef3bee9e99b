// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"fmt"
	"os"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// Encode renders c in format. Opaque leaves are written as their display
// strings.
func Encode(c *cfgtree.Config, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(c)
	case FormatYAML:
		return EncodeYAML(c)
	case FormatTOML:
		return EncodeTOML(c)
	case FormatCUE:
		return EncodeCUE(c)
	case FormatHCL:
		return nil, &UnsupportedFormatError{Format: format, Op: "export"}
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

// WriteFile encodes c in the format implied by path and writes it.
func WriteFile(c *cfgtree.Config, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return WriteFormat(c, path, format)
}

// WriteFormat encodes c in format and writes it to path, whatever its
// extension.
func WriteFormat(c *cfgtree.Config, path string, format Format) error {
	data, err := Encode(c, format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
