// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/cueutil"
)

type (
	// Option configures LoadFile and Decode.
	Option func(*loadOptions)

	loadOptions struct {
		tree        []cfgtree.Option
		filename    string
		maxFileSize int64
	}
)

// WithTreeOptions sets the mutation policies of the imported tree.
func WithTreeOptions(opts ...cfgtree.Option) Option {
	return func(o *loadOptions) {
		o.tree = append(o.tree, opts...)
	}
}

// WithFilename sets the name used in error messages. LoadFile sets it to the
// file's base name.
func WithFilename(name string) Option {
	return func(o *loadOptions) {
		o.filename = name
	}
}

// WithMaxFileSize overrides cueutil.DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *loadOptions) {
		o.maxFileSize = size
	}
}

func newLoadOptions(opts []Option) loadOptions {
	o := loadOptions{filename: "<input>", maxFileSize: cueutil.DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoadFile reads path and imports it, detecting the format from the
// extension.
func LoadFile(path string, opts ...Option) (*cfgtree.Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	opts = append([]Option{WithFilename(filepath.Base(path))}, opts...)
	c, err := Decode(data, format, opts...)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded config file", "path", path, "format", format, "keys", c.Len())
	return c, nil
}

// Decode imports data written in format.
func Decode(data []byte, format Format, opts ...Option) (*cfgtree.Config, error) {
	o := newLoadOptions(opts)
	if err := cueutil.CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	var (
		d   cfgtree.Dict
		err error
	)
	switch format {
	case FormatCUE:
		d, err = decodeCUE(data, o)
	case FormatYAML:
		d, err = decodeYAML(data)
	case FormatTOML:
		d, err = decodeTOML(data)
	case FormatJSON:
		d, err = decodeJSON(data)
	case FormatHCL:
		d, err = decodeHCL(data, o)
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.filename, err)
	}
	return cfgtree.FromDict(d, o.tree...)
}
