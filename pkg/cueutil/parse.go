// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseAndValidate compiles schema, unifies data with the definition at
// schemaPath and validates the result.
//
// data may be CUE or JSON (JSON is valid CUE), which lets callers validate
// documents read by other decoders by re-encoding them as JSON first.
func ParseAndValidate(schema, data []byte, schemaPath string, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), options.filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := validate(unified, options); err != nil {
		return cue.Value{}, err
	}
	return unified, nil
}

// Compile compiles a schema-less CUE document and validates it. The returned
// value keeps field declaration order.
func Compile(data []byte, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return cue.Value{}, err
	}

	v := cuecontext.New().CompileBytes(data, cue.Filename(options.filename))
	if v.Err() != nil {
		return cue.Value{}, FormatError(v.Err(), options.filename)
	}
	if err := validate(v, options); err != nil {
		return cue.Value{}, err
	}
	return v, nil
}

func applyOptions(opts []Option) parseOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		options.filename = "<input>"
	}
	return options
}

func validate(v cue.Value, options parseOptions) error {
	var err error
	if options.concrete {
		err = v.Validate(cue.Concrete(true))
	} else {
		err = v.Validate()
	}
	return FormatError(err, options.filename)
}
