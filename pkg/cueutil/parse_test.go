// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
)

const testSchema = `
#Settings: {
	name:         string
	count:        int
	enabled:      bool
	description?: string
}
`

func TestParseAndValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantErr func(error) bool
	}{
		{
			name: "type mismatch names file and field",
			data: `name: "test", count: "many", enabled: true`,
			opts: []Option{WithFilename("settings.cue")},
			wantErr: func(err error) bool {
				return strings.Contains(err.Error(), "settings.cue") && strings.Contains(err.Error(), "count")
			},
		},
		{
			name:    "missing required field",
			data:    `name: "x"`,
			wantErr: func(err error) bool { return err != nil },
		},
		{
			name:    "syntax error",
			data:    `name: {`,
			wantErr: func(err error) bool { return err != nil },
		},
		{
			name:    "size limit",
			data:    `name: "x"`,
			opts:    []Option{WithMaxFileSize(3)},
			wantErr: func(err error) bool { return errors.Is(err, ErrFileTooLarge) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndValidate([]byte(testSchema), []byte(tt.data), "#Settings", tt.opts...)
			if err == nil || !tt.wantErr(err) {
				t.Errorf("ParseAndValidate() error = %v", err)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	v, err := Compile([]byte("b: 1\na: {c: \"x\"}\n"), WithFilename("tree.cue"))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	iter, err := v.Fields()
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	var labels []string
	for iter.Next() {
		labels = append(labels, iter.Selector().String())
	}
	if strings.Join(labels, ",") != "b,a" {
		t.Errorf("field order = %v, want [b a]", labels)
	}

	if _, err := Compile([]byte("a: int")); err == nil {
		t.Error("Compile() of a non-concrete document should fail")
	}
	if _, err := Compile([]byte("a: int"), WithConcrete(false)); err != nil {
		t.Errorf("Compile() with WithConcrete(false) error = %v", err)
	}
	if _, err := Compile([]byte("a: {")); err == nil {
		t.Error("Compile() of a syntax error should fail")
	}
}

func TestParseAndValidate(t *testing.T) {
	t.Parallel()

	v, err := ParseAndValidate([]byte(testSchema), []byte(`{"name": "n", "count": 2, "enabled": true}`), "#Settings")
	if err != nil {
		t.Fatalf("ParseAndValidate() error = %v", err)
	}
	count, err := v.LookupPath(cue.ParsePath("count")).Int64()
	if err != nil || count != 2 {
		t.Errorf("count = %d, %v; want 2", count, err)
	}

	if _, err := ParseAndValidate([]byte(testSchema), []byte(`{"name": 1}`), "#Settings"); err == nil {
		t.Error("ParseAndValidate() should reject a type mismatch")
	}
	if _, err := ParseAndValidate([]byte(testSchema), []byte(`{}`), "#Missing"); err == nil {
		t.Error("ParseAndValidate() should fail for an unknown definition")
	}
}
