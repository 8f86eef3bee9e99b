// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"errors"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"experiment.cue", FormatCUE, false},
		{"conf/settings.YAML", FormatYAML, false},
		{"settings.yml", FormatYAML, false},
		{"pyproject.toml", FormatTOML, false},
		{"values.json", FormatJSON, false},
		{"main.hcl", FormatHCL, false},
		{"settings.ini", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("error does not wrap ErrUnsupportedFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"json": FormatJSON, ".toml": FormatTOML, "YML": FormatYAML, "cue": FormatCUE} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(xml) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatCanExport(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatCUE, FormatYAML, FormatTOML, FormatJSON} {
		if !f.CanExport() {
			t.Errorf("%s.CanExport() = false", f)
		}
	}
	if FormatHCL.CanExport() {
		t.Error("hcl.CanExport() = true")
	}
	if Format("xml").CanExport() {
		t.Error("xml.CanExport() = true")
	}
}
