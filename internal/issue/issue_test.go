// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ConfigFileNotFoundId, false, "Config file not found"},
		{ConfigLoadFailedId, false, "Failed to load the config file"},
		{KeyNotFoundId, false, "Key not found"},
		{InvalidPathId, false, "Invalid config path"},
		{ReadOnlyConfigId, false, "assign_once"},
		{DuplicateConfigId, false, "Duplicate configs"},
		{OverrideParseFailedId, false, "--set-config-value"},
		{SerializationVersionId, false, "config_version.txt"},
		{RepoConfigNotFoundId, false, "RUNCFG_REPO_CONFIG_PATH"},
		{RepoConfigInvalidId, false, "repo_info"},
		{NotEnoughConfigsId, false, "at least two"},
		{UnsupportedFormatId, false, "HCL"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, issue.Id())
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != int(PermissionDeniedId) {
		t.Errorf("Values() returned %d issues, want %d", len(issues), PermissionDeniedId)
	}
	for i, issue := range issues {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), i+1)
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	issue := &Issue{
		id:       Id(9999),
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	links := issue.DocLinks()
	links[0] = "modified"
	if issue.DocLinks()[0] != "https://docs.example.com" {
		t.Error("DocLinks() should return a clone")
	}

	ext := issue.ExtLinks()
	ext[0] = "modified"
	if issue.ExtLinks()[0] != "https://external.example.com" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	rendered, err := Get(ReadOnlyConfigId).Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	if !strings.Contains(rendered, "read-only") {
		t.Errorf("Render() output should contain the message, got %q", rendered)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() should not add a See also section without links")
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	for _, want := range []string{"## See also", "- <https://docs.example.com>", "- <https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() output should contain %q, got:\n%s", want, rendered)
		}
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	out, err := Get(KeyNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Key not found") {
		t.Errorf("rendered output should contain the title, got:\n%s", out)
	}
}
