// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load config"},
			expected: "failed to load config",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load config", Resource: "./experiment.cue"},
			expected: "failed to load config: ./experiment.cue",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "apply override", Cause: errors.New("unbalanced parentheses")},
			expected: "failed to apply override: unbalanced parentheses",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load config",
				Resource:  "./experiment.cue",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load config: ./experiment.cue: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := &ActionableError{Operation: "test", Cause: fmt.Errorf("wrapped: %w", sentinel)}

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the sentinel through ActionableError")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	root := errors.New("root cause")
	err := &ActionableError{
		Operation:   "save config",
		Resource:    "/tmp/out",
		Suggestions: []string{"Check permissions", "Use another directory"},
		Cause:       fmt.Errorf("write marker: %w", root),
	}

	plain := err.Format(false)
	if !strings.Contains(plain, "\n  • Check permissions") || !strings.Contains(plain, "\n  • Use another directory") {
		t.Errorf("Format(false) should list suggestions, got:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. write marker: root cause", "2. root cause"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) should contain %q, got:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("load repository settings").
		WithResource("repo_config.yaml").
		WithSuggestion("first").
		WithSuggestion("second").
		WithSuggestion("third").
		WithIssue(RepoConfigInvalidId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "load repository settings" || ae.Resource != "repo_config.yaml" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 3", ae.Suggestions)
	}
	if ae.Issue != RepoConfigInvalidId {
		t.Errorf("Issue = %d, want %d", ae.Issue, RepoConfigInvalidId)
	}
	if !errors.Is(ae, cause) {
		t.Error("Build() should keep the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestActionableError_FormatJoinedCause(t *testing.T) {
	err := NewErrorContext().
		WithOperation("validate repository settings").
		Wrap(errors.Join(errors.New("invalid log level"), errors.New("invalid log format"))).
		Build()

	verbose := err.Format(true)
	for _, want := range []string{"2. invalid log level", "3. invalid log format"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) should contain %q, got:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_BuildCopiesSuggestions(t *testing.T) {
	ctx := NewErrorContext().WithOperation("save config").WithSuggestion("first")
	first := ctx.Build()
	ctx.WithSuggestion("second")

	if len(first.Suggestions) != 1 {
		t.Errorf("earlier Build() result changed: %v", first.Suggestions)
	}
}

func TestIssueOf(t *testing.T) {
	inner := NewErrorContext().WithOperation("parse").WithIssue(OverrideParseFailedId).Wrap(errors.New("bad")).BuildError()
	outer := NewErrorContext().WithOperation("run").Wrap(fmt.Errorf("context: %w", inner)).BuildError()

	id, ok := IssueOf(outer)
	if !ok || id != OverrideParseFailedId {
		t.Errorf("IssueOf() = %d, %v; want %d, true", id, ok, OverrideParseFailedId)
	}

	if _, ok := IssueOf(errors.New("plain")); ok {
		t.Error("IssueOf(plain error) should report false")
	}
	if _, ok := IssueOf(NewErrorContext().WithOperation("x").BuildError()); ok {
		t.Error("IssueOf() without a linked issue should report false")
	}
}
