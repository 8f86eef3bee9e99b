// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: the operation that failed,
	// the file or config key it touched, what to try next and, optionally,
	// the catalog entry with longer guidance.
	//
	// Build one with ErrorContext:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load repository settings").
	//		WithResource("./repo_config.yaml").
	//		WithSuggestion("Set RUNCFG_REPO_CONFIG_PATH to the settings file").
	//		WithIssue(issue.RepoConfigNotFoundId).
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase, e.g. "load config" or "apply override".
		Operation string
		// Resource is the file, directory or dotted config key involved.
		Resource string
		// Suggestions are short remediation hints, one per line.
		Suggestions []string
		// Issue links the catalog entry rendered below the message.
		Issue Id
		// Cause is the underlying error.
		Cause error
	}

	// ErrorContext accumulates the fields of an ActionableError. The zero
	// operation makes Build return nil, so a context can be prepared before
	// knowing whether anything failed.
	ErrorContext struct {
		ae ActionableError
	}
)

// NewErrorContext creates an empty ErrorContext.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause so errors.Is and errors.As see through the
// context.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasSuggestions reports whether any remediation hint is attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Format renders the message, a bulleted list of suggestions and, in verbose
// mode, the numbered cause chain:
//
//	failed to <operation>: <resource>: <cause>
//
//	  • <suggestion>
//
//	Error chain:
//	  1. <cause>
//	  2. <cause of cause>
//
// Joined errors, such as the validation failures of repository settings,
// contribute each of their branches to the chain.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.HasSuggestions() {
		b.WriteByte('\n')
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for i, err := range causeChain(e.Cause) {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
		}
	}
	return b.String()
}

// causeChain flattens err and everything it wraps, depth first.
func causeChain(err error) []error {
	var chain []error
	var walk func(error)
	walk = func(err error) {
		for err != nil {
			chain = append(chain, err)
			if joined, ok := err.(interface{ Unwrap() []error }); ok {
				for _, branch := range joined.Unwrap() {
					walk(branch)
				}
				return
			}
			err = errors.Unwrap(err)
		}
	}
	walk(err)
	return chain
}

// WithOperation sets the failed operation, as a verb phrase.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.ae.Operation = op
	return c
}

// WithResource sets the file, directory or config key involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.ae.Resource = res
	return c
}

// WithSuggestion appends a remediation hint.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.ae.Suggestions = append(c.ae.Suggestions, sug)
	return c
}

// WithIssue links the error to a catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.ae.Issue = id
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.ae.Cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.ae.Operation == "" {
		return nil
	}
	ae := c.ae
	ae.Suggestions = append([]string(nil), c.ae.Suggestions...)
	return &ae
}

// BuildError is Build returning the error interface, so a missing operation
// yields a nil error rather than a typed nil pointer.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

// IssueOf returns the catalog entry linked to the outermost ActionableError
// in err's chain that names one.
func IssueOf(err error) (Id, bool) {
	for err != nil {
		var ae *ActionableError
		if !errors.As(err, &ae) {
			return 0, false
		}
		if ae.Issue != 0 {
			return ae.Issue, true
		}
		err = ae.Cause
	}
	return 0, false
}
