// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog maps issue IDs to Markdown guidance that the
// CLI renders with glamour.
package issue
