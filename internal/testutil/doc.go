// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test fixtures shared across packages: file helpers
// that fail the test instead of returning errors, and the experiment config
// trees most package tests start from.
package testutil
