// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the runcfg CLI.
//
// The command tree is built by NewRootCommand around an App, the composition
// root holding the repository settings provider and output writers. Commands
// load config files or saved snapshots, apply --set-config-value overrides,
// and print, compare, persist, export or watch the resulting trees.
package cmd
