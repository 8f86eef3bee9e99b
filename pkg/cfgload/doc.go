// SPDX-License-Identifier: MPL-2.0

// Package cfgload imports config trees from files and exports them back.
//
// Supported inputs are CUE, YAML, TOML, JSON and HCL. Every importer except
// TOML keeps declaration order; TOML tables are decoded through Go maps and
// their keys are inserted sorted. Export supports JSON, YAML, TOML and CUE.
package cfgload
