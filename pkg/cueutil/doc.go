// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles and validates CUE documents.
//
// ParseAndValidate checks a document against a definition of an embedded
// schema. The repository settings are read with viper, re-encoded as JSON and
// validated this way before being decoded:
//
//	//go:embed repo_config_schema.cue
//	var schema []byte
//
//	if _, err := cueutil.ParseAndValidate(schema, settingsJSON, "#RepoConfig",
//		cueutil.WithFilename("repo_config.yaml")); err != nil {
//		return err // names the file and the offending field
//	}
//
// Compile handles schema-less documents, such as config trees written in
// CUE: it enforces the size limit and requires every value to be concrete.
// Errors from both carry JSON-path locations (build_model.layers[2]).
package cueutil
