// SPDX-License-Identifier: MPL-2.0

// Package config reads the repository settings file, repo_config.yaml.
//
// The file is located through LoadOptions, then the RUNCFG_REPO_CONFIG_PATH
// environment variable, then an upward search from the working directory.
// It is read with Viper (so RUNCFG_* environment variables can override
// individual settings) and validated against an embedded CUE schema
// (repo_config_schema.cue) before it is decoded into RepoConfig.
//
// Callers own the settings: a Provider loads them from explicit options and
// CachedProvider loads them at most once.
package config
