// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/runcfg/runcfg/internal/issue"
	"github.com/runcfg/runcfg/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "runcfg"
	// RepoConfigFileName is the settings file searched for upward from the
	// working directory.
	RepoConfigFileName = "repo_config.yaml"
	// EnvRepoConfigPath overrides the settings file location.
	EnvRepoConfigPath = "RUNCFG_REPO_CONFIG_PATH"
	// EnvPrefix prefixes environment variables that override single settings,
	// e.g. RUNCFG_LOGGING_LEVEL for logging.level.
	EnvPrefix = "RUNCFG"
)

//go:embed repo_config_schema.cue
var repoConfigSchema []byte

// ErrRepoConfigNotFound is the sentinel error wrapped by RepoConfigNotFoundError.
var ErrRepoConfigNotFound = errors.New("repo config not found")

// RepoConfigNotFoundError is returned when no settings file can be located.
type RepoConfigNotFoundError struct {
	// Path is set when an explicit location does not exist.
	Path string
	// StartDir is set when the upward search failed.
	StartDir string
}

// Error implements the error interface.
func (e *RepoConfigNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("file '%s' doesn't exist", e.Path)
	}
	return fmt.Sprintf("could not find '%s' in '%s' or any parent directory", RepoConfigFileName, e.StartDir)
}

// Unwrap returns ErrRepoConfigNotFound so callers can use errors.Is for programmatic detection.
func (e *RepoConfigNotFoundError) Unwrap() error { return ErrRepoConfigNotFound }

// ResolvePath returns the absolute path of the settings file: the explicit
// option first, then EnvRepoConfigPath, then the nearest repo_config.yaml at
// or above the start directory.
func ResolvePath(opts LoadOptions) (string, error) {
	path := opts.ConfigFilePath
	if path == "" {
		if env, ok := opts.lookupEnv(EnvRepoConfigPath); ok && env != "" {
			slog.Warn("using repo config from environment", "var", EnvRepoConfigPath, "path", env)
			path = env
		}
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve repo config path: %w", err)
		}
		if !fileExists(abs) {
			return "", &RepoConfigNotFoundError{Path: abs}
		}
		return abs, nil
	}

	start := opts.StartDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		start = wd
	}
	return FindRepoConfigFile(start)
}

// FindRepoConfigFile walks from startDir up to the filesystem root and
// returns the first repo_config.yaml found.
func FindRepoConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, RepoConfigFileName)
		if fileExists(candidate) {
			slog.Debug("found repo config", "path", candidate)
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &RepoConfigNotFoundError{StartDir: startDir}
		}
		dir = parent
	}
}

// loadWithOptions locates, reads and validates the settings. It returns the
// resolved path alongside the settings.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*RepoConfig, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load repo config canceled: %w", ctx.Err())
	default:
	}

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("locate repository settings").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Pass the file explicitly with --repo-config").
			WithSuggestion("Set " + EnvRepoConfigPath + " to the settings file").
			WithSuggestion("Run the command from inside the repository").
			WithIssue(issue.RepoConfigNotFoundId).
			Wrap(err).
			BuildError()
	}

	cfg, err := readRepoConfig(path, opts)
	if err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("load repository settings").
			WithResource(path).
			WithSuggestion("Check that the file contains valid YAML").
			WithSuggestion("Verify the settings match the expected schema").
			WithIssue(issue.RepoConfigInvalidId).
			Wrap(err).
			BuildError()
	}
	return cfg, path, nil
}

// readRepoConfig reads path with Viper, validates the merged settings
// (file, defaults and environment) against the CUE schema and decodes them.
func readRepoConfig(path string, opts LoadOptions) (*RepoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("repo_info.github_host_name", DefaultHostName)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	if !opts.IgnoreEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	// The schema sees exactly what Unmarshal will decode.
	merged, err := json.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to encode repo config: %w", err)
	}
	if _, err := cueutil.ParseAndValidate(repoConfigSchema, merged, "#RepoConfig", cueutil.WithFilename(filepath.Base(path))); err != nil {
		return nil, err
	}

	var cfg RepoConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode repo config: %w", err)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
