// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// LogLevelDebug logs everything.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// LogFormatText is human-readable colored output.
	LogFormatText LogFormat = "text"
	// LogFormatJSON writes one JSON object per record.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt writes logfmt key=value records.
	LogFormatLogfmt LogFormat = "logfmt"

	// DefaultRegistry is the registry used by ContainerRegistryURL("").
	DefaultRegistry = "ecr"
	// DefaultHostName is used when repo_info.github_host_name is not set.
	DefaultHostName = "github.com"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrUnknownRegistry is the sentinel error wrapped by UnknownRegistryError.
	ErrUnknownRegistry = errors.New("unknown container registry")
	// ErrInvalidRepoConfig is the sentinel error wrapped by InvalidRepoConfigError.
	ErrInvalidRepoConfig = errors.New("invalid repo config")
)

type (
	// LogLevel is the minimum level of emitted log records.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// LogFormat selects the log record encoding.
	LogFormat string

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	// It wraps ErrInvalidLogFormat for errors.Is() compatibility.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// UnknownRegistryError is returned when container_registry_info has no
	// entry for the requested registry.
	UnknownRegistryError struct {
		Registry  string
		Available []string
	}

	// InvalidRepoConfigError is returned when a RepoConfig has invalid fields.
	// It wraps ErrInvalidRepoConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidRepoConfigError struct {
		FieldErrors []error
	}

	// RepoInfo identifies the repository.
	RepoInfo struct {
		// RepoName is the short name, e.g. "helpers".
		RepoName string `json:"repo_name" mapstructure:"repo_name"`
		// GithubRepoAccount is the owning account, e.g. "causify-ai".
		GithubRepoAccount string `json:"github_repo_account" mapstructure:"github_repo_account"`
		// GithubHostName is the host serving the repository.
		GithubHostName string `json:"github_host_name" mapstructure:"github_host_name"`
		// InvalidWords is a comma-separated list of words linters reject.
		InvalidWords string `json:"invalid_words,omitempty" mapstructure:"invalid_words"`
		// IssuePrefix prefixes issue titles, e.g. "HelpersTask".
		IssuePrefix string `json:"issue_prefix,omitempty" mapstructure:"issue_prefix"`
	}

	// DockerInfo describes the development image.
	DockerInfo struct {
		DockerImageName string `json:"docker_image_name" mapstructure:"docker_image_name"`
	}

	// BucketInfo locates the buckets used by tests and published HTML.
	BucketInfo struct {
		UnitTestBucketName string `json:"unit_test_bucket_name,omitempty" mapstructure:"unit_test_bucket_name"`
		HTMLBucketName     string `json:"html_bucket_name,omitempty" mapstructure:"html_bucket_name"`
		HTMLIP             string `json:"html_ip,omitempty" mapstructure:"html_ip"`
	}

	// RunnableDirInfo describes the layout of runnable directories.
	RunnableDirInfo struct {
		// DirSuffix is the suffix of the dev_scripts_{suffix} directory.
		DirSuffix string `json:"dir_suffix,omitempty" mapstructure:"dir_suffix"`
		// UseHelpersAsNestedModule accepts booleans and 0/1.
		UseHelpersAsNestedModule bool `json:"use_helpers_as_nested_module,omitempty" mapstructure:"use_helpers_as_nested_module"`
	}

	// SharedDataDir maps a shared data directory to the path it is mounted at.
	SharedDataDir struct {
		Source string `json:"source" mapstructure:"source"`
		Target string `json:"target" mapstructure:"target"`
	}

	// LoggingConfig configures CLI logging.
	LoggingConfig struct {
		Level  LogLevel  `json:"level,omitempty" mapstructure:"level"`
		Format LogFormat `json:"format,omitempty" mapstructure:"format"`
	}

	// RepoConfig holds the repository settings.
	RepoConfig struct {
		RepoInfo              RepoInfo          `json:"repo_info" mapstructure:"repo_info"`
		DockerInfo            DockerInfo        `json:"docker_info,omitempty" mapstructure:"docker_info"`
		S3BucketInfo          BucketInfo        `json:"s3_bucket_info,omitempty" mapstructure:"s3_bucket_info"`
		RunnableDirInfo       RunnableDirInfo   `json:"runnable_dir_info,omitempty" mapstructure:"runnable_dir_info"`
		ContainerRegistryInfo map[string]string `json:"container_registry_info,omitempty" mapstructure:"container_registry_info"`
		SharedDataDirs        []SharedDataDir   `json:"shared_data_dirs,omitempty" mapstructure:"shared_data_dirs"`
		Logging               LoggingConfig     `json:"logging,omitempty" mapstructure:"logging"`
	}
)

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogFormatError.
func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

// Unwrap returns ErrInvalidLogFormat for errors.Is() compatibility.
func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// IsValid returns whether the LogFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

// Error implements the error interface for UnknownRegistryError.
func (e *UnknownRegistryError) Error() string {
	return fmt.Sprintf("unknown container registry %q (available: %s)", e.Registry, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrUnknownRegistry for errors.Is() compatibility.
func (e *UnknownRegistryError) Unwrap() error { return ErrUnknownRegistry }

// Error implements the error interface for InvalidRepoConfigError.
func (e *InvalidRepoConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid repo config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidRepoConfig for errors.Is() compatibility.
func (e *InvalidRepoConfigError) Unwrap() error { return ErrInvalidRepoConfig }

// IsValid checks the constraints the schema cannot express: shared data
// directory sources must be unique and logging values, when set, must be known.
func (c *RepoConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Logging.Level != "" {
		if valid, fieldErrs := c.Logging.Level.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Logging.Format != "" {
		if valid, fieldErrs := c.Logging.Format.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	seen := make(map[string]int, len(c.SharedDataDirs))
	for i, d := range c.SharedDataDirs {
		if first, ok := seen[d.Source]; ok {
			errs = append(errs, fmt.Errorf("shared_data_dirs[%d]: duplicate source %q (same as shared_data_dirs[%d])", i, d.Source, first))
			continue
		}
		seen[d.Source] = i
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRepoConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Name returns the repository name in "//name" form.
func (c *RepoConfig) Name() string { return "//" + c.RepoInfo.RepoName }

// RepoShortName returns the short repository name, e.g. "helpers".
func (c *RepoConfig) RepoShortName() string { return c.RepoInfo.RepoName }

// GithubRepoAccount returns the owning account.
func (c *RepoConfig) GithubRepoAccount() string { return c.RepoInfo.GithubRepoAccount }

// RepoFullName returns "account/name".
func (c *RepoConfig) RepoFullName() string {
	return c.RepoInfo.GithubRepoAccount + "/" + c.RepoInfo.RepoName
}

// RepoFullNameWithHostname returns "host/account/name".
func (c *RepoConfig) RepoFullNameWithHostname() string {
	return c.HostName() + "/" + c.RepoFullName()
}

// RepoMap maps the short name to the full name.
func (c *RepoConfig) RepoMap() map[string]string {
	return map[string]string{c.RepoInfo.RepoName: c.RepoFullName()}
}

// HostName returns the repository host, e.g. "github.com".
func (c *RepoConfig) HostName() string {
	if c.RepoInfo.GithubHostName == "" {
		return DefaultHostName
	}
	return c.RepoInfo.GithubHostName
}

// InvalidWords splits repo_info.invalid_words on commas. An unset value
// yields an empty list.
func (c *RepoConfig) InvalidWords() []string {
	if c.RepoInfo.InvalidWords == "" {
		return []string{}
	}
	return strings.Split(c.RepoInfo.InvalidWords, ",")
}

// IssuePrefix returns the issue title prefix.
func (c *RepoConfig) IssuePrefix() string { return c.RepoInfo.IssuePrefix }

// DockerBaseImageName returns the base name of the development image.
func (c *RepoConfig) DockerBaseImageName() string { return c.DockerInfo.DockerImageName }

// UnitTestBucketPath returns the bucket holding unit test data.
func (c *RepoConfig) UnitTestBucketPath() string { return c.S3BucketInfo.UnitTestBucketName }

// HTMLBucketPath returns the bucket holding published HTML.
func (c *RepoConfig) HTMLBucketPath() string { return c.S3BucketInfo.HTMLBucketName }

// HTMLBucketPathV2 returns the browsable variant of HTMLBucketPath.
func (c *RepoConfig) HTMLBucketPathV2() string { return joinURL(c.HTMLBucketPath(), "v2") }

// HTMLIP returns the address serving HTMLBucketPath.
func (c *RepoConfig) HTMLIP() string { return c.S3BucketInfo.HTMLIP }

// HTMLIPV2 returns the address serving HTMLBucketPathV2.
func (c *RepoConfig) HTMLIPV2() string { return c.HTMLIP() + "/v2" }

// HTMLDirToURLMapping maps published HTML directories to the URLs serving them.
func (c *RepoConfig) HTMLDirToURLMapping() map[string]string {
	return map[string]string{
		c.HTMLBucketPath():   c.HTMLIP(),
		c.HTMLBucketPathV2(): c.HTMLIPV2(),
	}
}

// DirSuffix returns the suffix of the dev_scripts_{suffix} directory.
func (c *RepoConfig) DirSuffix() string { return c.RunnableDirInfo.DirSuffix }

// UseHelpersAsNestedModule reports whether helpers is vendored as a nested module.
func (c *RepoConfig) UseHelpersAsNestedModule() bool {
	return c.RunnableDirInfo.UseHelpersAsNestedModule
}

// ContainerRegistryURL returns the URL of registry, DefaultRegistry when
// registry is empty.
func (c *RepoConfig) ContainerRegistryURL(registry string) (string, error) {
	if registry == "" {
		registry = DefaultRegistry
	}
	url, ok := c.ContainerRegistryInfo[registry]
	if !ok {
		available := slices.Sorted(maps.Keys(c.ContainerRegistryInfo))
		return "", &UnknownRegistryError{Registry: registry, Available: available}
	}
	return url, nil
}

// SharedDataDirMapping returns shared data directory sources mapped to their
// targets, the input of cfgtree.ReplaceSharedDirPaths.
func (c *RepoConfig) SharedDataDirMapping() map[string]string {
	m := make(map[string]string, len(c.SharedDataDirs))
	for _, d := range c.SharedDataDirs {
		m[d.Source] = d.Target
	}
	return m
}

// String summarizes the settings most tools read.
func (c *RepoConfig) String() string {
	lines := []string{
		fmt.Sprintf("repo_name='%s'", c.Name()),
		fmt.Sprintf("repo_full_name='%s'", c.RepoFullNameWithHostname()),
		fmt.Sprintf("host_name='%s'", c.HostName()),
		fmt.Sprintf("html_dir_to_url_mapping='%v'", c.HTMLDirToURLMapping()),
		fmt.Sprintf("invalid_words='%v'", c.InvalidWords()),
		fmt.Sprintf("docker_base_image_name='%s'", c.DockerBaseImageName()),
	}
	return strings.Join(lines, "\n")
}

func joinURL(base, elem string) string {
	if base == "" {
		return elem
	}
	return strings.TrimSuffix(base, "/") + "/" + elem
}
