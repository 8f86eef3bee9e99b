// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"sync"
)

// LoadOptions defines explicit settings loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific file when set.
	ConfigFilePath string
	// StartDir is where the upward search begins. Defaults to the working
	// directory.
	StartDir string
	// LookupEnv replaces os.LookupEnv for EnvRepoConfigPath.
	LookupEnv func(string) (string, bool)
	// IgnoreEnv disables RUNCFG_* overrides of individual settings.
	IgnoreEnv bool
}

func (o LoadOptions) lookupEnv(key string) (string, bool) {
	if o.LookupEnv != nil {
		return o.LookupEnv(key)
	}
	return os.LookupEnv(key)
}

// Provider loads repository settings from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*RepoConfig, error)
}

type fileProvider struct{}

// NewProvider creates a settings provider that reads repo_config.yaml.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads settings from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*RepoConfig, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// CachedProvider loads settings once and returns the same result, error
// included, on every later call. It is safe for concurrent use.
type CachedProvider struct {
	provider Provider
	opts     LoadOptions

	once sync.Once
	cfg  *RepoConfig
	err  error
}

// NewCachedProvider wraps p. The options are fixed at construction.
func NewCachedProvider(p Provider, opts LoadOptions) *CachedProvider {
	return &CachedProvider{provider: p, opts: opts}
}

// Get returns the settings, loading them on the first call.
func (c *CachedProvider) Get(ctx context.Context) (*RepoConfig, error) {
	c.once.Do(func() {
		c.cfg, c.err = c.provider.Load(ctx, c.opts)
	})
	return c.cfg, c.err
}
