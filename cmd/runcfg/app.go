// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/runcfg/runcfg/internal/config"
	"github.com/runcfg/runcfg/internal/issue"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and reads
	// repository settings and output writers through it.
	App struct {
		Repo     config.Provider
		repoOpts config.LoadOptions
		stdout   io.Writer
		stderr   io.Writer

		mu    sync.Mutex
		repos map[string]*config.CachedProvider
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Repo config.Provider
		// RepoOptions is the base of every settings load; --repo-config
		// replaces its ConfigFilePath.
		RepoOptions config.LoadOptions
		Stdout      io.Writer
		Stderr      io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Repo == nil {
		deps.Repo = config.NewProvider()
	}
	return &App{
		Repo:     deps.Repo,
		repoOpts: deps.RepoOptions,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		repos:    make(map[string]*config.CachedProvider),
	}, nil
}

// repoConfig returns the repository settings, loading them at most once per
// explicit path for the lifetime of the App.
func (a *App) repoConfig(ctx context.Context, path string) (*config.RepoConfig, error) {
	a.mu.Lock()
	cached, ok := a.repos[path]
	if !ok {
		opts := a.repoOpts
		if path != "" {
			opts.ConfigFilePath = path
		}
		cached = config.NewCachedProvider(a.Repo, opts)
		a.repos[path] = cached
	}
	a.mu.Unlock()
	return cached.Get(ctx)
}

// fail reports err on stderr and returns the ExitError the command should
// return. Errors that already carry an exit code pass through unchanged.
func (a *App) fail(err error, verbose bool) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	issueID, code, styled := classifyError(err, verbose)
	svcErr := newServiceError(err, issueID, styled)
	renderServiceError(a.stderr, svcErr)
	return &ExitError{Code: code, Err: svcErr}
}

// wrapLoad attaches operation context to a config loading failure.
func wrapLoad(err error, path string) error {
	return issue.NewErrorContext().
		WithOperation("load config").
		WithResource(path).
		WithSuggestion("Check the file extension: .cue, .yaml, .yml, .toml, .json or .hcl").
		WithSuggestion("Pass a snapshot directory together with --tag to read a saved config").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}
