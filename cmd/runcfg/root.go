// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/config"
	"github.com/runcfg/runcfg/internal/logging"
	"github.com/runcfg/runcfg/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags of the root command.
type rootFlagValues struct {
	verbose    bool
	logLevel   string
	logFormat  string
	repoConfig string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootFlags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Inspect, compare and persist hierarchical run configs",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - hierarchical run configs") + `

runcfg loads experiment configs from CUE, YAML, TOML, JSON or HCL files,
applies command-line overrides, and compares, saves or exports the
resulting trees.

` + SubtitleStyle.Render("Examples:") + `
  runcfg show experiment.yaml
  runcfg show experiment.yaml --set-config-value '("model","lr"),(float(0.01))'
  runcfg diff run1.yaml run2.yaml run3.yaml
  runcfg table --diff --format styled runs/*.yaml
  runcfg save experiment.cue out/ --tag run0
  runcfg export experiment.cue --format toml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd.Context(), app, rootFlags)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "log level: debug, info, warn or error (default from repo_config.yaml, else info)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "log format: text, json or logfmt")
	pf.StringVar(&rootFlags.repoConfig, "repo-config", "", "path to "+config.RepoConfigFileName+" (default: search upward from the working directory)")

	root.AddCommand(
		newShowCommand(app, rootFlags),
		newSaveCommand(app, rootFlags),
		newLoadCommand(app, rootFlags),
		newIntersectCommand(app, rootFlags),
		newSubtractCommand(app, rootFlags),
		newDiffCommand(app, rootFlags),
		newTableCommand(app, rootFlags),
		newValidateCommand(app, rootFlags),
		newExportCommand(app, rootFlags),
		newRewritePathsCommand(app, rootFlags),
		newRepoCommand(app, rootFlags),
		newWatchCommand(app, rootFlags),
		newDocsCommand(app, rootFlags),
		newCompletionCommand(app),
	)
	return root
}

// setupLogging installs the slog handler. Flags win; otherwise the logging
// section of the repository settings applies when they can be loaded.
func setupLogging(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	opts := logging.Options{
		Level:   config.LogLevel(rootFlags.logLevel),
		Format:  config.LogFormat(rootFlags.logFormat),
		Verbose: rootFlags.verbose,
		Writer:  app.stderr,
	}
	if opts.Level == "" || opts.Format == "" {
		if repo, err := app.repoConfig(ctx, rootFlags.repoConfig); err == nil {
			if opts.Level == "" {
				opts.Level = repo.Logging.Level
			}
			if opts.Format == "" {
				opts.Format = repo.Logging.Format
			}
		}
	}
	if _, err := logging.Setup(opts); err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	return nil
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// errorHandler prints errors that were not already reported by App.fail.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(int(types.ExitFailure))
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		slog.Debug("command failed", "error", err)
		os.Exit(int(types.ExitUsage))
	}
}
