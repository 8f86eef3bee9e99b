// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/watch"
	"github.com/runcfg/runcfg/pkg/cfgalgebra"
)

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in       inputFlagValues
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch PATH...",
		Short: "Re-evaluate configs whenever their files change",
		Long: `Load the configs once, then reload and print them each time one of the
files is saved. With two or more files the differences are printed instead.
Load errors are reported and watching continues. Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, rootFlags, &in, args, debounce)
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-evaluating")
	return cmd
}

// runWatch evaluates paths once, then again on every debounced change until
// ctx is canceled.
func runWatch(ctx context.Context, app *App, rootFlags *rootFlagValues, in *inputFlagValues, paths []string, debounce time.Duration) error {
	evaluate := func(changed []string) error {
		if len(changed) > 0 {
			fmt.Fprintf(app.stdout, "\n%s %s\n", SubtitleStyle.Render("changed:"), strings.Join(changed, ", "))
		}
		return evaluateWatched(app, in, paths)
	}

	if err := evaluate(nil); err != nil {
		fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, rootFlags.verbose))
	}

	w, err := watch.New(watch.Options{
		Files:    paths,
		Debounce: debounce,
		OnChange: func(_ context.Context, changed []string) error {
			return evaluate(changed)
		},
	})
	if err != nil {
		return app.fail(fmt.Errorf("failed to start watcher: %w", err), rootFlags.verbose)
	}
	fmt.Fprintf(app.stderr, "%s watching %d file(s), Ctrl+C to stop\n", SubtitleStyle.Render("→"), len(paths))
	return w.Run(ctx)
}

func evaluateWatched(app *App, in *inputFlagValues, paths []string) error {
	if len(paths) == 1 {
		c, err := in.load(paths[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, c.String())
		return nil
	}

	list, err := in.loadEntries(paths)
	if err != nil {
		return err
	}
	diffs, err := cfgalgebra.DiffConfigs(list.Configs())
	if err != nil {
		return err
	}
	printDiffs(app, list.Names(), diffs)
	return nil
}

