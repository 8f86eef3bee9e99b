// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/pkg/cfgalgebra"
	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/types"
)

// Table output formats accepted by 'runcfg table --format'.
const (
	tableFormatText     = "text"
	tableFormatCSV      = "csv"
	tableFormatMarkdown = "markdown"
	tableFormatStyled   = "styled"
)

func newIntersectCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var in inputFlagValues
	cmd := &cobra.Command{
		Use:   "intersect PATH PATH...",
		Short: "Print the leaves shared, with identical values, by every config",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := in.loadEntries(args)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			common, err := cfgalgebra.IntersectConfigs(list.Configs())
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			fmt.Fprintln(app.stdout, common.String())
			return nil
		},
	}
	addInputFlags(cmd, &in)
	return cmd
}

func newSubtractCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var in inputFlagValues
	cmd := &cobra.Command{
		Use:   "subtract A B",
		Short: "Print the leaves of A that are absent from B or differ",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := in.load(args[0])
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			b, err := in.load(args[1])
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			fmt.Fprintln(app.stdout, cfgalgebra.SubtractConfig(a, b).String())
			return nil
		},
	}
	addInputFlags(cmd, &in)
	return cmd
}

func newDiffCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in       inputFlagValues
		markdown bool
		raw      bool
		exitCode bool
	)
	cmd := &cobra.Command{
		Use:   "diff PATH PATH...",
		Short: "Print what makes each config different from the others",
		Long: `Print, for each config, the leaves that are not shared with identical
values by all the configs.

With --markdown the comparison is rendered as a Markdown report (common
values, per-config differences and a summary table). --raw prints the
Markdown source instead of rendering it for the terminal.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := in.loadEntries(args)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}

			diffs, err := cfgalgebra.DiffConfigs(list.Configs())
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}

			if markdown {
				if err := printDiffReport(app, list.Entries(), raw); err != nil {
					return app.fail(err, rootFlags.verbose)
				}
			} else {
				printDiffs(app, list.Names(), diffs)
			}

			if exitCode && anyDifferent(diffs) {
				return &ExitError{Code: types.ExitDifferent}
			}
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render a Markdown report")
	cmd.Flags().BoolVar(&raw, "raw", false, "with --markdown, print the Markdown source")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 3 when the configs differ")
	return cmd
}

func printDiffs(app *App, names []string, diffs []*cfgtree.Config) {
	for i, d := range diffs {
		if i > 0 {
			fmt.Fprintln(app.stdout)
		}
		fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render(fmt.Sprintf("# %d", i)), PathStyle.Render(names[i]))
		if d.Len() > 0 {
			fmt.Fprintln(app.stdout, d.String())
		}
	}
}

func printDiffReport(app *App, entries []cfgtree.Entry, raw bool) error {
	report, err := cfgalgebra.DiffReport(entries)
	if err != nil {
		return err
	}
	if raw {
		fmt.Fprint(app.stdout, report)
		return nil
	}
	rendered, err := glamour.Render(report, "dark")
	if err != nil {
		return fmt.Errorf("render diff report: %w", err)
	}
	fmt.Fprint(app.stdout, rendered)
	return nil
}

func anyDifferent(diffs []*cfgtree.Config) bool {
	for _, d := range diffs {
		if d.Len() > 0 {
			return true
		}
	}
	return false
}

func newTableCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in     inputFlagValues
		diff   bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "table PATH PATH...",
		Short: "Print configs as a table with one row per config",
		Long: `Print configs as a table: one row per config, one column per dotted leaf
path. Absent cells print as NaN.

With --diff only the differing leaves are kept and columns that are constant
across rows are dropped.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := in.loadEntries(args)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}

			var t *cfgalgebra.Table
			if diff {
				t, err = cfgalgebra.BuildConfigDiffTable(list.Entries())
				if err != nil {
					return app.fail(err, rootFlags.verbose)
				}
			} else {
				t = cfgalgebra.ConvertToTable(list.Configs())
			}

			if err := writeTable(app, t, format); err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().BoolVar(&diff, "diff", false, "keep only differing columns")
	cmd.Flags().StringVar(&format, "format", tableFormatText, "output format: text, csv, markdown or styled")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{tableFormatText, tableFormatCSV, tableFormatMarkdown, tableFormatStyled}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func writeTable(app *App, t *cfgalgebra.Table, format string) error {
	switch strings.ToLower(format) {
	case tableFormatText:
		fmt.Fprintln(app.stdout, t.String())
	case tableFormatCSV:
		return t.WriteCSV(app.stdout)
	case tableFormatMarkdown:
		fmt.Fprint(app.stdout, t.Markdown())
	case tableFormatStyled:
		fmt.Fprintln(app.stdout, t.Styled(tableHeaderStyle))
	default:
		return fmt.Errorf("unknown table format %q (valid: text, csv, markdown, styled)", format)
	}
	return nil
}
