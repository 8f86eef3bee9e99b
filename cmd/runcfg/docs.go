// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/issue"
	"github.com/runcfg/runcfg/pkg/types"
)

func newDocsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var style string
	docsCmd := &cobra.Command{
		Use:   "docs [ISSUE-ID]",
		Short: "Browse the troubleshooting guide",
		Long: `List the troubleshooting entries and exit codes, or render one entry
by its number.

Errors print the entry that matches them; this command shows any entry on
demand.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("Troubleshooting entries:"))
				for _, entry := range issue.Values() {
					fmt.Fprintf(app.stdout, "%3d  %s\n", entry.Id(), issueTitle(entry))
				}
				fmt.Fprintln(app.stdout)
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("Exit codes:"))
				for _, code := range types.ExitCodes {
					fmt.Fprintf(app.stdout, "%3s  %s\n", code, code.Meaning())
				}
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return app.fail(fmt.Errorf("invalid issue id %q: %w", args[0], err), rootFlags.verbose)
			}
			entry := issue.Get(issue.Id(n))
			if entry == nil {
				return app.fail(fmt.Errorf("no troubleshooting entry %d (run 'runcfg docs' for the list)", n), rootFlags.verbose)
			}
			rendered, err := entry.Render(style)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
	docsCmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty or a JSON style file")
	return docsCmd
}

// issueTitle returns the first Markdown heading of an entry.
func issueTitle(entry *issue.Issue) string {
	for line := range strings.Lines(string(entry.MarkdownMsg())) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
