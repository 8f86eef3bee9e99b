// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/pkg/cfgstore"
	"github.com/runcfg/runcfg/pkg/cfgtree"
)

func newShowCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in      inputFlagValues
		flatten bool
		key     string
	)
	cmd := &cobra.Command{
		Use:   "show PATH",
		Short: "Print a config after applying overrides",
		Long: `Print a config file or saved snapshot in its indented rendering.

PATH is a config file (.cue, .yaml, .yml, .toml, .json, .hcl) or a snapshot
directory written by 'runcfg save', read with --tag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.load(args[0])
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			if key != "" {
				return showKey(app, rootFlags, c, key)
			}
			if flatten {
				printFlat(app, c)
				return nil
			}
			fmt.Fprintln(app.stdout, c.String())
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().BoolVar(&flatten, "flatten", false, "print one 'dotted.path = value' line per leaf")
	cmd.Flags().StringVar(&key, "key", "", "print only the value at this dotted key")
	return cmd
}

func showKey(app *App, rootFlags *rootFlagValues, c *cfgtree.Config, key string) error {
	v, err := c.Get(key)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	if sub, ok := v.(*cfgtree.Config); ok {
		fmt.Fprintln(app.stdout, sub.String())
		return nil
	}
	fmt.Fprintln(app.stdout, cfgtree.Display(v))
	return nil
}

func printFlat(app *App, c *cfgtree.Config) {
	for _, l := range c.Flatten() {
		if l.IsEmptySubtree() {
			fmt.Fprintf(app.stdout, "%s =\n", l.Path)
			continue
		}
		fmt.Fprintf(app.stdout, "%s = %s\n", l.Path, cfgtree.Repr(l.Value))
	}
}

func newLoadCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "load DIR",
		Short: "Print a saved config snapshot and its layout version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			version, err := cfgstore.ReadVersion(dir)
			if err != nil {
				return app.fail(wrapLoad(err, dir), rootFlags.verbose)
			}
			c, err := cfgstore.Load(dir, tag)
			if err != nil {
				return app.fail(wrapLoad(err, dir), rootFlags.verbose)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("# layout"), version)
			fmt.Fprintln(app.stdout, c.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", defaultTag, "snapshot tag")
	return cmd
}

func newValidateCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var in inputFlagValues
	cmd := &cobra.Command{
		Use:   "validate PATH...",
		Short: "Check that configs load, accept the overrides and are distinct",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := in.loadEntries(args)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			for _, e := range list.Entries() {
				fmt.Fprintf(app.stdout, "%s %s (%d leaves)\n",
					SuccessStyle.Render("✓"), PathStyle.Render(e.Name), len(e.Config.Flatten()))
			}
			return nil
		},
	}
	addInputFlags(cmd, &in)
	return cmd
}
