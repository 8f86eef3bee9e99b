// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/issue"
	"github.com/runcfg/runcfg/pkg/cfgload"
	"github.com/runcfg/runcfg/pkg/cfgstore"
)

func newSaveCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in     inputFlagValues
		outTag string
	)
	cmd := &cobra.Command{
		Use:   "save PATH DIR",
		Short: "Save a config snapshot into a directory",
		Long: `Save the config at PATH, after overrides, into DIR:

  {tag}.all_values_picklable.msgpack   typed snapshot
  {tag}.values_as_strings.msgpack      every leaf as a string
  {tag}.txt                            rendered config
  config_version.txt                   layout version, written last`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.load(args[0])
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			dir := args[1]
			if err := cfgstore.Save(c, dir, outTag); err != nil {
				return app.fail(issue.NewErrorContext().
					WithOperation("save config").
					WithResource(dir).
					WithSuggestion("Check that the directory is writable").
					Wrap(err).
					BuildError(), rootFlags.verbose)
			}
			fmt.Fprintf(app.stdout, "%s saved %s to %s\n", SuccessStyle.Render("✓"),
				PathStyle.Render(args[0]), PathStyle.Render(filepath.Join(dir, cfgstore.TextFileName(outTag))))
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().StringVar(&outTag, "out-tag", defaultTag, "tag of the written snapshot")
	return cmd
}

func newExportCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in     inputFlagValues
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Convert a config to JSON, YAML, TOML or CUE",
		Long: `Convert a config, after overrides, to another file format.

The format comes from --format, else from the extension of --output, else
defaults to yaml. HCL can be read but not written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.load(args[0])
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}

			f, err := exportFormat(format, output)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			if output == "" {
				data, err := cfgload.Encode(c, f)
				if err != nil {
					return app.fail(err, rootFlags.verbose)
				}
				_, err = app.stdout.Write(data)
				return err
			}
			if err := cfgload.WriteFormat(c, output, f); err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			fmt.Fprintf(app.stderr, "%s wrote %s\n", SuccessStyle.Render("✓"), PathStyle.Render(output))
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml, toml or cue")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"json", "yaml", "toml", "cue"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func exportFormat(format, output string) (cfgload.Format, error) {
	switch {
	case format != "":
		return cfgload.ParseFormat(format)
	case output != "":
		return cfgload.FormatFromPath(output)
	default:
		return cfgload.FormatYAML, nil
	}
}
