// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/pkg/cfgload"
	"github.com/runcfg/runcfg/pkg/cfgtree"
)

func newRepoCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	repoCmd := &cobra.Command{
		Use:   "repo",
		Short: "Inspect the repository settings (repo_config.yaml)",
	}

	var registry string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the repository settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := app.repoConfig(cmd.Context(), rootFlags.repoConfig)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			if registry != "" {
				url, err := repo.ContainerRegistryURL(registry)
				if err != nil {
					return app.fail(err, rootFlags.verbose)
				}
				fmt.Fprintln(app.stdout, url)
				return nil
			}

			fmt.Fprintln(app.stdout, repo.String())
			if mapping := repo.SharedDataDirMapping(); len(mapping) > 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("shared_data_dirs:"))
				for _, src := range slices.Sorted(maps.Keys(mapping)) {
					fmt.Fprintf(app.stdout, "  %s -> %s\n", src, mapping[src])
				}
			}
			return nil
		},
	}
	showCmd.Flags().StringVar(&registry, "registry", "", "print only the URL of this container registry")
	repoCmd.AddCommand(showCmd)
	return repoCmd
}

func newRewritePathsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		in      inputFlagValues
		mapping map[string]string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "rewrite-paths PATH",
		Short: "Replace shared data directory paths in every string leaf",
		Long: `Replace shared data directory paths in every string leaf of a config,
sequences included, and print the rewritten config.

The mapping comes from shared_data_dirs in repo_config.yaml, or from --map
entries (SRC=DST, repeatable) without reading the settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.load(args[0])
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}

			dirs := mapping
			if len(dirs) == 0 {
				repo, err := app.repoConfig(cmd.Context(), rootFlags.repoConfig)
				if err != nil {
					return app.fail(err, rootFlags.verbose)
				}
				dirs = repo.SharedDataDirMapping()
			}

			rewritten := cfgtree.ReplaceSharedDirPaths(c, dirs)
			if output != "" {
				if err := cfgload.WriteFile(rewritten, output); err != nil {
					return app.fail(err, rootFlags.verbose)
				}
				fmt.Fprintf(app.stderr, "%s wrote %s\n", SuccessStyle.Render("✓"), PathStyle.Render(output))
				return nil
			}
			fmt.Fprintln(app.stdout, rewritten.String())
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().StringToStringVar(&mapping, "map", nil, "SRC=DST path replacement used instead of repo_config.yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rewritten config to this file (format from extension)")
	return cmd
}
