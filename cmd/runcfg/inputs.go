// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/pkg/cfgload"
	"github.com/runcfg/runcfg/pkg/cfgoverride"
	"github.com/runcfg/runcfg/pkg/cfgstore"
	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// defaultTag is the snapshot tag used when --tag is not given.
const defaultTag = "config"

// inputFlagValues holds the flags shared by every command that reads configs.
type inputFlagValues struct {
	setValues   []string
	updateMode  string
	clobberMode string
	reportMode  string
	tag         string
}

func addInputFlags(cmd *cobra.Command, f *inputFlagValues) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.setValues, "set-config-value", nil,
		`override a value, e.g. '("model","lr"),(float(0.1))' (repeatable)`)
	flags.StringVar(&f.updateMode, "update-mode", "",
		"update mode of loaded configs: assign_once, overwrite or update (default assign_once)")
	flags.StringVar(&f.clobberMode, "clobber-mode", "",
		"clobber mode of loaded configs: allow_clobbering_keys or no_clobbering")
	flags.StringVar(&f.reportMode, "report-mode", "",
		"missing key reporting: none, warn or raise")
	flags.StringVar(&f.tag, "tag", defaultTag, "snapshot tag used when an input is a directory")
}

// treeOptions converts the mode flags into cfgtree options.
func (f *inputFlagValues) treeOptions() ([]cfgtree.Option, error) {
	update, err := cfgtree.ParseUpdateMode(f.updateMode)
	if err != nil {
		return nil, err
	}
	clobber, err := cfgtree.ParseClobberMode(f.clobberMode)
	if err != nil {
		return nil, err
	}
	report, err := cfgtree.ParseReportMode(f.reportMode)
	if err != nil {
		return nil, err
	}
	return []cfgtree.Option{
		cfgtree.WithUpdateMode(update),
		cfgtree.WithClobberMode(clobber),
		cfgtree.WithReportMode(report),
	}, nil
}

// load reads path, a config file or a snapshot directory, and applies the
// overrides. A snapshot keeps the modes it was saved with unless a mode flag
// is given.
func (f *inputFlagValues) load(path string) (*cfgtree.Config, error) {
	opts, err := f.treeOptions()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapLoad(err, path)
	}

	var c *cfgtree.Config
	if info.IsDir() {
		c, err = cfgstore.Load(path, f.tag)
		if err == nil {
			err = f.applySnapshotModes(c)
		}
	} else {
		c, err = cfgload.LoadFile(path, cfgload.WithTreeOptions(opts...))
	}
	if err != nil {
		return nil, wrapLoad(err, path)
	}

	if len(f.setValues) > 0 {
		if err := cfgoverride.Apply(c, f.setValues); err != nil {
			return nil, err
		}
		slog.Debug("applied config overrides", "path", path, "count", len(f.setValues))
	}
	return c, nil
}

func (f *inputFlagValues) applySnapshotModes(c *cfgtree.Config) error {
	if f.updateMode != "" {
		if err := c.SetUpdateMode(cfgtree.UpdateMode(f.updateMode)); err != nil {
			return err
		}
	}
	if f.clobberMode != "" {
		if err := c.SetClobberMode(cfgtree.ClobberMode(f.clobberMode)); err != nil {
			return err
		}
	}
	if f.reportMode != "" {
		if err := c.SetReportMode(cfgtree.ReportMode(f.reportMode)); err != nil {
			return err
		}
	}
	return nil
}

// loadEntries loads every path as a named entry of a ConfigList, which
// rejects inputs with identical content.
func (f *inputFlagValues) loadEntries(paths []string) (*cfgtree.ConfigList, error) {
	entries := make([]cfgtree.Entry, 0, len(paths))
	for _, p := range paths {
		c, err := f.load(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cfgtree.Entry{Name: p, Config: c})
	}
	list, err := cfgtree.NewNamedConfigList(entries...)
	if err != nil {
		return nil, fmt.Errorf("compare configs: %w", err)
	}
	return list, nil
}
