// SPDX-License-Identifier: MPL-2.0

package cfgalgebra

import (
	"fmt"
	"strings"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// DiffReport renders a Markdown report of the differences between the
// given configs: the common part, one section per config with the leaves
// unique to it, and the diff table.
func DiffReport(entries []cfgtree.Entry) (string, error) {
	configs := make([]*cfgtree.Config, len(entries))
	for i, e := range entries {
		configs[i] = e.Config
	}
	common, err := IntersectConfigs(configs)
	if err != nil {
		return "", err
	}
	diffs, err := DiffConfigs(configs)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Config differences\n\nComparing %d configs.\n\n", len(entries))
	b.WriteString("## Common values\n\n")
	writeBlock(&b, common)

	for i, e := range entries {
		title := e.Name
		if title == "" {
			title = fmt.Sprintf("config %d", i)
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		writeBlock(&b, diffs[i])
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(ConvertToTable(diffs).DropConstantColumns().Markdown())
	return b.String(), nil
}

func writeBlock(b *strings.Builder, c *cfgtree.Config) {
	if c.Len() == 0 {
		b.WriteString("_None._\n\n")
		return
	}
	b.WriteString("```yaml\n")
	b.WriteString(c.String())
	b.WriteString("\n```\n\n")
}
