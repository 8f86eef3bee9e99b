// SPDX-License-Identifier: MPL-2.0

package cfgalgebra

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/hashable"
)

// NaN is the text rendering of an absent cell.
const NaN = "NaN"

// Table is a rectangular view over configs: one row per config, one column
// per dotted leaf path. Cells for paths a config lacks hold cfgtree.Missing.
type Table struct {
	Columns []string
	Index   []string
	rows    [][]cfgtree.Value
}

// ConvertToTable flattens each config into a row. Columns follow the order
// in which paths are first seen across the configs. Empty subtrees carry no
// value and produce no column.
func ConvertToTable(configs []*cfgtree.Config) *Table {
	t := &Table{Index: make([]string, len(configs))}
	col := make(map[string]int)
	cells := make([]map[int]cfgtree.Value, len(configs))

	for i, c := range configs {
		t.Index[i] = strconv.Itoa(i)
		cells[i] = make(map[int]cfgtree.Value)
		for _, l := range c.Flatten() {
			if l.IsEmptySubtree() {
				continue
			}
			name := l.Path.String()
			j, ok := col[name]
			if !ok {
				j = len(t.Columns)
				col[name] = j
				t.Columns = append(t.Columns, name)
			}
			cells[i][j] = l.Value
		}
	}

	t.rows = make([][]cfgtree.Value, len(configs))
	for i := range configs {
		row := make([]cfgtree.Value, len(t.Columns))
		for j := range row {
			if v, ok := cells[i][j]; ok {
				row[j] = v
			} else {
				row[j] = cfgtree.Missing
			}
		}
		t.rows[i] = row
	}
	return t
}

// BuildConfigDiffTable tabulates the differences between configs, keeping
// only columns whose value is not the same in every row. When nothing
// differs the table has no columns and one row per config. Rows are indexed
// by position; entry names are not used as labels.
func BuildConfigDiffTable(entries []cfgtree.Entry) (*Table, error) {
	configs := make([]*cfgtree.Config, len(entries))
	for i, e := range entries {
		configs[i] = e.Config
	}
	diffs, err := DiffConfigs(configs)
	if err != nil {
		return nil, err
	}
	return ConvertToTable(diffs).DropConstantColumns(), nil
}

// DropConstantColumns returns a table without the columns whose cells all
// hold the same value, absent cells included.
func (t *Table) DropConstantColumns() *Table {
	out := &Table{Index: append([]string(nil), t.Index...), rows: make([][]cfgtree.Value, len(t.rows))}
	var keep []int
	for j, name := range t.Columns {
		if !t.constant(j) {
			keep = append(keep, j)
			out.Columns = append(out.Columns, name)
		}
	}
	for i, row := range t.rows {
		out.rows[i] = make([]cfgtree.Value, len(keep))
		for k, j := range keep {
			out.rows[i][k] = row[j]
		}
	}
	return out
}

func (t *Table) constant(j int) bool {
	if len(t.rows) == 0 {
		return true
	}
	first := hashable.Make(t.rows[0][j])
	for _, row := range t.rows[1:] {
		if hashable.Make(row[j]) != first {
			return false
		}
	}
	return true
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the value at row i of the named column.
func (t *Table) Cell(i int, column string) (cfgtree.Value, bool) {
	for j, name := range t.Columns {
		if name == column {
			return t.rows[i][j], true
		}
	}
	return nil, false
}

// Text returns the rendered cells of every row. Absent cells read NaN.
func (t *Table) Text() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = cellText(v)
		}
	}
	return out
}

func cellText(v cfgtree.Value) string {
	if cfgtree.IsMissing(v) {
		return NaN
	}
	return cfgtree.Display(v)
}

// String renders the table as aligned text: a header line, then one line per
// row starting with its index. Cells are right-aligned and separated by two
// spaces. A table without columns renders as an empty frame listing its index.
func (t *Table) String() string {
	if len(t.Columns) == 0 || len(t.rows) == 0 {
		return fmt.Sprintf("Empty DataFrame\nColumns: [%s]\nIndex: [%s]",
			strings.Join(t.Columns, ", "), strings.Join(t.Index, ", "))
	}

	text := t.Text()
	idxWidth := 0
	for _, label := range t.Index {
		idxWidth = max(idxWidth, lipgloss.Width(label))
	}
	widths := make([]int, len(t.Columns))
	for j, name := range t.Columns {
		widths[j] = lipgloss.Width(name)
		for _, row := range text {
			widths[j] = max(widths[j], lipgloss.Width(row[j]))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", idxWidth))
	for j, name := range t.Columns {
		b.WriteString("  ")
		b.WriteString(padLeft(name, widths[j]))
	}
	for i, row := range text {
		b.WriteByte('\n')
		b.WriteString(padRight(t.Index[i], idxWidth))
		for j, cell := range row {
			b.WriteString("  ")
			b.WriteString(padLeft(cell, widths[j]))
		}
	}
	return b.String()
}

// WriteCSV writes the table with a leading unnamed index column. Absent
// cells are empty.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, t.Columns...)); err != nil {
		return err
	}
	for i, row := range t.rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, t.Index[i])
		for _, v := range row {
			if cfgtree.IsMissing(v) {
				record = append(record, "")
				continue
			}
			record = append(record, cfgtree.Display(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders the table as a GitHub-flavored Markdown table.
func (t *Table) Markdown() string {
	if len(t.Columns) == 0 {
		return "_No differing values._\n"
	}
	var b strings.Builder
	b.WriteString("| |")
	for _, name := range t.Columns {
		b.WriteString(" " + mdEscape(name) + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(t.Columns)))
	b.WriteByte('\n')
	for i, row := range t.Text() {
		b.WriteString("| " + t.Index[i] + " |")
		for _, cell := range row {
			b.WriteString(" " + mdEscape(cell) + " |")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Styled renders the table with borders using the given header style.
func (t *Table) Styled(header lipgloss.Style) string {
	rows := t.Text()
	for i := range rows {
		rows[i] = append([]string{t.Index[i]}, rows[i]...)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(append([]string{""}, t.Columns...)...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

func padLeft(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
