// Package output provides formatting helpers for CLI command output.
package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table collects rows for a borderless two-axis summary table.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a data row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table to w in a clean borderless style.
func (t *Table) Render(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.headers)

	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(true)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetCenterSeparator("")
	tw.SetColumnSeparator("")
	tw.SetRowSeparator("")
	tw.SetHeaderLine(false)
	tw.SetBorder(false)
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)

	for _, row := range t.rows {
		tw.Append(row)
	}
	tw.Render()
}
