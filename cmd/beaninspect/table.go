package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// visualLength is the printed width of s, ignoring color codes.
func visualLength(s string) int {
	return utf8.RuneCountInString(ansiPattern.ReplaceAllString(s, ""))
}

// table renders rows in compact style: a header, a rule, then one line per row.
type table struct {
	output  io.Writer
	headers []string
	rows    [][]string
}

func newTable(output io.Writer, headers ...string) *table {
	return &table{output: output, headers: headers}
}

func (t *table) AppendRow(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *table) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.columnWidths()

	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = colorize(bold, h)
	}
	t.renderRow(header, widths)

	total := 0
	for _, w := range widths {
		total += w
	}
	fmt.Fprintln(t.output, strings.Repeat("─", total+2*(len(widths)-1)))

	for _, row := range t.rows {
		t.renderRow(row, widths)
	}
}

func (t *table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLength(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := visualLength(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func (t *table) renderRow(row []string, widths []int) {
	cells := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		cells[i] = cell + strings.Repeat(" ", width-visualLength(cell))
	}
	fmt.Fprintln(t.output, strings.TrimRight(strings.Join(cells, "  "), " "))
}
