package db

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// SimpleTable renders rows as a boxed text table. Columns whose cells are
// all numeric or NULL are right-aligned.
type SimpleTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

func NewTable(w io.Writer) *SimpleTable {
	return &SimpleTable{writer: w}
}

func (t *SimpleTable) Header(headers []string) {
	t.headers = headers
}

func (t *SimpleTable) Row(row []string) {
	t.rows = append(t.rows, row)
}

func (t *SimpleTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

func (t *SimpleTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.columnWidths()
	rightAlign := t.numericColumns(len(widths))
	separator := buildSeparator(widths)

	fmt.Fprintln(t.writer, separator)
	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, formatRow(t.headers, widths, nil))
		fmt.Fprintln(t.writer, separator)
	}
	for _, row := range t.rows {
		fmt.Fprintln(t.writer, formatRow(row, widths, rightAlign))
	}
	fmt.Fprintln(t.writer, separator)
}

func (t *SimpleTable) columnWidths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		numCols = max(numCols, len(row))
	}

	widths := make([]int, numCols)
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}

	for i := range widths {
		widths[i] = max(widths[i], 1)
	}
	return widths
}

func (t *SimpleTable) numericColumns(numCols int) []bool {
	numeric := make([]bool, numCols)
	for i := range numeric {
		numeric[i] = len(t.rows) > 0
		for _, row := range t.rows {
			if i < len(row) && !isNumeric(row[i]) {
				numeric[i] = false
				break
			}
		}
	}
	return numeric
}

func isNumeric(cell string) bool {
	if cell == "NULL" {
		return true
	}
	digits := 0
	for i, r := range cell {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r == '-' || r == '+') && i == 0:
		case r == '.' || r == 'e' || r == 'E' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return digits > 0
}

func buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatRow(row []string, widths []int, rightAlign []bool) string {
	var b strings.Builder
	b.WriteByte('|')
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		padding := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		if rightAlign != nil && rightAlign[i] {
			b.WriteString(" " + padding + cell + " |")
		} else {
			b.WriteString(" " + cell + padding + " |")
		}
	}
	return b.String()
}
