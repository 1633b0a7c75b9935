package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jol333/TaskTimer/internal/util"
	"github.com/mattn/go-runewidth"
)

// maxLabelWidth keeps long labels from blowing up the table.
const maxLabelWidth = 40

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"#", "ID", "Label", "Elapsed", "State"},
	}
}

func (f *TableFormatter) Format(w io.Writer, records []SessionRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Index),
			r.ID,
			util.TruncateToWidth(r.Label, maxLabelWidth),
			r.Elapsed,
			stateName(r.Running),
		})
	}
	widths := f.calculateColumnWidths(rows)

	var b strings.Builder
	f.printBorder(&b, widths, "top")
	f.printRow(&b, f.headers, widths)
	f.printBorder(&b, widths, "middle")
	for _, row := range rows {
		f.printRow(&b, row, widths)
	}
	f.printBorder(&b, widths, "bottom")

	_, err := io.WriteString(w, b.String())
	return err
}

// calculateColumnWidths sizes every column to its widest cell
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, h := range f.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, value := range row {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right, separator string

	switch borderType {
	case "top":
		left, middle, right, separator = "┌", "┬", "┐", "─"
	case "middle":
		left, middle, right, separator = "├", "┼", "┤", "─"
	case "bottom":
		left, middle, right, separator = "└", "┴", "┘", "─"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat(separator, width+2)) // +2 for padding spaces
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

// printRow prints a row; the index and elapsed columns are right-aligned
func (f *TableFormatter) printRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		var cell string
		if i == 0 || i == 3 {
			cell = runewidth.FillLeft(value, widths[i])
		} else {
			cell = runewidth.FillRight(value, widths[i])
		}
		fmt.Fprintf(b, " %s │", cell)
	}
	b.WriteString("\n")
}
