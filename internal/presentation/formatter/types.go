package formatter

import (
	"fmt"
	"io"
	"strings"
)

// SessionRecord is one session as printed by the list command.
type SessionRecord struct {
	Index   int     `json:"index"`
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Elapsed string  `json:"elapsed"`
	Seconds float64 `json:"seconds"`
	Running bool    `json:"running"`
}

// Formatter writes session records in one output format.
type Formatter interface {
	Format(w io.Writer, records []SessionRecord) error
}

// Output format names
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatSummary = "summary"
)

// New returns the formatter for the named output format.
func New(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return NewTableFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	case FormatSummary:
		return NewSummaryFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (table, json, csv, summary)", format)
	}
}

func stateName(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
