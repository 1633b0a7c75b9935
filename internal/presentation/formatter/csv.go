package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(out io.Writer, records []SessionRecord) error {
	w := csv.NewWriter(out)

	headers := []string{"Index", "ID", "Label", "Elapsed", "Seconds", "State"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, r := range records {
		record := []string{
			strconv.Itoa(r.Index),
			r.ID,
			r.Label,
			r.Elapsed,
			strconv.FormatFloat(r.Seconds, 'f', 1, 64),
			stateName(r.Running),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
