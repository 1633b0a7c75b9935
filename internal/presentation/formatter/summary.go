package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/jol333/TaskTimer/internal/util"
)

// SummaryFormatter prints totals across all sessions.
type SummaryFormatter struct{}

func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

func (f *SummaryFormatter) Format(w io.Writer, records []SessionRecord) error {
	var total time.Duration
	running := 0
	var longest *SessionRecord
	for i := range records {
		r := &records[i]
		total += time.Duration(r.Seconds * float64(time.Second))
		if r.Running {
			running++
		}
		if longest == nil || r.Seconds > longest.Seconds {
			longest = r
		}
	}

	if _, err := fmt.Fprintf(w, "Sessions: %d (%d running)\n", len(records), running); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total:    %s (%s)\n", util.FormatElapsed(total), util.FormatDuration(total)); err != nil {
		return err
	}
	if longest != nil {
		_, err := fmt.Fprintf(w, "Longest:  %s %s\n", longest.Label, longest.Elapsed)
		return err
	}
	return nil
}
