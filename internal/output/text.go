package output

import (
	"bufio"
	"fmt"
	"io"
)

// TextWriter writes a human-readable summary per report.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write prints the report header, stats and warnings.
func (w *TextWriter) Write(r Report) error {
	header := "=== " + r.Source
	if r.Hook != "" {
		header += " [" + r.Hook + "]"
	}
	fmt.Fprintln(w.w, header+" ===")

	if r.stats != nil {
		fmt.Fprint(w.w, r.stats.String())
	} else {
		fmt.Fprintf(w.w, "Changes: %d\n", r.Changes)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w.w, "Warnings (%d):\n", len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w.w, "  - %s\n", warn)
		}
	}
	if r.Error != "" {
		fmt.Fprintf(w.w, "Error: %s\n", r.Error)
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.w.Flush()
}
