package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/azdolinski/emissary/internal/model"
)

// Summary line fragments shared by the text and HTML writers.
const (
	completeHeading = "Execution complete:"
	detailsHeading  = "Details:"
)

// SummaryLines returns the status summary of report: the heading, the
// succeeded and failed counts, then one line per action.
func SummaryLines(report *model.ExecutionReport) (counts []string, details []string) {
	counts = []string{
		fmt.Sprintf("%d actions succeeded", report.SuccessCount()),
		fmt.Sprintf("%d actions failed", report.FailureCount()),
	}
	return counts, report.Lines()
}

// SimpleWriter writes the status summary as plain text.
type SimpleWriter struct {
	baseWriter

	// verbose adds the request URL and duration under each action line.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-action request details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
//
// Output:
//
//	Execution complete:
//	2 actions succeeded
//	1 actions failed
//
//	Details:
//	✅ notify: Success (Status: 200)
//	❌ archive: Action "archive" failed with status 500: boom
func (w *SimpleWriter) Write(report *model.ExecutionReport) (int, error) {
	var sb strings.Builder

	counts, details := SummaryLines(report)
	sb.WriteString(completeHeading + "\n")
	for _, line := range counts {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + detailsHeading + "\n")
	for i, line := range details {
		sb.WriteString(line + "\n")
		if w.verbose {
			res := report.Results[i]
			if res.URL != "" {
				fmt.Fprintf(&sb, "   %s %s\n", res.Method, res.URL)
			}
			fmt.Fprintf(&sb, "   took %s\n", res.Duration.Round(time.Millisecond))
		}
	}

	if len(report.NewTags) > 0 {
		sb.WriteString("\nNew tags: " + strings.Join(report.NewTags, ", ") + "\n")
	}
	if len(report.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warning := range report.Warnings {
			sb.WriteString("⚠️ " + warning + "\n")
		}
	}

	return io.WriteString(w.output, sb.String())
}
