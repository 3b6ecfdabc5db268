package report

import (
	"io"
	"strings"

	"github.com/azdolinski/emissary/internal/model"
)

const htmlBreak = "<br>"

// HTMLMessage returns the status summary as the HTML fragment the popup
// displays. Action names and messages are inserted verbatim.
func HTMLMessage(report *model.ExecutionReport) string {
	counts, details := SummaryLines(report)

	var sb strings.Builder
	sb.WriteString("<b>" + completeHeading + "</b>" + htmlBreak)
	sb.WriteString(strings.Join(counts, htmlBreak))
	sb.WriteString(htmlBreak + htmlBreak)
	sb.WriteString("<b>" + detailsHeading + "</b>" + htmlBreak)
	sb.WriteString(strings.Join(details, htmlBreak))
	return sb.String()
}

// HTMLWriter writes HTMLMessage followed by a newline.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *HTMLWriter) Write(report *model.ExecutionReport) (int, error) {
	return io.WriteString(w.output, HTMLMessage(report)+"\n")
}
