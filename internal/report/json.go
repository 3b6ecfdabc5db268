package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/azdolinski/emissary/internal/model"
)

// JSONWriter writes the full report as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps an execution report with derived summary fields.
type JSONReport struct {
	*model.ExecutionReport

	Succeeded  int     `json:"succeeded"`
	Failed     int     `json:"failed"`
	DurationMS float64 `json:"durationMs"`
	Message    string  `json:"message"`
}

// NewJSONReport builds the JSON document for report.
func NewJSONReport(report *model.ExecutionReport) *JSONReport {
	return &JSONReport{
		ExecutionReport: report,
		Succeeded:       report.SuccessCount(),
		Failed:          report.FailureCount(),
		DurationMS:      float64(report.Duration().Microseconds()) / 1000,
		Message:         HTMLMessage(report),
	}
}

// Write implements Writer. Each report is followed by a newline, so
// compact output is one document per line.
func (w *JSONWriter) Write(report *model.ExecutionReport) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(NewJSONReport(report)); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
