package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/azdolinski/emissary/internal/model"
)

// MarkdownWriter writes reports as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.ExecutionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeActions(md, report)
	w.writeTags(md, report)
	w.writeWarnings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ExecutionReport) {
	md.H1("Emissary Run Report")
	md.PlainText("")

	rows := [][]string{
		{"Profile", report.ProfileName},
		{"Profile ID", "`" + report.ProfileID + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration().Round(time.Millisecond).String()},
		{"Status", statusText(report)},
	}
	if report.RunID != 0 {
		rows = append(rows, []string{"Run", "#" + strconv.FormatInt(report.RunID, 10)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(report *model.ExecutionReport) string {
	switch {
	case len(report.Results) == 0:
		return "✅ Complete (no actions)"
	case report.AllSucceeded():
		return "✅ Complete"
	case report.SuccessCount() == 0:
		return "❌ Failed"
	default:
		return "⚠️ Partial"
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ExecutionReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"✅ Succeeded", strconv.Itoa(report.SuccessCount())},
			{"❌ Failed", strconv.Itoa(report.FailureCount())},
			{"**Total**", "**" + strconv.Itoa(len(report.Results)) + "**"},
		},
	})
	md.PlainText("")

	if len(report.Results) > 0 {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ExecutionReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Action Results"),
		piechart.WithShowData(true),
	)
	if n := report.SuccessCount(); n > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(n))
	}
	if n := report.FailureCount(); n > 0 {
		chart.LabelAndIntValue("Failed", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ExecutionReport) {
	failed := report.FailureCount()
	switch {
	case len(report.Results) == 0:
		md.Note("The profile has no actions.")
	case failed == len(report.Results):
		md.Cautionf("All %d action(s) failed. Last run time was not updated.", failed)
	case failed > 0:
		md.Warningf("%d of %d action(s) failed. Last run time was not updated.", failed, len(report.Results))
	default:
		md.Tip("All actions succeeded.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeActions(md *markdown.Markdown, report *model.ExecutionReport) {
	md.H2("Actions")
	md.PlainText("")

	if len(report.Results) == 0 {
		md.PlainText("No actions were executed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Results))
	for i, res := range report.Results {
		status := "-"
		if res.StatusCode != 0 {
			status = strconv.Itoa(res.StatusCode)
		}
		url := res.URL
		if url == "" {
			url = "-"
		}
		result := "✅ Success"
		if !res.Succeeded() {
			result = "❌ Failed"
		}
		rows[i] = []string{
			strconv.Itoa(res.Index + 1),
			res.Name,
			res.Method.String(),
			"`" + truncateString(url, 60) + "`",
			status,
			result,
			res.Duration.Round(time.Millisecond).String(),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Name", "Method", "URL", "Status", "Result", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, res := range report.Results {
		if res.Error != "" {
			md.Details(fmt.Sprintf("%d. %s", res.Index+1, res.Name), res.Error)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeTags(md *markdown.Markdown, report *model.ExecutionReport) {
	if len(report.NewTags) == 0 {
		return
	}
	md.H2("New Tags")
	md.PlainText("")
	tags := make([]string, len(report.NewTags))
	for i, t := range report.NewTags {
		tags[i] = "#" + t
	}
	md.BulletList(tags...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.ExecutionReport) {
	if len(report.Warnings) == 0 {
		return
	}
	md.H2("Warnings")
	md.PlainText("")
	md.BulletList(report.Warnings...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [Emissary](https://github.com/azdolinski/emissary)*")
}

// truncateString shortens s to maxLen runes, ending with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
