// Package report renders execution reports.
//
// Writers for each output format:
//   - SimpleWriter: the status summary as plain text lines
//   - HTMLWriter: the status summary as the HTML fragment shown in the popup
//   - JSONWriter: the full report, one JSON document per run
//   - MarkdownWriter: GitHub Flavored Markdown with tables, alerts and a pie chart
//
// Writers implement the Writer interface and can be combined with
// MultiWriter, for example to print a summary while saving JSON to a file.
package report
