package page

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/azdolinski/emissary/internal/model"
)

// Link formats pc as a Markdown link: "[title](url)".
func Link(pc model.PageContext) string {
	return "[" + pc.Title + "](" + pc.URL + ")"
}

// InsertLink appends the Markdown link for pc to message. A space is put
// in between unless message is empty or already ends in whitespace.
func InsertLink(message string, pc model.PageContext) string {
	link := Link(pc)
	if message == "" {
		return link
	}
	if r, _ := utf8.DecodeLastRuneInString(message); unicode.IsSpace(r) {
		return message + link
	}
	var sb strings.Builder
	sb.Grow(len(message) + 1 + len(link))
	sb.WriteString(message)
	sb.WriteByte(' ')
	sb.WriteString(link)
	return sb.String()
}
