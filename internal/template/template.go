// Package template substitutes run parameters into action URLs, headers
// and data values.
//
// Two token syntaxes exist:
//
//   - Percent tokens, "%key%", look up key in the run's ParamMap. They are
//     expanded in URLs, header values and data values.
//   - Dollar tokens, "$message", "$url", "$page_title" and "$page_content",
//     are literal substrings replaced with the message and page context,
//     first occurrence only. They are expanded in header and data values
//     only, after percent tokens.
//
// All functions are pure.
package template

import (
	"strings"

	"github.com/azdolinski/emissary/internal/model"
)

// Dollar token literals, in replacement order.
const (
	TokenMessage     = "$message"
	TokenURL         = "$url"
	TokenPageTitle   = "$page_title"
	TokenPageContent = "$page_content"
)

// Context holds the values substituted for dollar tokens.
type Context struct {
	Message string
	URL     string
	Title   string
	Content string
}

// NewContext builds a dollar-token context from a normalized message and
// the page context.
func NewContext(message string, page model.PageContext) Context {
	return Context{
		Message: message,
		URL:     page.URL,
		Title:   page.Title,
		Content: page.Content,
	}
}

// Expand replaces every %key% in tmpl whose key is present in params.
//
// A key is one or more characters other than '%'. When the key is missing
// the text is kept verbatim and the closing '%' is not consumed, so it can
// open the next token: "100% of %id%" still expands %id%. An empty value
// counts as present.
func Expand(tmpl string, params model.ParamMap) string {
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}

	var sb strings.Builder
	sb.Grow(len(tmpl))

	rest := tmpl
	for {
		open := strings.IndexByte(rest, '%')
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:open])

		closing := strings.IndexByte(rest[open+1:], '%')
		if closing < 0 {
			sb.WriteString(rest[open:])
			break
		}
		closing += open + 1

		key := rest[open+1 : closing]
		if key == "" {
			// "%%" is not a token; the second '%' may open one.
			sb.WriteByte('%')
			rest = rest[open+1:]
			continue
		}

		if value, ok := params[key]; ok {
			sb.WriteString(value)
			rest = rest[closing+1:]
			continue
		}

		sb.WriteString(rest[open:closing])
		rest = rest[closing:]
	}
	return sb.String()
}

// ExpandDollar replaces the dollar tokens in s, in fixed order:
// $message, $url, $page_title, $page_content. Only the first occurrence of
// each token is replaced; later ones stay literal.
func ExpandDollar(s string, c Context) string {
	s = strings.Replace(s, TokenMessage, c.Message, 1)
	s = strings.Replace(s, TokenURL, c.URL, 1)
	s = strings.Replace(s, TokenPageTitle, c.Title, 1)
	s = strings.Replace(s, TokenPageContent, c.Content, 1)
	return s
}

// ExpandValue expands a header or data value: percent tokens first, then
// dollar tokens.
func ExpandValue(s string, params model.ParamMap, c Context) string {
	return ExpandDollar(Expand(s, params), c)
}

// ExpandFields returns a new mapping with every value expanded by
// ExpandValue. Keys are never changed.
func ExpandFields(fields map[string]string, params model.ParamMap, c Context) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = ExpandValue(v, params, c)
	}
	return out
}
