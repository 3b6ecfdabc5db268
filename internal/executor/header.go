package executor

import (
	"net/http"
	"slices"
	"strings"
)

// Header is a case-insensitive header mapping.
//
// Keys are folded to lower case for lookup; the spelling used by the last
// Set is kept for sending. Unlike http.Header, removal and replacement do
// not depend on MIME canonicalization, so "cookie", "Cookie" and "COOKIE"
// always refer to the same entry.
type Header struct {
	fields map[string]headerField
}

type headerField struct {
	name  string
	value string
}

// NewHeader builds a Header from a plain mapping. When m holds several
// spellings of the same name, the one that sorts last wins, which keeps
// the result deterministic.
func NewHeader(m map[string]string) *Header {
	h := &Header{fields: make(map[string]headerField, len(m))}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		h.Set(name, m[name])
	}
	return h
}

// Set adds or replaces the header name.
func (h *Header) Set(name, value string) {
	h.fields[strings.ToLower(name)] = headerField{name: name, value: value}
}

// Get returns the value of name and whether it is present.
func (h *Header) Get(name string) (string, bool) {
	f, ok := h.fields[strings.ToLower(name)]
	return f.value, ok
}

// Has reports whether name is present.
func (h *Header) Has(name string) bool {
	_, ok := h.fields[strings.ToLower(name)]
	return ok
}

// Del removes name regardless of its case.
func (h *Header) Del(name string) {
	delete(h.fields, strings.ToLower(name))
}

// Len returns the number of headers.
func (h *Header) Len() int {
	return len(h.fields)
}

// Names returns the header names as last set, sorted.
func (h *Header) Names() []string {
	names := make([]string, 0, len(h.fields))
	for _, f := range h.fields {
		names = append(names, f.name)
	}
	slices.Sort(names)
	return names
}

// Map returns the headers as a plain mapping keyed by their set spelling.
func (h *Header) Map() map[string]string {
	out := make(map[string]string, len(h.fields))
	for _, f := range h.fields {
		out[f.name] = f.value
	}
	return out
}

// HTTP converts the headers into an http.Header.
func (h *Header) HTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		out.Set(f.name, f.value)
	}
	return out
}
