package log

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// RedactHeaders renders h as a "headers" group with one attribute per
// header, sorted by name. Values of sensitive headers are masked here so
// they stay hidden even under a handler that is not a SecureHandler.
func RedactHeaders(h http.Header) slog.Attr {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	attrs := make([]any, 0, len(names))
	for _, name := range names {
		value := strings.Join(h[name], ", ")
		if IsSensitiveKey(name) {
			value = MaskValue
		}
		attrs = append(attrs, slog.String(name, value))
	}
	return slog.Group("headers", attrs...)
}
