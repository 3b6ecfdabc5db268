package log

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

// MaskValue replaces sensitive values.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute, header and field names whose values are
// always masked. Lookups are lower-case.
var sensitiveKeys = keySet(
	// Headers an action may send or receive.
	"authorization", "proxy-authorization", "cookie", "set-cookie",
	"x-api-key", "x-auth-token", "x-csrf-token", "x-xsrf-token",

	// Parameter and data field names.
	"password", "passwd", "secret", "token", "auth",
	"api_key", "apikey", "api-key", "access_token", "refresh_token",
	"private_key", "privatekey", "secret_key", "secretkey",
	"credential", "credentials",

	// Session identifiers.
	"session", "session_id", "sessionid", "sid", "jsessionid",
)

// sensitiveKeywords mask any key containing them. The bare word "key" is
// not listed: "primary_key" or "cache_key" are not secrets.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "private", "cookie",
}

// sensitivePatterns mask string values under any key.
var sensitivePatterns = compileAll(
	`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`, // JWT
	`(?i)^bearer\s+.+`,
	`(?i)^basic\s+[A-Za-z0-9+/=]+$`,
	`^[a-zA-Z0-9]{32,}$`, // opaque API keys
	`^AKIA[0-9A-Z]{16}$`, // AWS access key id
	`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`,
)

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// SecureHandler is an slog.Handler that masks sensitive attributes, by key
// or by value, before passing records on. Groups are masked recursively
// and LogValuers are resolved first.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler uses slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(mask(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SecureHandler{handler: h.handler.WithAttrs(maskAll(attrs))}
}

func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func maskAll(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = mask(a)
	}
	return out
}

// mask returns a with its value replaced by MaskValue when the key or the
// string value is sensitive.
func mask(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch {
	case v.Kind() == slog.KindGroup:
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskAll(v.Group())...)}
	case IsSensitiveKey(a.Key):
		return slog.String(a.Key, MaskValue)
	case v.Kind() == slog.KindString && isSensitiveValue(v.String()):
		return slog.String(a.Key, MaskValue)
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// IsSensitiveKey reports whether values stored under key are masked.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if _, ok := sensitiveKeys[key]; ok {
		return true
	}
	return slices.ContainsFunc(sensitiveKeywords, func(kw string) bool {
		return strings.Contains(key, kw)
	})
}

func isSensitiveValue(value string) bool {
	return slices.ContainsFunc(sensitivePatterns, func(re *regexp.Regexp) bool {
		return re.MatchString(value)
	})
}
