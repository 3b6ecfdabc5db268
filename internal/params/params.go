// Package params builds the parameter map of a run from free-text
// "key=value" input and the reserved page-context keys.
package params

import (
	"strings"

	"github.com/azdolinski/emissary/internal/model"
)

// Parse turns "key=value,key2=value2" into a ParamMap.
//
// Segments are split on ',' and then on the first '='. Keys and values are
// trimmed. Segments without a non-empty key and value are dropped. A later
// duplicate key overwrites an earlier one. Parse never fails.
func Parse(input string) model.ParamMap {
	out := make(model.ParamMap)
	for _, segment := range strings.Split(input, ",") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// Resolve parses input and injects the reserved keys. The reserved keys
// always overwrite user-supplied keys of the same name.
//
// message must already be normalized (see tags.Normalize).
func Resolve(input, message string, page model.PageContext) model.ParamMap {
	out := Parse(input)
	out[model.ParamTextBox] = message
	out[model.ParamPageName] = page.Title
	out[model.ParamPageURL] = page.URL
	out[model.ParamPageContent] = page.Content
	return out
}
