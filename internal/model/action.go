package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Method is the HTTP method of an Action.
type Method string

// Supported HTTP methods.
const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
	MethodPut  Method = "PUT"
)

// Methods returns all supported methods in display order.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut}
}

// ParseMethod converts s into a Method. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
	return m, nil
}

// IsSupported reports whether m is one of GET, POST or PUT.
func (m Method) IsSupported() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut:
		return true
	default:
		return false
	}
}

// HasBody reports whether requests with this method carry a JSON body.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut
}

// String returns the method name.
func (m Method) String() string {
	return string(m)
}

// Fields is a string-to-string mapping used for action headers and data.
// Values are templates expanded at run time.
//
// Older dumps may contain non-string JSON values in data objects (numbers,
// booleans, nested objects). UnmarshalJSON accepts them and keeps their
// compact JSON text as the value.
type Fields map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		case json.Number:
			out[k] = val.String()
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return err
			}
			out[k] = string(b)
		}
	}
	*f = out
	return nil
}

// ParseFields parses a JSON object into Fields.
// Anything other than an object yields ErrInvalidData.
func ParseFields(raw string) (Fields, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrInvalidData
	}
	var f Fields
	if err := json.Unmarshal([]byte(trimmed), &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return f, nil
}

// Clone returns a copy of f. A nil Fields clones to an empty one.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	maps.Copy(out, f)
	return out
}

// Action is one templated HTTP request definition.
type Action struct {
	// Name identifies the action in execution reports.
	Name string `json:"name"`

	// Method is GET, POST or PUT.
	Method Method `json:"method"`

	// URL may contain %key% tokens.
	URL string `json:"url"`

	// Headers may contain %key% and $message-style tokens in their values.
	Headers Fields `json:"headers"`

	// Data holds query parameters for GET and the JSON body for POST/PUT.
	Data Fields `json:"data"`
}

// NewAction returns an Action with the given name, method GET and empty
// header and data mappings.
func NewAction(name string) Action {
	return Action{
		Name:    name,
		Method:  MethodGet,
		Headers: Fields{},
		Data:    Fields{},
	}
}

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	a.Headers = a.Headers.Clone()
	a.Data = a.Data.Clone()
	return a
}

// ActionPatch describes a field-level update of an Action.
// Nil fields are left unchanged.
type ActionPatch struct {
	Name    *string
	Method  *Method
	URL     *string
	Headers Fields
	Data    Fields
}

// Apply returns a copy of a with the patch applied.
// Headers and Data, when non-nil, replace the existing mappings.
func (p ActionPatch) Apply(a Action) (Action, error) {
	out := a.Clone()
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return a, ErrEmptyName
		}
		out.Name = *p.Name
	}
	if p.Method != nil {
		if !p.Method.IsSupported() {
			return a, fmt.Errorf("%w: %q", ErrUnsupportedMethod, *p.Method)
		}
		out.Method = *p.Method
	}
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Headers != nil {
		out.Headers = p.Headers.Clone()
	}
	if p.Data != nil {
		out.Data = p.Data.Clone()
	}
	return out, nil
}
