package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/azdolinski/emissary/internal/log"
	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/template"
)

const (
	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// headerCookie is stripped from every outgoing request.
	headerCookie = "cookie"

	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	headerHost        = "Host"

	contentTypeJSON = "application/json"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor runs single actions.
type Executor struct {
	// client sends the requests.
	client Doer

	// logger is used for structured logging of state transitions.
	logger *slog.Logger

	// userAgent is set on requests whose action defines no User-Agent.
	userAgent string

	// maxBodySize caps the bytes read from a response body.
	maxBodySize int64
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithUserAgent sets the default User-Agent. An empty string sends none.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		e.userAgent = ua
	}
}

// WithMaxBodySize sets the response body limit. Non-positive values keep
// the default.
func WithMaxBodySize(n int64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxBodySize = n
		}
	}
}

// New creates an Executor that sends requests through client.
func New(client Doer, opts ...Option) *Executor {
	e := &Executor{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Execute runs one action and returns its terminal result. It never
// returns an error: every problem becomes a failed result.
func (e *Executor) Execute(ctx context.Context, index int, action model.Action, params model.ParamMap, tc template.Context) (result model.ActionResult) {
	result = model.ActionResult{
		Index:  index,
		Name:   action.Name,
		Method: action.Method,
		State:  model.StatePending,
	}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	e.transition(&result, model.StateExecuting)

	req, err := e.BuildRequest(ctx, action, params, tc)
	if err != nil {
		e.fail(&result, err.Error())
		return result
	}
	result.URL = req.URL.String()

	e.logger.Debug("sending request",
		"action", action.Name,
		"method", req.Method,
		"url", result.URL,
		log.RedactHeaders(req.Header),
	)

	resp, err := e.client.Do(req)
	if err != nil {
		e.fail(&result, err.Error())
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		e.fail(&result, fmt.Sprintf("failed to read response: %v", err))
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Response = e.decodeBody(resp.Header.Get(headerContentType), body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.fail(&result, fmt.Sprintf(`Action "%s" failed with status %d: %s`,
			action.Name, resp.StatusCode, strings.TrimSpace(string(body))))
		return result
	}

	e.transition(&result, model.StateSucceeded)
	return result
}

// BuildRequest constructs the HTTP request for action without sending it.
func (e *Executor) BuildRequest(ctx context.Context, action model.Action, params model.ParamMap, tc template.Context) (*http.Request, error) {
	if !action.Method.IsSupported() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedMethod, action.Method)
	}

	target := template.Expand(action.URL, params)
	headers := NewHeader(template.ExpandFields(action.Headers, params, tc))
	data := template.ExpandFields(action.Data, params, tc)

	headers.Del(headerCookie)

	var body io.Reader
	switch action.Method {
	case model.MethodGet:
		target = appendQuery(target, data)
	case model.MethodPost, model.MethodPut:
		headers.Set(headerContentType, contentTypeJSON)
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	if e.userAgent != "" && !headers.Has(headerUserAgent) {
		headers.Set(headerUserAgent, e.userAgent)
	}

	req, err := http.NewRequestWithContext(ctx, action.Method.String(), target, body)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.Header = headers.HTTP()
	if host, ok := headers.Get(headerHost); ok {
		req.Host = host
	}

	return req, nil
}

// appendQuery encodes data as a query string and appends it to target.
// Nothing is appended when data is empty.
func appendQuery(target string, data map[string]string) string {
	if len(data) == 0 {
		return target
	}
	q := make(url.Values, len(data))
	for k, v := range data {
		q.Set(k, v)
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + q.Encode()
}

// decodeBody parses body as JSON when contentType says so, falling back to
// the raw text.
func (e *Executor) decodeBody(contentType string, body []byte) any {
	if strings.Contains(strings.ToLower(contentType), contentTypeJSON) {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
		e.logger.Debug("response declared JSON but did not parse",
			"content_type", contentType,
			"size", len(body),
		)
	}
	return string(body)
}

// fail moves result to StateFailed with the given message.
func (e *Executor) fail(result *model.ActionResult, msg string) {
	result.Error = msg
	e.transition(result, model.StateFailed)
}

// transition moves result to next, logging the change.
func (e *Executor) transition(result *model.ActionResult, next model.ActionState) {
	if !result.State.CanTransitionTo(next) {
		e.logger.Error("invalid action state transition",
			"action", result.Name,
			"from", result.State,
			"to", next,
		)
		return
	}

	prev := result.State
	result.State = next

	switch next {
	case model.StateFailed:
		e.logger.Warn("action failed",
			"action", result.Name,
			"status", result.StatusCode,
			"error", result.Error,
		)
	case model.StateSucceeded:
		e.logger.Info("action succeeded",
			"action", result.Name,
			"status", result.StatusCode,
		)
	default:
		e.logger.Debug("action state changed",
			"action", result.Name,
			"from", prev,
			"to", next,
		)
	}
}
