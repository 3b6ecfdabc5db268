package page

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/azdolinski/emissary/internal/model"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Release notes </title>
  <style>body { color: red; }</style>
</head>
<body>
  <h1>Version   2.0</h1>
  <script>var secret = 1;</script>
  <p>Faster
     builds</p>
</body>
</html>`

// TestExtract tests title and visible text extraction.
func TestExtract(t *testing.T) {
	t.Parallel()

	title, text, err := Extract(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Release notes" {
		t.Errorf("title = %q", title)
	}
	if text != "Version 2.0\nFaster builds" {
		t.Errorf("text = %q", text)
	}
}

// TestStatic tests placeholder handling of static page values.
func TestStatic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Static
		want model.PageContext
	}{
		{
			name: "all set",
			in:   Static{Title: "T", URL: "https://x", Content: "C"},
			want: model.PageContext{Title: "T", URL: "https://x", Content: "C"},
		},
		{
			name: "empty",
			in:   Static{},
			want: model.PageContext{Title: UntitledPage, URL: UnknownURL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, tt.in.Context(context.Background())); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type errDoer struct{}

func (errDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

// TestFetcher tests fetching page context over HTTP.
func TestFetcher(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, samplePage)
		case "/plain":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "just text")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Run("html page", func(t *testing.T) {
		t.Parallel()

		got := NewFetcher(srv.Client(), srv.URL+"/page", nil).Context(context.Background())
		want := model.PageContext{
			Title:   "Release notes",
			URL:     srv.URL + "/page",
			Content: "Version 2.0\nFaster builds",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()

		got := NewFetcher(srv.Client(), srv.URL+"/plain", nil).Context(context.Background())
		if got.Title != UntitledPage || got.Content != "just text" {
			t.Errorf("unexpected context %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		got := NewFetcher(srv.Client(), srv.URL+"/missing", nil).Context(context.Background())
		if got.Content != ContentFetchFail || got.Title != UntitledPage {
			t.Errorf("unexpected context %+v", got)
		}
		if got.URL != srv.URL+"/missing" {
			t.Errorf("URL = %q", got.URL)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		got := NewFetcher(errDoer{}, "https://example.invalid", nil).Context(context.Background())
		if got.Content != ContentFetchFail {
			t.Errorf("Content = %q", got.Content)
		}
	})

	t.Run("no url", func(t *testing.T) {
		t.Parallel()

		got := NewFetcher(errDoer{}, "", nil).Context(context.Background())
		if got.URL != UnknownURL || got.Content != ContentFetchFail {
			t.Errorf("unexpected context %+v", got)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(srv.Client(), srv.URL+"/page", nil)
		f.Title = "Mine"
		f.Content = "custom"
		got := f.Context(context.Background())
		if got.Title != "Mine" || got.Content != "custom" {
			t.Errorf("unexpected context %+v", got)
		}
	})
}
