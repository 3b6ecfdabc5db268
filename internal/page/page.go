package page

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/azdolinski/emissary/internal/model"
)

// Placeholders used when a page value cannot be determined.
const (
	UntitledPage     = "Untitled"
	UnknownURL       = "Unknown URL"
	ContentFetchFail = "Error: Unable to fetch page content"
)

// defaultMaxPageSize caps how much of a page is read.
const defaultMaxPageSize = 5 * 1024 * 1024

// Provider returns the page context for a run.
type Provider interface {
	Context(ctx context.Context) model.PageContext
}

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Static is a Provider with fixed values.
type Static model.PageContext

// Context implements Provider. Empty title and URL are replaced with
// placeholders.
func (s Static) Context(context.Context) model.PageContext {
	pc := model.PageContext(s)
	if pc.Title == "" {
		pc.Title = UntitledPage
	}
	if pc.URL == "" {
		pc.URL = UnknownURL
	}
	return pc
}

// Fetcher is a Provider that downloads a page.
type Fetcher struct {
	client  Doer
	url     string
	logger  *slog.Logger
	maxSize int64

	// Title and Content, when non-empty, override the fetched values.
	Title   string
	Content string
}

// NewFetcher creates a Fetcher for url.
func NewFetcher(client Doer, url string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		url:     url,
		logger:  logger,
		maxSize: defaultMaxPageSize,
	}
}

// Context implements Provider. Fetch failures never abort a run; they
// produce placeholder values instead.
func (f *Fetcher) Context(ctx context.Context) model.PageContext {
	pc := model.PageContext{
		Title:   UntitledPage,
		URL:     f.url,
		Content: ContentFetchFail,
	}
	if pc.URL == "" {
		pc.URL = UnknownURL
		return f.override(pc)
	}

	title, content, err := f.fetch(ctx)
	if err != nil {
		f.logger.Warn("failed to fetch page", "url", f.url, "error", err)
		return f.override(pc)
	}
	if title != "" {
		pc.Title = title
	}
	pc.Content = content
	return f.override(pc)
}

func (f *Fetcher) override(pc model.PageContext) model.PageContext {
	if f.Title != "" {
		pc.Title = f.Title
	}
	if f.Content != "" {
		pc.Content = f.Content
	}
	return pc
}

func (f *Fetcher) fetch(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", "", fmt.Errorf("invalid page URL: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize))
	if err != nil {
		return "", "", fmt.Errorf("failed to read page: %w", err)
	}

	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "html") {
		return "", string(body), nil
	}
	title, text, err := Extract(strings.NewReader(string(body)))
	if err != nil {
		return "", string(body), nil //nolint:nilerr // Unparseable HTML is kept as text
	}
	return title, text, nil
}

// Extract returns the <title> and the visible text of an HTML document.
// Text inside script, style, noscript and template elements is skipped;
// each text block is trimmed and blocks are joined by newlines.
func Extract(r io.Reader) (string, string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var (
		title string
		lines []string
	)
	var walk func(n *html.Node, inBody bool)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "script", "style", "noscript", "template":
				return
			case "body":
				inBody = true
			}
		}
		if n.Type == html.TextNode && inBody {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				lines = append(lines, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	walk(doc, false)

	return title, strings.Join(lines, "\n"), nil
}
