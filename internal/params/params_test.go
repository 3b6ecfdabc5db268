package params

import (
	"testing"

	"github.com/azdolinski/emissary/internal/model"
	"github.com/google/go-cmp/cmp"
)

// TestParse tests free-text parameter parsing.
func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  model.ParamMap
	}{
		{
			name:  "simple pairs",
			input: "id=42,channel=news",
			want:  model.ParamMap{"id": "42", "channel": "news"},
		},
		{
			name:  "trims whitespace",
			input: "  id =  42 , channel= news ",
			want:  model.ParamMap{"id": "42", "channel": "news"},
		},
		{
			name:  "later duplicates win",
			input: "id=1,id=2",
			want:  model.ParamMap{"id": "2"},
		},
		{
			name:  "splits on first equals",
			input: "q=a=b",
			want:  model.ParamMap{"q": "a=b"},
		},
		{
			name:  "drops malformed segments",
			input: "novalue=,=nokey,plain,,ok=1",
			want:  model.ParamMap{"ok": "1"},
		},
		{
			name:  "empty input",
			input: "",
			want:  model.ParamMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, Parse(tt.input)); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

// TestResolve tests reserved key injection.
func TestResolve(t *testing.T) {
	t.Parallel()

	page := model.PageContext{
		Title:   "Example",
		URL:     "https://example.com/a",
		Content: "<html></html>",
	}

	t.Run("reserved keys always present", func(t *testing.T) {
		t.Parallel()

		got := Resolve("", "hi #go", page)
		want := model.ParamMap{
			"text_box":     "hi #go",
			"page_name":    "Example",
			"page_url":     "https://example.com/a",
			"page_content": "<html></html>",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reserved keys override user input", func(t *testing.T) {
		t.Parallel()

		got := Resolve("page_url=evil,text_box=x,id=7", "msg", page)
		if got["page_url"] != page.URL {
			t.Errorf("page_url = %q, want %q", got["page_url"], page.URL)
		}
		if got["text_box"] != "msg" {
			t.Errorf("text_box = %q, want %q", got["text_box"], "msg")
		}
		if got["id"] != "7" {
			t.Errorf("id = %q, want 7", got["id"])
		}
	})

	t.Run("placeholder page values are ordinary strings", func(t *testing.T) {
		t.Parallel()

		got := Resolve("", "", model.PageContext{
			Title:   "Untitled",
			URL:     "Unknown URL",
			Content: "Error: Unable to fetch page content",
		})
		if got["page_url"] != "Unknown URL" {
			t.Errorf("page_url = %q", got["page_url"])
		}
	})
}
