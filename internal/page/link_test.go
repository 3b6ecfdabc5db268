package page

import (
	"testing"

	"github.com/azdolinski/emissary/internal/model"
)

// TestInsertLink tests appending a Markdown page link to a message.
func TestInsertLink(t *testing.T) {
	t.Parallel()

	pc := model.PageContext{Title: "Go 1.25 is released", URL: "https://go.dev/blog/go1.25"}
	link := "[Go 1.25 is released](https://go.dev/blog/go1.25)"

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"empty message", "", link},
		{"space added", "Read this #golang", "Read this #golang " + link},
		{"trailing space kept", "Read this ", "Read this " + link},
		{"trailing newline kept", "Read this\n", "Read this\n" + link},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InsertLink(tt.message, pc); got != tt.want {
				t.Errorf("InsertLink(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}

	t.Run("placeholders", func(t *testing.T) {
		t.Parallel()

		pc := Static{}.Context(t.Context())
		if got := Link(pc); got != "[Untitled](Unknown URL)" {
			t.Errorf("Link = %q", got)
		}
	})
}
