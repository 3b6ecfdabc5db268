package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestCurrentBuild tests that every field has a value.
func TestCurrentBuild(t *testing.T) {
	t.Parallel()

	b := currentBuild()
	if b.Version == "" || b.Commit == "" || b.Date == "" {
		t.Errorf("empty build field in %+v", b)
	}
	if len(b.Commit) > shortCommitLen {
		t.Errorf("commit %q not shortened", b.Commit)
	}
}

// TestNewVersionCmd tests the full and --short outputs.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"full", []string{}, []string{"emissary version ", "  commit: ", "  built:  "}},
		{"short", []string{"--short"}, []string{currentBuild().Version + "\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			cmd := NewVersionCmd()
			cmd.SetOut(&buf)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
		})
	}

	t.Run("short is one line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--short"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 || strings.Contains(buf.String(), "commit") {
			t.Errorf("unexpected short output %q", buf.String())
		}
	})
}
