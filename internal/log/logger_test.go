package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNew_LogFile tests that a log file receives masked JSON records.
func TestNew_LogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "emissary.log")
	var console bytes.Buffer

	logger, closer, err := New(Options{Writer: &console, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("debug only in file", "token", "abc")
	logger.Warn("visible everywhere", "action", "notify")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	file := string(b)

	if !strings.Contains(file, `"msg":"debug only in file"`) {
		t.Errorf("expected debug record in file: %s", file)
	}
	if strings.Contains(file, `"abc"`) {
		t.Errorf("expected token to be masked in file: %s", file)
	}
	if !strings.Contains(file, `"msg":"visible everywhere"`) {
		t.Errorf("expected warn record in file: %s", file)
	}

	if strings.Contains(console.String(), "debug only in file") {
		t.Errorf("expected debug record to be filtered from console: %s", console.String())
	}
	if !strings.Contains(console.String(), "visible everywhere") {
		t.Errorf("expected warn record on console: %s", console.String())
	}
}

// TestNew_NilWriter tests that a nil writer discards output.
func TestNew_NilWriter(t *testing.T) {
	t.Parallel()

	logger, closer, err := New(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()
	logger.Error("dropped")
}

// TestNew_WithAttrsFanout tests that attributes reach every handler.
func TestNew_WithAttrsFanout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.log")
	var console bytes.Buffer

	logger, closer, err := New(Options{Writer: &console, Verbose: true, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.With("profile", "blog").WithGroup("run").Info("started", "password", "hunter2")
	_ = closer.Close()

	b, _ := os.ReadFile(path)
	for name, out := range map[string]string{"console": console.String(), "file": string(b)} {
		if !strings.Contains(out, "blog") {
			t.Errorf("%s: expected profile attribute: %s", name, out)
		}
		if strings.Contains(out, "hunter2") {
			t.Errorf("%s: expected password to be masked: %s", name, out)
		}
	}
}

// TestRedactHeaders tests header group rendering.
func TestRedactHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Token xyz")
	h.Add("X-Trace", "a")
	h.Add("X-Trace", "b")

	attr := RedactHeaders(h)
	if attr.Key != "headers" {
		t.Fatalf("key = %q", attr.Key)
	}

	got := map[string]string{}
	var order []string
	for _, a := range attr.Value.Group() {
		got[a.Key] = a.Value.String()
		order = append(order, a.Key)
	}

	if got["Authorization"] != MaskValue {
		t.Errorf("Authorization = %q, want masked", got["Authorization"])
	}
	if got["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", got["Content-Type"])
	}
	if got["X-Trace"] != "a, b" {
		t.Errorf("X-Trace = %q", got["X-Trace"])
	}
	if strings.Join(order, ",") != "Authorization,Content-Type,X-Trace" {
		t.Errorf("order = %v", order)
	}

	// Also masked when passed through a plain handler.
	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("req", attr)
	if strings.Contains(buf.String(), "xyz") {
		t.Errorf("expected authorization to be masked: %s", buf.String())
	}
}
