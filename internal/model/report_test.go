package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestActionResultLine tests the user-facing per-action line.
func TestActionResultLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result ActionResult
		want   string
	}{
		{
			name:   "success",
			result: ActionResult{Name: "notify", State: StateSucceeded, StatusCode: 201},
			want:   "✅ notify: Success (Status: 201)",
		},
		{
			name: "failure",
			result: ActionResult{
				Name:  "notify",
				State: StateFailed,
				Error: `Action "notify" failed with status 500: boom`,
			},
			want: `❌ notify: Action "notify" failed with status 500: boom`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.result.Line(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExecutionReportCounts tests success and failure aggregation.
func TestExecutionReportCounts(t *testing.T) {
	t.Parallel()

	p, _ := NewProfile("p")
	r := NewExecutionReport(p)

	if !r.AllSucceeded() {
		t.Error("expected empty report to count as fully successful")
	}

	r.AddResult(ActionResult{Name: "a", State: StateSucceeded, StatusCode: 200})
	r.AddResult(ActionResult{Name: "b", State: StateFailed, Error: "x"})
	r.AddResult(ActionResult{Name: "c", State: StateSucceeded, StatusCode: 204})

	if r.SuccessCount() != 2 {
		t.Errorf("SuccessCount() = %d, want 2", r.SuccessCount())
	}
	if r.FailureCount() != 1 {
		t.Errorf("FailureCount() = %d, want 1", r.FailureCount())
	}
	if r.AllSucceeded() {
		t.Error("expected AllSucceeded to be false")
	}

	want := []string{
		"✅ a: Success (Status: 200)",
		"❌ b: x",
		"✅ c: Success (Status: 204)",
	}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

// TestActionState tests state transitions and text encoding.
func TestActionState(t *testing.T) {
	t.Parallel()

	t.Run("transitions", func(t *testing.T) {
		t.Parallel()

		allowed := []struct{ from, to ActionState }{
			{StatePending, StateExecuting},
			{StateExecuting, StateSucceeded},
			{StateExecuting, StateFailed},
		}
		for _, tr := range allowed {
			if !tr.from.CanTransitionTo(tr.to) {
				t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
			}
		}

		denied := []struct{ from, to ActionState }{
			{StatePending, StateSucceeded},
			{StateSucceeded, StateFailed},
			{StateFailed, StateExecuting},
		}
		for _, tr := range denied {
			if tr.from.CanTransitionTo(tr.to) {
				t.Errorf("expected %s -> %s to be rejected", tr.from, tr.to)
			}
		}
	})

	t.Run("json text", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(ActionResult{Name: "a", State: StateFailed})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back ActionResult
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back.State != StateFailed {
			t.Errorf("expected failed state, got %s", back.State)
		}
	})

	t.Run("unknown string", func(t *testing.T) {
		t.Parallel()

		if ActionState(42).String() != "unknown" {
			t.Errorf("expected unknown, got %s", ActionState(42))
		}
	})
}

// TestProfileJSONCompatibility tests decoding documents in the stored format.
func TestProfileJSONCompatibility(t *testing.T) {
	t.Parallel()

	raw := `[{"id":"k3x9","name":"Blog","status":true,"lastRun":"2024-03-01T10:00:00.000Z",
	"actions":[{"name":"Post","method":"POST","url":"https://x/%id%",
	"headers":{"Content-Type":"text/plain"},"data":{"count":3,"draft":false,"body":"$message"}}]}]`

	var profiles []Profile
	if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	p := profiles[0]
	if p.LastRun == nil || p.LastRun.Year() != 2024 {
		t.Errorf("unexpected lastRun %v", p.LastRun)
	}
	want := Fields{"count": "3", "draft": "false", "body": "$message"}
	if diff := cmp.Diff(want, p.Actions[0].Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if p.Actions[0].Method != MethodPost {
		t.Errorf("expected POST, got %s", p.Actions[0].Method)
	}
}

// TestParseMethod tests case-insensitive method parsing.
func TestParseMethod(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"get", "Post", " PUT "} {
		if _, err := ParseMethod(in); err != nil {
			t.Errorf("ParseMethod(%q): unexpected error %v", in, err)
		}
	}
	if _, err := ParseMethod("DELETE"); err == nil {
		t.Error("expected DELETE to be rejected")
	}
}
