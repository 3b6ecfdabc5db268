package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/azdolinski/emissary/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	err       error
	callCount int
}

func (m *mockStep) Do(context.Context, *runState) error {
	m.callCount++
	return m.err
}

func (m *mockStep) Name() string { return m.name }

func newState() *runState {
	return &runState{report: model.NewExecutionReport(model.Profile{Name: "p"})}
}

// TestPipelineExecute tests step ordering and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	t.Run("stops on error by default", func(t *testing.T) {
		t.Parallel()

		first := &mockStep{name: "first", err: boom}
		second := &mockStep{name: "second"}
		p := NewPipeline(WithPipelineLogger(discardLogger()))
		p.AddSteps(first, second)

		if err := p.Execute(context.Background(), newState()); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
	})

	t.Run("continues on error", func(t *testing.T) {
		t.Parallel()

		steps := []*mockStep{{name: "a"}, {name: "b", err: boom}, {name: "c"}}
		p := NewPipeline(WithPipelineLogger(discardLogger()), WithContinueOnError(true))
		for _, s := range steps {
			p.AddSteps(s)
		}

		if err := p.Execute(context.Background(), newState()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		for _, s := range steps {
			if s.callCount != 1 {
				t.Errorf("step %s called %d times", s.name, s.callCount)
			}
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, p.StepNames()); diff != "" {
			t.Errorf("StepNames mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := NewPipeline(WithPipelineLogger(discardLogger()), WithContinueOnError(true))
		p.AddSteps(step)

		if err := p.Execute(ctx, newState()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}
