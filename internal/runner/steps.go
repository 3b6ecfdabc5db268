package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/tags"
)

// errActionFailed marks a failed action step. The failure itself is
// recorded in the report.
var errActionFailed = errors.New("action failed")

// tagStep records new hashtags from the message.
type tagStep struct {
	// persist, when set, stores the merged tag set. Its error becomes a
	// report warning.
	persist func(ctx context.Context, added []string) error
}

func (s *tagStep) Name() string { return "tags" }

func (s *tagStep) Do(ctx context.Context, st *runState) error {
	added := tags.Extract(st.message, st.settings.Tags)
	if len(added) == 0 {
		return nil
	}
	st.report.NewTags = added
	st.settings.Tags = tags.Merge(st.settings.Tags, added)

	if s.persist == nil {
		return nil
	}
	if err := s.persist(ctx, added); err != nil {
		st.report.AddWarning("failed to save tags: %v", err)
		return err
	}
	return nil
}

// actionStep executes one action.
type actionStep struct {
	index    int
	action   model.Action
	executor ActionExecutor
}

func (s *actionStep) Name() string {
	return fmt.Sprintf("action[%d] %s", s.index, s.action.Name)
}

func (s *actionStep) Do(ctx context.Context, st *runState) error {
	result := s.executor.Execute(ctx, s.index, s.action, st.params, st.tc)
	st.report.AddResult(result)
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s", errActionFailed, result.Error)
	}
	return nil
}
