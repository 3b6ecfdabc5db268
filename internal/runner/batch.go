package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azdolinski/emissary/internal/model"
)

// DefaultConcurrency bounds RunBatch when no limit is given.
const DefaultConcurrency = 4

// BatchResult is the outcome of one profile in a batch.
type BatchResult struct {
	// Profile is the reference as given to RunBatch.
	Profile string

	// Report is nil when the run did not start.
	Report *model.ExecutionReport

	// Err is a precondition or store error.
	Err error
}

// RunBatch runs each referenced profile once, at most concurrency at a
// time. Each profile's actions still run sequentially. The params, message
// and page of base apply to every profile; base.Profile is ignored.
// Results are returned in the order of refs with duplicates removed. The
// returned error is non-nil only when ctx is cancelled before all runs
// started.
func (r *Runner) RunBatch(ctx context.Context, refs []string, base Request, concurrency int) ([]BatchResult, error) {
	if r.repo == nil {
		return nil, errNoStore
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	refs = dedupe(refs)

	// Resolve the input once so that a run clearing it on success does
	// not change the input seen by the others.
	if base.Params == nil || base.Message == nil {
		input, err := r.repo.UserInput(ctx)
		if err != nil {
			return nil, err
		}
		if base.Params == nil {
			base.Params = &input.ParamInput
		}
		if base.Message == nil {
			base.Message = &input.TextBoxMessage
		}
	}

	r.logger.Info("starting batch",
		"profiles", len(refs),
		"concurrency", concurrency,
	)
	start := time.Now()

	results := make([]BatchResult, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = BatchResult{Profile: ref, Err: err}
				return err
			}

			req := base
			req.Profile = ref
			report, err := r.Run(gctx, req)
			results[i] = BatchResult{Profile: ref, Report: report, Err: err}
			if err != nil {
				r.logger.Warn("profile run failed", "profile", ref, "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	r.logger.Info("batch complete",
		"profiles", len(refs),
		"elapsed", time.Since(start),
	)
	return results, err
}

func dedupe(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
