package runner

import (
	"context"
	"log/slog"

	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/template"
)

// runState is the data shared by the steps of one run.
type runState struct {
	profile  model.Profile
	message  string // normalized
	params   model.ParamMap
	tc       template.Context
	settings model.AppSettings
	report   *model.ExecutionReport
}

// Step is a single stage of a run.
type Step interface {
	// Do performs the step. A returned error is logged; whether the
	// pipeline continues depends on its configuration.
	Do(ctx context.Context, st *runState) error

	// Name identifies the step in logs.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes the pipeline run the remaining steps after a
// step fails.
func WithContinueOnError(continueOnError bool) PipelineOption {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// NewPipeline creates an empty pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Execute runs every step against st. It returns the context error when
// cancelled between steps, or the first step error unless the pipeline
// continues on error.
func (p *Pipeline) Execute(ctx context.Context, st *runState) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled",
				"profile", st.profile.Name,
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"profile", st.profile.Name,
			"step", step.Name(),
		)

		if err := step.Do(ctx, st); err != nil {
			p.logger.Debug("step failed",
				"profile", st.profile.Name,
				"step", step.Name(),
				"error", err,
			)
			if !p.continueOnError {
				return err
			}
		}
	}
	return nil
}
