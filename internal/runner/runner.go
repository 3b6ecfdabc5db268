package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/page"
	"github.com/azdolinski/emissary/internal/params"
	"github.com/azdolinski/emissary/internal/store"
	"github.com/azdolinski/emissary/internal/tags"
	"github.com/azdolinski/emissary/internal/template"
)

// DefaultLockTTL is the stale timeout of the store run lock.
const DefaultLockTTL = 5 * time.Minute

// ActionExecutor runs one action. *executor.Executor satisfies it.
type ActionExecutor interface {
	Execute(ctx context.Context, index int, action model.Action, params model.ParamMap, tc template.Context) model.ActionResult
}

// Store is the persistence a Runner needs. store.Backend satisfies it.
type Store interface {
	store.KV
	store.RunHistory
	store.RunLocker
}

// Runner executes profiles.
type Runner struct {
	executor ActionExecutor
	store    Store
	repo     *store.Repository
	logger   *slog.Logger
	lockTTL  time.Duration
	now      func() time.Time

	// owner identifies this runner in store run locks.
	owner string

	inFlightMu sync.Mutex
	inFlight   map[string]struct{}

	// writeMu serializes read-modify-write cycles on stored documents.
	writeMu sync.Mutex
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithLockTTL sets the stale timeout of the store run lock. Non-positive
// values keep the default.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Runner) {
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner. st may be nil when only Execute is used.
func New(exec ActionExecutor, st Store, opts ...Option) *Runner {
	r := &Runner{
		executor: exec,
		store:    st,
		lockTTL:  DefaultLockTTL,
		now:      time.Now,
		owner:    uuid.NewString(),
		inFlight: make(map[string]struct{}),
	}
	if st != nil {
		r.repo = store.NewRepository(st)
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Execute runs every action of profile in order against a snapshot of the
// input, page and settings. It returns the report and the settings with
// any new tags merged. Nothing is persisted.
func (r *Runner) Execute(ctx context.Context, profile model.Profile, input model.UserInput, pc model.PageContext, settings model.AppSettings) (*model.ExecutionReport, model.AppSettings) {
	st := r.execute(ctx, profile, input, pc, settings, nil)
	return st.report, st.settings
}

func (r *Runner) execute(
	ctx context.Context,
	profile model.Profile,
	input model.UserInput,
	pc model.PageContext,
	settings model.AppSettings,
	persistTags func(context.Context, []string) error,
) *runState {
	message := tags.Normalize(input.TextBoxMessage)
	st := &runState{
		profile:  profile.Clone(),
		message:  message,
		params:   params.Resolve(input.ParamInput, message, pc),
		tc:       template.NewContext(message, pc),
		settings: settings.Clone(),
		report:   model.NewExecutionReport(profile),
	}
	st.report.StartedAt = r.now()

	p := NewPipeline(WithPipelineLogger(r.logger), WithContinueOnError(true))
	p.AddSteps(&tagStep{persist: persistTags})
	for i, a := range st.profile.Actions {
		p.AddSteps(&actionStep{index: i, action: a, executor: r.executor})
	}

	r.logger.Info("running profile",
		"profile", profile.Name,
		"actions", len(profile.Actions),
	)

	if err := p.Execute(ctx, st); err != nil {
		// Cancelled between actions: the rest are reported as failed.
		for i := len(st.report.Results); i < len(st.profile.Actions); i++ {
			a := st.profile.Actions[i]
			st.report.AddResult(model.ActionResult{
				Index:  i,
				Name:   a.Name,
				Method: a.Method,
				State:  model.StateFailed,
				Error:  fmt.Sprintf("run cancelled: %v", err),
			})
		}
	}

	st.report.FinishedAt = r.now()
	r.logger.Info("profile finished",
		"profile", profile.Name,
		"succeeded", st.report.SuccessCount(),
		"failed", st.report.FailureCount(),
	)
	return st
}

var errNoStore = errors.New("runner has no store")

// Request describes a store-backed run.
type Request struct {
	// Profile is a profile ID or exact name. Empty uses the stored selection.
	Profile string

	// Params and Message replace the stored input when non-nil.
	Params  *string
	Message *string

	// Page supplies the page context. Nil uses placeholders.
	Page page.Provider

	// InsertLink appends a Markdown link to the page to the message. The
	// extended message is what gets stored and run.
	InsertLink bool
}

// Run executes one profile with persistence. Precondition errors
// (ErrNoProfileSelected, model.ErrProfileNotFound, ErrProfileDisabled,
// ErrRunInProgress) are returned before anything runs. When the report is
// non-nil, all actions were attempted; a non-nil error alongside it means
// the final store update failed.
func (r *Runner) Run(ctx context.Context, req Request) (*model.ExecutionReport, error) {
	if r.repo == nil {
		return nil, errNoStore
	}

	state, err := r.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	profile, err := resolveProfile(state, req.Profile)
	if err != nil {
		return nil, err
	}

	release, err := r.acquire(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	input := state.Input
	if req.Params != nil {
		input.ParamInput = *req.Params
	}
	if req.Message != nil {
		input.TextBoxMessage = *req.Message
	}

	provider := req.Page
	if provider == nil {
		provider = page.Static{}
	}
	pc := provider.Context(ctx)
	if req.InsertLink {
		input.TextBoxMessage = page.InsertLink(input.TextBoxMessage, pc)
	}

	if err := r.saveInput(ctx, input); err != nil {
		return nil, err
	}

	st := r.execute(ctx, profile, input, pc, state.Settings, r.mergeTags)
	report := st.report

	if id, err := r.store.SaveRun(context.WithoutCancel(ctx), report); err != nil {
		r.logger.Warn("failed to save run history", "profile", profile.Name, "error", err)
		report.AddWarning("failed to save run history: %v", err)
	} else {
		report.RunID = id
	}

	if !report.AllSucceeded() {
		return report, nil
	}
	if err := r.finish(context.WithoutCancel(ctx), profile.ID, report.FinishedAt); err != nil {
		return report, err
	}
	return report, nil
}

func resolveProfile(state store.State, ref string) (model.Profile, error) {
	if ref == "" {
		ref = state.Input.SelectedProfileID
	}
	if ref == "" {
		return model.Profile{}, ErrNoProfileSelected
	}
	profile, _, ok := model.FindProfile(state.Profiles, ref)
	if !ok {
		return model.Profile{}, fmt.Errorf("%w: %s", model.ErrProfileNotFound, ref)
	}
	if !profile.Status {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileDisabled, profile.Name)
	}
	return profile, nil
}

// acquire takes the in-process and store run locks for profileID.
func (r *Runner) acquire(ctx context.Context, profileID string) (func(), error) {
	r.inFlightMu.Lock()
	if _, busy := r.inFlight[profileID]; busy {
		r.inFlightMu.Unlock()
		return nil, ErrRunInProgress
	}
	r.inFlight[profileID] = struct{}{}
	r.inFlightMu.Unlock()

	releaseLocal := func() {
		r.inFlightMu.Lock()
		delete(r.inFlight, profileID)
		r.inFlightMu.Unlock()
	}

	ok, err := r.store.AcquireRunLock(ctx, profileID, r.owner, r.lockTTL)
	if err != nil {
		releaseLocal()
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		releaseLocal()
		return nil, ErrRunInProgress
	}

	return func() {
		if err := r.store.ReleaseRunLock(context.WithoutCancel(ctx), profileID, r.owner); err != nil {
			r.logger.Warn("failed to release run lock", "profile_id", profileID, "error", err)
		}
		releaseLocal()
	}, nil
}

func (r *Runner) saveInput(ctx context.Context, input model.UserInput) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	// Keep whatever selection is stored now; only params and message
	// belong to this run.
	current, err := r.repo.UserInput(ctx)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	current.ParamInput = input.ParamInput
	current.TextBoxMessage = input.TextBoxMessage
	if err := r.repo.SaveUserInput(ctx, current); err != nil {
		return fmt.Errorf("failed to save input: %w", err)
	}
	return nil
}

// mergeTags adds tags to the stored settings. Settings are re-read so
// concurrent runs do not drop each other's tags.
func (r *Runner) mergeTags(ctx context.Context, added []string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	settings, err := r.repo.Settings(ctx)
	if err != nil {
		r.logger.Warn("failed to load settings", "error", err)
		return err
	}
	settings.Tags = tags.Merge(settings.Tags, added)
	if err := r.repo.SaveSettings(ctx, settings); err != nil {
		r.logger.Warn("failed to save tags", "tags", added, "error", err)
		return err
	}
	r.logger.Debug("saved new tags", "tags", added)
	return nil
}

// finish stamps the profile's last run and clears the stored input.
func (r *Runner) finish(ctx context.Context, profileID string, at time.Time) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	profiles, err := r.repo.Profiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	current, _, ok := model.FindProfile(profiles, profileID)
	if !ok {
		// Deleted while running.
		r.logger.Warn("profile disappeared during run", "profile_id", profileID)
	} else {
		updated, err := model.ReplaceProfile(profiles, current.StampLastRun(at))
		if err != nil {
			return err
		}
		if err := r.repo.SaveProfiles(ctx, updated); err != nil {
			return fmt.Errorf("failed to save last run: %w", err)
		}
	}

	input, err := r.repo.UserInput(ctx)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	if err := r.repo.SaveUserInput(ctx, input.Cleared()); err != nil {
		return fmt.Errorf("failed to clear input: %w", err)
	}
	return nil
}
