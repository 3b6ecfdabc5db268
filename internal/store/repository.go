package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/azdolinski/emissary/internal/model"
)

// Repository provides typed access to the documents in a KV.
type Repository struct {
	kv KV
}

// NewRepository wraps kv.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// State is a consistent read of all three documents.
type State struct {
	Profiles []model.Profile
	Settings model.AppSettings
	Input    model.UserInput
}

// Load reads profiles, settings and user input in a single Get.
func (r *Repository) Load(ctx context.Context) (State, error) {
	values, err := r.kv.Get(ctx, KeyProfiles, KeySettings, KeyUserInput)
	if err != nil {
		return State{}, err
	}

	state := State{
		Profiles: []model.Profile{},
		Settings: model.DefaultSettings(),
	}
	if err := decode(values, KeyProfiles, &state.Profiles); err != nil {
		return State{}, err
	}
	if err := decode(values, KeySettings, &state.Settings); err != nil {
		return State{}, err
	}
	if err := decode(values, KeyUserInput, &state.Input); err != nil {
		return State{}, err
	}
	if state.Profiles == nil {
		state.Profiles = []model.Profile{}
	}
	if state.Settings.Tags == nil {
		state.Settings.Tags = []string{}
	}
	return state, nil
}

// Profiles returns the stored profiles. A missing document yields an
// empty slice.
func (r *Repository) Profiles(ctx context.Context) ([]model.Profile, error) {
	values, err := r.kv.Get(ctx, KeyProfiles)
	if err != nil {
		return nil, err
	}
	profiles := []model.Profile{}
	if err := decode(values, KeyProfiles, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return profiles, nil
}

// SaveProfiles replaces the stored profiles.
func (r *Repository) SaveProfiles(ctx context.Context, profiles []model.Profile) error {
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return r.set(ctx, KeyProfiles, profiles)
}

// Settings returns the stored settings, or defaults when none exist.
func (r *Repository) Settings(ctx context.Context) (model.AppSettings, error) {
	values, err := r.kv.Get(ctx, KeySettings)
	if err != nil {
		return model.AppSettings{}, err
	}
	settings := model.DefaultSettings()
	if err := decode(values, KeySettings, &settings); err != nil {
		return model.AppSettings{}, err
	}
	if settings.Tags == nil {
		settings.Tags = []string{}
	}
	return settings, nil
}

// SaveSettings replaces the stored settings.
func (r *Repository) SaveSettings(ctx context.Context, settings model.AppSettings) error {
	return r.set(ctx, KeySettings, settings.Clone())
}

// UserInput returns the stored transient input.
func (r *Repository) UserInput(ctx context.Context) (model.UserInput, error) {
	values, err := r.kv.Get(ctx, KeyUserInput)
	if err != nil {
		return model.UserInput{}, err
	}
	var input model.UserInput
	if err := decode(values, KeyUserInput, &input); err != nil {
		return model.UserInput{}, err
	}
	return input, nil
}

// SaveUserInput replaces the stored transient input.
func (r *Repository) SaveUserInput(ctx context.Context, input model.UserInput) error {
	return r.set(ctx, KeyUserInput, input)
}

func (r *Repository) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, map[string][]byte{key: b}); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// decode unmarshals values[key] into v. A missing key leaves v untouched.
func decode(values map[string][]byte, key string, v any) error {
	b, ok := values[key]
	if !ok || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
