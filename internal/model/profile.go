package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is a named, ordered list of Actions.
//
// A Profile is a value. The functions in this file return modified copies
// and never change the profile or slice they are given, so a runner can
// hold a snapshot while the caller edits and persists a new version.
type Profile struct {
	// ID is unique and never changes after creation.
	ID string `json:"id"`

	// Name is the human-readable profile name shown in listings.
	Name string `json:"name"`

	// Status is true when the profile is enabled and may be run.
	Status bool `json:"status"`

	// LastRun is set by the runner after a run in which every action succeeded.
	// It is nil for profiles that never completed a fully successful run.
	LastRun *time.Time `json:"lastRun"`

	// Actions execute in slice order.
	Actions []Action `json:"actions"`
}

// NewProfile creates an enabled profile with a fresh ID and no actions.
func NewProfile(name string) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		return Profile{}, ErrEmptyName
	}
	return Profile{
		ID:      uuid.NewString(),
		Name:    name,
		Status:  true,
		Actions: []Action{},
	}, nil
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	if p.LastRun != nil {
		t := *p.LastRun
		p.LastRun = &t
	}
	actions := make([]Action, len(p.Actions))
	for i, a := range p.Actions {
		actions[i] = a.Clone()
	}
	p.Actions = actions
	return p
}

// Rename returns a copy of the profile with a new name.
func (p Profile) Rename(name string) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		return p, ErrEmptyName
	}
	out := p.Clone()
	out.Name = name
	return out, nil
}

// WithStatus returns a copy of the profile with the given enabled state.
func (p Profile) WithStatus(enabled bool) Profile {
	out := p.Clone()
	out.Status = enabled
	return out
}

// StampLastRun returns a copy of the profile with LastRun set to t.
func (p Profile) StampLastRun(t time.Time) Profile {
	out := p.Clone()
	out.LastRun = &t
	return out
}

// Action returns the action at index i.
func (p Profile) Action(i int) (Action, error) {
	if i < 0 || i >= len(p.Actions) {
		return Action{}, fmt.Errorf("%w: index %d (profile has %d actions)", ErrActionNotFound, i, len(p.Actions))
	}
	return p.Actions[i], nil
}

// AddAction returns a copy of the profile with a appended.
func (p Profile) AddAction(a Action) (Profile, error) {
	if strings.TrimSpace(a.Name) == "" {
		return p, ErrEmptyName
	}
	if !a.Method.IsSupported() {
		return p, fmt.Errorf("%w: %q", ErrUnsupportedMethod, a.Method)
	}
	out := p.Clone()
	out.Actions = append(out.Actions, a.Clone())
	return out, nil
}

// UpdateAction returns a copy of the profile with the action at index i patched.
func (p Profile) UpdateAction(i int, patch ActionPatch) (Profile, error) {
	current, err := p.Action(i)
	if err != nil {
		return p, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return p, err
	}
	out := p.Clone()
	out.Actions[i] = updated
	return out, nil
}

// DeleteAction returns a copy of the profile without the action at index i.
func (p Profile) DeleteAction(i int) (Profile, error) {
	if _, err := p.Action(i); err != nil {
		return p, err
	}
	out := p.Clone()
	out.Actions = slices.Delete(out.Actions, i, i+1)
	return out, nil
}

// SetHeader sets a header on the action at index i. When oldKey is non-empty
// and differs from newKey the header is renamed, keeping key identity unique.
func (p Profile) SetHeader(i int, oldKey, newKey, value string) (Profile, error) {
	if strings.TrimSpace(newKey) == "" {
		return p, ErrEmptyKey
	}
	if _, err := p.Action(i); err != nil {
		return p, err
	}
	out := p.Clone()
	headers := out.Actions[i].Headers
	if oldKey != "" && oldKey != newKey {
		delete(headers, oldKey)
	}
	headers[newKey] = value
	return out, nil
}

// RemoveHeader removes a header from the action at index i.
// Removing a header that does not exist is not an error.
func (p Profile) RemoveHeader(i int, key string) (Profile, error) {
	if _, err := p.Action(i); err != nil {
		return p, err
	}
	out := p.Clone()
	delete(out.Actions[i].Headers, key)
	return out, nil
}

// SetDataField sets one data field on the action at index i.
func (p Profile) SetDataField(i int, key, value string) (Profile, error) {
	if strings.TrimSpace(key) == "" {
		return p, ErrEmptyKey
	}
	if _, err := p.Action(i); err != nil {
		return p, err
	}
	out := p.Clone()
	out.Actions[i].Data[key] = value
	return out, nil
}

// RemoveDataField removes one data field from the action at index i.
func (p Profile) RemoveDataField(i int, key string) (Profile, error) {
	if _, err := p.Action(i); err != nil {
		return p, err
	}
	out := p.Clone()
	delete(out.Actions[i].Data, key)
	return out, nil
}

// SetData replaces the data of the action at index i with a JSON object.
func (p Profile) SetData(i int, raw string) (Profile, error) {
	data, err := ParseFields(raw)
	if err != nil {
		return p, err
	}
	return p.UpdateAction(i, ActionPatch{Data: data})
}

// FindProfile looks up a profile by ID, then by exact name.
// It returns the profile, its index and whether it was found.
func FindProfile(profiles []Profile, ref string) (Profile, int, bool) {
	for i, p := range profiles {
		if p.ID == ref {
			return p, i, true
		}
	}
	for i, p := range profiles {
		if p.Name == ref {
			return p, i, true
		}
	}
	return Profile{}, -1, false
}

// AddProfile returns a new slice with p appended.
func AddProfile(profiles []Profile, p Profile) []Profile {
	out := slices.Clone(profiles)
	return append(out, p.Clone())
}

// ReplaceProfile returns a new slice in which the profile with p.ID is replaced by p.
func ReplaceProfile(profiles []Profile, p Profile) ([]Profile, error) {
	for i := range profiles {
		if profiles[i].ID == p.ID {
			out := slices.Clone(profiles)
			out[i] = p.Clone()
			return out, nil
		}
	}
	return profiles, fmt.Errorf("%w: %s", ErrProfileNotFound, p.ID)
}

// DeleteProfile returns a new slice without the profile with the given ID.
func DeleteProfile(profiles []Profile, id string) ([]Profile, error) {
	idx := slices.IndexFunc(profiles, func(p Profile) bool { return p.ID == id })
	if idx < 0 {
		return profiles, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	out := slices.Clone(profiles)
	return slices.Delete(out, idx, idx+1), nil
}

// ToggleProfileStatus returns a new slice in which the enabled state of the
// profile with the given ID is flipped.
func ToggleProfileStatus(profiles []Profile, id string) ([]Profile, error) {
	for _, p := range profiles {
		if p.ID == id {
			return ReplaceProfile(profiles, p.WithStatus(!p.Status))
		}
	}
	return profiles, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
}

// EnabledProfiles returns the profiles whose Status is true, in order.
func EnabledProfiles(profiles []Profile) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Status {
			out = append(out, p)
		}
	}
	return out
}
