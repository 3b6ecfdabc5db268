package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testProfile(t *testing.T) Profile {
	t.Helper()

	p, err := NewProfile("publish")
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	p, err = p.AddAction(Action{
		Name:    "post",
		Method:  MethodPost,
		URL:     "https://api.example.com/%id%",
		Headers: Fields{"Authorization": "Bearer x"},
		Data:    Fields{"text": "$message"},
	})
	if err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	return p
}

// TestNewProfile tests profile creation defaults.
func TestNewProfile(t *testing.T) {
	t.Parallel()

	t.Run("creates enabled profile with id", func(t *testing.T) {
		t.Parallel()

		p, err := NewProfile("daily")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID == "" {
			t.Error("expected non-empty ID")
		}
		if !p.Status {
			t.Error("expected new profile to be enabled")
		}
		if p.LastRun != nil {
			t.Error("expected nil LastRun")
		}
		if p.Actions == nil || len(p.Actions) != 0 {
			t.Errorf("expected empty non-nil actions, got %v", p.Actions)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		t.Parallel()

		a, _ := NewProfile("a")
		b, _ := NewProfile("b")
		if a.ID == b.ID {
			t.Errorf("expected distinct IDs, both %q", a.ID)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		_, err := NewProfile("   ")
		if !errors.Is(err, ErrEmptyName) {
			t.Errorf("expected ErrEmptyName, got %v", err)
		}
	})
}

// TestProfileUpdatesDoNotMutate tests that update functions return copies.
func TestProfileUpdatesDoNotMutate(t *testing.T) {
	t.Parallel()

	original := testProfile(t)
	snapshot := original.Clone()

	updated, err := original.SetHeader(0, "Authorization", "X-Token", "abc")
	if err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	updated, err = updated.SetDataField(0, "channel", "news")
	if err != nil {
		t.Fatalf("SetDataField: %v", err)
	}
	name := "renamed"
	updated, err = updated.UpdateAction(0, ActionPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateAction: %v", err)
	}
	updated = updated.StampLastRun(time.Now())

	if diff := cmp.Diff(snapshot, original); diff != "" {
		t.Errorf("original profile was mutated (-want +got):\n%s", diff)
	}

	want := Fields{"X-Token": "abc"}
	if diff := cmp.Diff(want, updated.Actions[0].Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if updated.Actions[0].Data["channel"] != "news" {
		t.Errorf("expected data field to be set, got %v", updated.Actions[0].Data)
	}
	if updated.Actions[0].Name != "renamed" {
		t.Errorf("expected renamed action, got %q", updated.Actions[0].Name)
	}
	if updated.LastRun == nil {
		t.Error("expected LastRun to be set")
	}
}

// TestProfileActions tests action-level update functions.
func TestProfileActions(t *testing.T) {
	t.Parallel()

	t.Run("add action rejects unsupported method", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		_, err := p.AddAction(Action{Name: "x", Method: "DELETE"})
		if !errors.Is(err, ErrUnsupportedMethod) {
			t.Errorf("expected ErrUnsupportedMethod, got %v", err)
		}
	})

	t.Run("update out of range", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		_, err := p.UpdateAction(5, ActionPatch{})
		if !errors.Is(err, ErrActionNotFound) {
			t.Errorf("expected ErrActionNotFound, got %v", err)
		}
	})

	t.Run("update method", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		m := MethodPut
		got, err := p.UpdateAction(0, ActionPatch{Method: &m})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Actions[0].Method != MethodPut {
			t.Errorf("expected PUT, got %s", got.Actions[0].Method)
		}
		if got.Actions[0].URL != p.Actions[0].URL {
			t.Error("expected URL to be unchanged")
		}
	})

	t.Run("delete action", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		got, err := p.DeleteAction(0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Actions) != 0 {
			t.Errorf("expected no actions, got %d", len(got.Actions))
		}
		if len(p.Actions) != 1 {
			t.Error("expected original to keep its action")
		}
	})

	t.Run("set data from json", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		got, err := p.SetData(0, `{"a":"1","n":2,"b":true}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Fields{"a": "1", "n": "2", "b": "true"}
		if diff := cmp.Diff(want, got.Actions[0].Data); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("set data rejects non-object", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		for _, raw := range []string{`[1,2]`, `"x"`, `{bad`} {
			if _, err := p.SetData(0, raw); !errors.Is(err, ErrInvalidData) {
				t.Errorf("SetData(%q): expected ErrInvalidData, got %v", raw, err)
			}
		}
	})

	t.Run("remove header", func(t *testing.T) {
		t.Parallel()

		p := testProfile(t)
		got, err := p.RemoveHeader(0, "Authorization")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Actions[0].Headers) != 0 {
			t.Errorf("expected no headers, got %v", got.Actions[0].Headers)
		}
	})
}

// TestProfileSlices tests the slice-level update functions.
func TestProfileSlices(t *testing.T) {
	t.Parallel()

	a, _ := NewProfile("alpha")
	b, _ := NewProfile("beta")
	profiles := AddProfile(AddProfile(nil, a), b)

	t.Run("find by id and name", func(t *testing.T) {
		t.Parallel()

		if got, idx, ok := FindProfile(profiles, b.ID); !ok || idx != 1 || got.Name != "beta" {
			t.Errorf("FindProfile by id = %v, %d, %v", got.Name, idx, ok)
		}
		if got, _, ok := FindProfile(profiles, "alpha"); !ok || got.ID != a.ID {
			t.Errorf("FindProfile by name = %v, %v", got.ID, ok)
		}
		if _, _, ok := FindProfile(profiles, "missing"); ok {
			t.Error("expected missing profile not to be found")
		}
	})

	t.Run("toggle status", func(t *testing.T) {
		t.Parallel()

		got, err := ToggleProfileStatus(profiles, a.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[0].Status {
			t.Error("expected alpha to be disabled")
		}
		if !profiles[0].Status {
			t.Error("expected original slice to be unchanged")
		}
		if len(EnabledProfiles(got)) != 1 {
			t.Errorf("expected one enabled profile, got %d", len(EnabledProfiles(got)))
		}
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		got, err := DeleteProfile(profiles, a.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != b.ID {
			t.Errorf("unexpected result %v", got)
		}
		if len(profiles) != 2 {
			t.Error("expected original slice to keep both profiles")
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		t.Parallel()

		_, err := DeleteProfile(profiles, "nope")
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("replace", func(t *testing.T) {
		t.Parallel()

		renamed, err := b.Rename("gamma")
		if err != nil {
			t.Fatalf("Rename: %v", err)
		}
		got, err := ReplaceProfile(profiles, renamed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[1].Name != "gamma" || profiles[1].Name != "beta" {
			t.Errorf("unexpected names %q / %q", got[1].Name, profiles[1].Name)
		}
	})
}
