package model

import (
	"slices"
	"strings"
)

// AppSettings holds persisted application settings.
type AppSettings struct {
	// IsDarkMode is the UI theme preference. Emissary only stores it.
	IsDarkMode bool `json:"isDarkMode"`

	// Tags is the set of known hashtags, lower-cased and unique.
	// Order is not significant.
	Tags []string `json:"tags"`
}

// DefaultSettings returns settings with dark mode off and no tags.
func DefaultSettings() AppSettings {
	return AppSettings{Tags: []string{}}
}

// Clone returns a copy of the settings.
func (s AppSettings) Clone() AppSettings {
	s.Tags = slices.Clone(s.Tags)
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s
}

// HasTag reports whether tag is present in the tag set, ignoring case.
func (s AppSettings) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range s.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

// UserInput is the transient input persisted between invocations.
type UserInput struct {
	// SelectedProfileID is the profile run when none is named explicitly.
	SelectedProfileID string `json:"selectedProfileId"`

	// ParamInput is the raw comma-separated key=value text.
	ParamInput string `json:"paramInput"`

	// TextBoxMessage is the raw free-text message.
	TextBoxMessage string `json:"textBoxMessage"`
}

// Cleared returns the input with params and message emptied.
// The profile selection is kept.
func (u UserInput) Cleared() UserInput {
	return UserInput{SelectedProfileID: u.SelectedProfileID}
}

// PageContext is the page a run executes against.
// Placeholder values such as "Unknown URL" are ordinary strings.
type PageContext struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// ParamMap is the flat substitution context of one run.
type ParamMap map[string]string

// Reserved parameter keys. They always overwrite user-supplied keys.
const (
	ParamTextBox     = "text_box"
	ParamPageName    = "page_name"
	ParamPageURL     = "page_url"
	ParamPageContent = "page_content"
)
