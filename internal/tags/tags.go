// Package tags extracts hashtags from messages and maintains the persisted
// tag set used for autocompletion.
package tags

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// hashRun matches a run of '#' characters followed by a word.
var hashRun = regexp.MustCompile(`#+(\w+)`)

// fold lower-cases s. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// MaxSuggestions caps the number of tags returned by Suggest.
const MaxSuggestions = 10

// Normalize collapses repeated leading '#' characters in hashtag-like
// tokens, so "###news" becomes "#news". Everything else is unchanged.
func Normalize(message string) string {
	return hashRun.ReplaceAllString(message, "#$1")
}

// Extract returns the tags in message that are not already in existing.
//
// The message is split on whitespace. A token is a candidate when it starts
// with '#' and is longer than one character. All leading '#' are stripped
// and the rest is lower-cased. Results are unique and keep first-seen order.
func Extract(message string, existing []string) []string {
	known := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		known[fold(t)] = struct{}{}
	}

	var found []string
	for _, token := range strings.Fields(message) {
		if len(token) <= 1 || token[0] != '#' {
			continue
		}
		tag := fold(strings.TrimLeft(token, "#"))
		if tag == "" {
			continue
		}
		if _, ok := known[tag]; ok {
			continue
		}
		known[tag] = struct{}{}
		found = append(found, tag)
	}
	return found
}

// Merge returns the union of existing and added with set semantics.
// Existing tags keep their position; new ones are appended.
func Merge(existing, added []string) []string {
	out := slices.Clone(existing)
	if out == nil {
		out = []string{}
	}
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, t := range existing {
		seen[fold(t)] = struct{}{}
	}
	for _, t := range added {
		key := fold(t)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Remove returns existing without the tags in drop, ignoring case and
// leading '#'.
func Remove(existing, drop []string) []string {
	gone := make(map[string]struct{}, len(drop))
	for _, t := range drop {
		gone[fold(strings.TrimLeft(t, "#"))] = struct{}{}
	}
	out := make([]string, 0, len(existing))
	for _, t := range existing {
		if _, ok := gone[fold(t)]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// Suggest returns up to MaxSuggestions tags containing query, ignoring case.
// An empty query matches nothing.
func Suggest(query string, all []string) []string {
	q := fold(strings.TrimLeft(strings.TrimSpace(query), "#"))
	if q == "" {
		return nil
	}
	var out []string
	for _, t := range all {
		if strings.Contains(fold(t), q) {
			out = append(out, t)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}
