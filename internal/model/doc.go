// Package model defines the core data structures used throughout Emissary.
//
// This package contains the following main types:
//   - Profile: A named, ordered list of Actions with status and last-run time
//   - Action: One templated HTTP request definition
//   - AppSettings: Persisted application settings, including the tag set
//   - UserInput: Transient input (selected profile, params, message)
//   - PageContext: The page title, URL and content a run executes against
//   - ExecutionReport: The per-action outcome of one profile run
//
// Profiles are treated as immutable values. The update functions in this
// package (AddProfile, UpdateAction, SetHeader, ...) never modify their
// arguments; they return a new value that the caller persists.
//
// The JSON field names match the documents kept in the key-value store
// ("appProfiles", "appSettings", "userInput"), so dumps produced by
// earlier versions of the tool can be imported unchanged.
package model
