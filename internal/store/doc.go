// Package store provides persistence for Emissary.
//
// The engine only needs a key-value contract (KV): Get a set of keys,
// Set a mapping of keys to values. Values are JSON documents under the
// keys "appProfiles", "appSettings" and "userInput". Repository layers
// typed accessors over any KV.
//
// Two backends are provided:
//   - SQLite (via modernc.org/sqlite): a single database file in the XDG
//     data directory. Besides the kv table it keeps run history and the
//     run locks that stop two processes from running the same profile at
//     the same time.
//   - Memory: an in-process map, used in tests and for dry runs.
//
// All calls block and return explicit errors. Callers that need to overlap
// store access with other work run the calls in their own goroutines.
package store
