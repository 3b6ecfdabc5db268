// Package runner executes profiles.
//
// A run resolves the parameter map and dollar-token context once, then
// passes a runState through a Pipeline of steps: first the tag step, which
// records hashtags from the message before any request is sent, then one
// step per action in declaration order. Action failures do not stop the
// pipeline; every action is attempted and the ExecutionReport lists each
// outcome.
//
// Runner.Execute is the pure engine over snapshots. Runner.Run adds the
// store: it resolves the profile, persists input and tags, records the
// report in the run history and, only after a fully successful run, stamps
// the profile's last run time and clears the stored input. RunBatch runs
// several profiles with bounded concurrency; actions within each profile
// stay sequential.
package runner
