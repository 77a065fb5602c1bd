// Package health tracks engine reachability for the bridge process.
//
// State holds two booleans, command-channel connected and feedback-channel
// connected, and derives an overall Status from them: both up is Healthy,
// command up but feedback down is Degraded, command down is Unhealthy
// regardless of feedback. Status starts as Starting and never returns to it
// once the first channel update arrives.
//
//	state := health.NewState(metrics, logger)
//	state.MarkCommand(true)
//	state.MarkFeedback(false)
//	snap := state.Snapshot() // {Status: Degraded, ...}
//
// State logs once when the status changes and again every 30s while it
// holds steady, via Run, which callers should launch in its own goroutine
// alongside the other long-lived bridge tasks.
package health
