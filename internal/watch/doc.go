// Package watch re-runs a task whenever files under the project change.
//
// A Session moves through Idle, Running, ChangeDetected and Stopped. The task
// runs in a single goroutine; changes observed while it runs set one pending
// flag, so any burst of changes produces exactly one re-run after the current
// run finishes. Cancelling the session context stops event intake, cancels the
// in-flight run, waits for it and returns.
package watch
