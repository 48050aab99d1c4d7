// Package tasks runs a named task of the installed scaffold, once or under a
// watch session that re-runs it on file changes.
package tasks
