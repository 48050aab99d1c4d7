// Package cli defines the Cobra command tree for the bio CLI. Each file in
// this package registers one command (init, run, scaffold, lint, etc.) with
// the root command. Commands delegate to internal packages for the scaffold
// lifecycle and only handle flag parsing, I/O formatting, and prompting.
package cli
