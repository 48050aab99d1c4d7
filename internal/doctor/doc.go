// Package doctor diagnoses a bio project: the node toolchain tasks depend on,
// the project configuration and the installed scaffold it selects.
package doctor
