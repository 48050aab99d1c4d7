// Package registry talks to an npm-compatible package registry. It resolves a
// package name plus version constraint to a concrete published version, then
// downloads that version's tarball, verifies its integrity and unpacks it into
// a directory.
package registry
