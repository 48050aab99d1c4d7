// Package manifest parses and validates scaffold manifests. A scaffold
// declares its tasks in scaffold.yaml, which is checked against an embedded
// JSON Schema. Scaffolds without one fall back to the scripts block of their
// package.json, each script becoming a task run through npm.
package manifest
