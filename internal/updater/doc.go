// Package updater keeps the bio CLI itself current. The CLI is distributed
// as an npm package, so updating delegates to `npm install -g`. A daily-cached
// check of the package's latest dist-tag powers the startup banner.
package updater
