// Package scaffold installs scaffold packages from a registry into a project
// and customizes them. Installation runs the project's pre-install hook,
// downloads the resolved package into a staging directory, moves it into
// place and records what was installed. The customizer renames an installed
// scaffold so it can be published as a new one.
package scaffold
