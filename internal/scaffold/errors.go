package scaffold

import (
	"errors"
	"fmt"
)

var (
	// ErrInstall marks every failure of Installer.Install.
	ErrInstall = errors.New("scaffold install failed")

	// ErrIncompatibleScaffold is returned when an installed scaffold cannot be
	// customized, or a requested name is not a valid package name.
	ErrIncompatibleScaffold = errors.New("incompatible scaffold")

	// ErrNotInstalled is returned when no installed scaffold has the requested name.
	ErrNotInstalled = errors.New("scaffold not installed")
)

// Stage identifies the installation step that failed.
type Stage string

const (
	StageHook    Stage = "hook"
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageRecord  Stage = "record"
	StageDeps    Stage = "deps"
)

// InstallError reports a failed installation step. It matches both ErrInstall
// and the underlying cause with errors.Is.
type InstallError struct {
	Stage    Stage
	Scaffold string
	Err      error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing %s (%s): %v", e.Scaffold, e.Stage, e.Err)
}

func (e *InstallError) Unwrap() []error {
	return []error{ErrInstall, e.Err}
}
