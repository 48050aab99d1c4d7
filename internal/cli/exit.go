package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/bio-labs/bio/internal/catalog"
	"github.com/bio-labs/bio/internal/tasks"
)

// Exit statuses other than a task's own.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUserError = 2
)

// reportError prints err where the user expects it and returns the exit
// status it maps to.
func reportError(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var failed *tasks.TaskFailedError
	switch {
	case errors.As(err, &failed):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if failed.ExitCode > 0 {
			return failed.ExitCode
		}
		return exitFailure
	case errors.Is(err, catalog.ErrScaffoldNotFound):
		// Unknown names are user errors, reported on stdout.
		fmt.Fprintf(stdout, "\n%v\n\n", err)
		return exitUserError
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}
