package updater

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bio-labs/bio/internal/branding"
)

// refreshTimeout bounds the background version check.
const refreshTimeout = 5 * time.Second

// CheckAndPrintBanner prints an update banner when the last check recorded a
// newer latest version for this build and registry. It never blocks: a check
// older than CheckMaxAge, or made by another build, is refreshed by a
// background goroutine for the next invocation. The returned channel is
// closed once that refresh (if any) has finished.
func (u *Updater) CheckAndPrintBanner(w io.Writer, configDir string) <-chan struct{} {
	done := make(chan struct{})
	check, err := LoadCheck(configDir)
	if err != nil {
		// Silently ignore a broken check file; the refresh overwrites it.
		check = nil
	}

	// A check made by another build or against another registry says
	// nothing about this one.
	if check != nil && (check.Current != u.currentVersion || check.Registry != u.registryURL) {
		check = nil
	}
	if check.UpdateAvailable() {
		PrintUpdateBanner(w, check.Current, check.Latest)
	}

	if !check.Applies(u.currentVersion, u.registryURL, CheckMaxAge, time.Now()) {
		go func() {
			defer close(done)
			u.refresh(configDir)
		}()
		return done
	}
	close(done)
	return done
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, current, latest string) {
	fmt.Fprintf(w, "\nUpdate available: %s -> %s\n", current, latest)
	fmt.Fprintf(w, "    Run `%s update` to upgrade\n\n", branding.CLIName())
}

// refresh looks up the latest version and saves the result. It runs in a
// background goroutine and never fails loudly.
func (u *Updater) refresh(configDir string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	check, err := u.Check(ctx)
	if err != nil {
		return
	}
	_ = check.Save(configDir)
}
