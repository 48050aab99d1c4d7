package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

type sessionResult struct {
	stats Stats
	err   error
}

// recorder is a RunFunc that counts runs and can hold the first one open.
type recorder struct {
	calls   atomic.Int32
	started chan int
	hold    chan struct{}
	errs    map[int]error
}

func newRecorder() *recorder {
	return &recorder{started: make(chan int, 16)}
}

func (r *recorder) run(ctx context.Context) error {
	n := int(r.calls.Add(1))
	r.started <- n
	if n == 1 && r.hold != nil {
		select {
		case <-r.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.errs[n]
}

func (r *recorder) waitStarted(t *testing.T, want int) {
	t.Helper()
	select {
	case n := <-r.started:
		require.Equal(t, want, n)
	case <-time.After(waitFor):
		t.Fatalf("run %d did not start", want)
	}
}

func startSession(t *testing.T, s *Session) (context.CancelFunc, <-chan sessionResult) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan sessionResult, 1)
	go func() {
		st, err := s.Run(ctx)
		done <- sessionResult{st, err}
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func waitResult(t *testing.T, done <-chan sessionResult) sessionResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(waitFor):
		t.Fatal("session did not stop")
		return sessionResult{}
	}
}

func waitState(t *testing.T, s *Session, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == want }, waitFor, 5*time.Millisecond,
		"state never became %s", want)
}

func TestSessionCoalescesChangesDuringRun(t *testing.T) {
	events := make(chan string)
	rec := newRecorder()
	rec.hold = make(chan struct{})

	s := NewSession(ChanSource(events), rec.run, Options{Root: "/proj"})
	cancel, done := startSession(t, s)

	rec.waitStarted(t, 1)
	for i := range 5 {
		events <- fmt.Sprintf("/proj/src/file%d.js", i)
	}
	waitState(t, s, ChangeDetected)

	close(rec.hold)
	rec.waitStarted(t, 2)
	waitState(t, s, Idle)

	cancel()
	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, 2, res.stats.Runs)
	assert.Equal(t, int32(2), rec.calls.Load())
	assert.Equal(t, Stopped, s.State())
}

func TestSessionIgnoresExcludedPaths(t *testing.T) {
	events := make(chan string)
	rec := newRecorder()

	s := NewSession(ChanSource(events), rec.run, Options{Root: "/proj", Ignore: []string{"*.log", "dist"}})
	cancel, done := startSession(t, s)

	rec.waitStarted(t, 1)
	waitState(t, s, Idle)

	for _, p := range []string{
		"/proj/node_modules/react/index.js",
		"/proj/.git/HEAD",
		"/proj/.bio/scaffolds/bio-scaffold-pure/package.json",
		"/proj/debug.log",
		"/proj/dist/bundle.js",
	} {
		events <- p
	}
	events <- "/proj/src/app.js"
	rec.waitStarted(t, 2)
	waitState(t, s, Idle)

	cancel()
	res := waitResult(t, done)
	assert.Equal(t, 2, res.stats.Runs)
}

func TestSessionStopCancelsInFlightRun(t *testing.T) {
	rec := newRecorder()
	rec.hold = make(chan struct{}) // never released

	s := NewSession(ChanSource(make(chan string)), rec.run, Options{})
	cancel, done := startSession(t, s)

	rec.waitStarted(t, 1)
	waitState(t, s, Running)
	cancel()

	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.NoError(t, res.stats.Last, "canceled run should not be reported as a failure")
	assert.Equal(t, 1, res.stats.Runs)
	assert.Equal(t, Stopped, s.State())
}

func TestSessionFailedRunKeepsWatching(t *testing.T) {
	events := make(chan string)
	rec := newRecorder()
	rec.errs = map[int]error{1: errors.New("boom")}

	s := NewSession(ChanSource(events), rec.run, Options{})
	cancel, done := startSession(t, s)

	rec.waitStarted(t, 1)
	waitState(t, s, Idle)

	events <- "src/a.js"
	rec.waitStarted(t, 2)
	waitState(t, s, Idle)

	cancel()
	res := waitResult(t, done)
	assert.Equal(t, 2, res.stats.Runs)
	assert.NoError(t, res.stats.Last)
}

func TestSessionRecoversPanickingRun(t *testing.T) {
	events := make(chan string)
	var calls atomic.Int32
	started := make(chan int, 4)
	run := func(context.Context) error {
		n := int(calls.Add(1))
		started <- n
		if n == 1 {
			panic("boom")
		}
		return nil
	}

	s := NewSession(ChanSource(events), run, Options{})
	cancel, done := startSession(t, s)

	select {
	case <-started:
	case <-time.After(waitFor):
		t.Fatal("first run did not start")
	}
	waitState(t, s, Idle)

	events <- "src/a.js"
	select {
	case n := <-started:
		require.Equal(t, 2, n)
	case <-time.After(waitFor):
		t.Fatal("session stopped re-running after a panic")
	}
	waitState(t, s, Idle)

	cancel()
	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, 2, res.stats.Runs)
}

func TestSafeRunReportsPanic(t *testing.T) {
	s := NewSession(ChanSource(nil), func(context.Context) error { panic("boom") }, Options{})
	err := s.safeRun(context.Background())
	require.ErrorIs(t, err, ErrRunPanicked)
	assert.Contains(t, err.Error(), "boom")
}

func TestSessionDebouncesIdleBursts(t *testing.T) {
	events := make(chan string)
	rec := newRecorder()

	s := NewSession(ChanSource(events), rec.run, Options{Debounce: 100 * time.Millisecond})
	cancel, done := startSession(t, s)

	rec.waitStarted(t, 1)
	waitState(t, s, Idle)

	for range 3 {
		events <- "src/a.js"
	}
	rec.waitStarted(t, 2)
	waitState(t, s, Idle)
	time.Sleep(250 * time.Millisecond)

	cancel()
	res := waitResult(t, done)
	assert.Equal(t, 2, res.stats.Runs)
}

func TestSessionAlreadyCanceled(t *testing.T) {
	rec := newRecorder()
	s := NewSession(ChanSource(nil), rec.run, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Runs)
	assert.Equal(t, int32(0), rec.calls.Load())
}

func TestSessionWithFSSource(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0755))

	fsrc, err := NewFSSource(root, []string{"src"}, DefaultIgnore(), nil)
	require.NoError(t, err)

	rec := newRecorder()
	s := NewSession(fsrc, rec.run, Options{Root: root})
	cancel, done := startSession(t, s)

	rec.waitStarted(t, 1)
	waitState(t, s, Idle)

	require.NoError(t, os.WriteFile(filepath.Join(src, "index.js"), []byte("x"), 0644))
	rec.waitStarted(t, 2)

	cancel()
	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.GreaterOrEqual(t, res.stats.Runs, 2)
}

func TestNewFSSourceNoWatchablePaths(t *testing.T) {
	_, err := NewFSSource(t.TempDir(), []string{"missing"}, nil, nil)
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	m := newMatcher("/proj", append(DefaultIgnore(), "*.log", "lib/out"))
	tests := map[string]bool{
		"/proj/src/a.js":                  false,
		"/proj/node_modules/x/y.js":       true,
		"/proj/src/node_modules/x.js":     true,
		"/proj/.git/index":                true,
		"/proj/.bio/scaffolds/x/a.json":   true,
		"/proj/server.log":                true,
		"/proj/lib/out/main.js":           true,
		"/proj/lib/main.js":               false,
		"/proj/dist/bundle.js":            true,
		"/proj/build/main.js":             true,
		"/proj/coverage/lcov.info":        true,
		"src/relative.js":                 false,
		filepath.FromSlash("lib/app.log"): true,
	}
	for path, want := range tests {
		assert.Equal(t, want, m.ignored(path), path)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "change-detected", ChangeDetected.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "unknown", State(42).String())
}
