package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunPanicked wraps a panic raised by a run.
var ErrRunPanicked = errors.New("run panicked")

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Running
	ChangeDetected
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case ChangeDetected:
		return "change-detected"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// RunFunc executes one run of the watched task. It must return promptly
// once ctx is canceled.
type RunFunc func(ctx context.Context) error

// Options configures a Session.
type Options struct {
	// Root is the project root used to resolve ignore patterns.
	Root string
	// Ignore lists extra path components or globs to skip; DefaultIgnore is always applied.
	Ignore []string
	// Debounce delays a run triggered from Idle until changes settle.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Stats summarizes a finished session.
type Stats struct {
	Runs int
	// Last is the error returned by the most recent run.
	Last error
}

// Session runs a task, then re-runs it on every change until stopped.
type Session struct {
	src   Source
	run   RunFunc
	opts  Options
	match *matcher
	log   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewSession creates a session reading changes from src. The session owns
// src and closes it when Run returns.
func NewSession(src Source, run RunFunc, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		src:   src,
		run:   run,
		opts:  opts,
		match: newMatcher(opts.Root, append(DefaultIgnore(), opts.Ignore...)),
		log:   log,
		state: Idle,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.log.Debug("watch state", "from", prev.String(), "to", st.String())
	}
}

// safeRun calls the run function and turns a panic into a failed run.
func (s *Session) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRunPanicked, r)
		}
	}()
	return s.run(ctx)
}

// Run performs the initial run and then reacts to changes until ctx is
// canceled. Cancellation is a normal stop: the in-flight run is canceled
// and awaited, and Run returns a nil error. Failed runs do not end the
// session; their error is reported in Stats.Last.
func (s *Session) Run(ctx context.Context) (Stats, error) {
	defer s.src.Close()

	var (
		stats     Stats
		runDone   = make(chan error, 1)
		cancelRun context.CancelFunc
		running   bool
		pending   bool
		timer     *time.Timer
		debounceC <-chan time.Time
	)

	start := func() {
		var runCtx context.Context
		runCtx, cancelRun = context.WithCancel(ctx)
		running = true
		stats.Runs++
		s.setState(Running)
		go func() { runDone <- s.safeRun(runCtx) }()
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	if ctx.Err() != nil {
		s.setState(Stopped)
		return stats, nil
	}
	start()

	events := s.src.Events()
	errs := s.src.Errors()
	for {
		select {
		case <-ctx.Done():
			s.setState(Stopped)
			if running {
				cancelRun()
				if err := <-runDone; err != nil && !errors.Is(err, context.Canceled) {
					stats.Last = err
				}
			}
			return stats, nil

		case path, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if s.match.ignored(path) {
				continue
			}
			s.log.Debug("change detected", "path", path)
			if running {
				pending = true
				s.setState(ChangeDetected)
				continue
			}
			if s.opts.Debounce <= 0 {
				start()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.opts.Debounce)
			} else {
				timer.Reset(s.opts.Debounce)
			}
			debounceC = timer.C
			s.setState(ChangeDetected)

		case <-debounceC:
			debounceC = nil
			start()

		case err := <-runDone:
			running = false
			cancelRun()
			stats.Last = err
			if err != nil {
				s.log.Warn("task run failed; waiting for changes", "error", err)
			}
			if pending {
				pending = false
				start()
				continue
			}
			s.setState(Idle)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Warn("file watcher error", "error", err)
		}
	}
}
