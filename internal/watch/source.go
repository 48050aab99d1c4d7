package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Source delivers the paths of changed files.
type Source interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

// fsSource adapts a recursive fsnotify watcher to Source. Directories
// created after start are added as they appear.
type fsSource struct {
	w      *fsnotify.Watcher
	match  *matcher
	log    *slog.Logger
	events chan string
	errs   chan error
	done   chan struct{}
	once   sync.Once
}

// NewFSSource watches paths (relative to root) recursively, skipping
// ignored directories.
func NewFSSource(root string, paths []string, ignore []string, log *slog.Logger) (Source, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	s := &fsSource{
		w:      w,
		match:  newMatcher(root, ignore),
		log:    log,
		events: make(chan string),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}

	watched := 0
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, p)
		}
		n, err := s.addTree(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("watch path does not exist", "path", abs)
				continue
			}
			w.Close()
			return nil, err
		}
		watched += n
	}
	if watched == 0 {
		w.Close()
		return nil, fmt.Errorf("no watchable paths under %s", root)
	}
	log.Debug("watching", "root", root, "dirs", watched)

	go s.loop()
	return s, nil
}

func (s *fsSource) Events() <-chan string { return s.events }
func (s *fsSource) Errors() <-chan error  { return s.errs }

func (s *fsSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.w.Close()
	})
	return err
}

// addTree registers dir and its non-ignored subdirectories. A plain file is
// watched on its own.
func (s *fsSource) addTree(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if err := s.w.Add(dir); err != nil {
			return 0, fmt.Errorf("watching %s: %w", dir, err)
		}
		return 1, nil
	}

	n := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Entries can vanish between listing and stat.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && s.match.ignored(path) {
			return filepath.SkipDir
		}
		if err := s.w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		n++
		return nil
	})
	return n, err
}

func (s *fsSource) loop() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.w.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) && !s.match.ignored(ev.Name) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if _, err := s.addTree(ev.Name); err != nil {
						s.log.Warn("could not watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			select {
			case s.events <- ev.Name:
			case <-s.done:
				return
			}
		case err, ok := <-s.w.Errors:
			if !ok {
				return
			}
			select {
			case s.errs <- err:
			default:
			}
		}
	}
}

// chanSource is a Source fed by the caller.
type chanSource struct {
	events <-chan string
}

// ChanSource wraps an event channel as a Source.
func ChanSource(events <-chan string) Source {
	return chanSource{events: events}
}

func (c chanSource) Events() <-chan string { return c.events }
func (c chanSource) Errors() <-chan error  { return nil }
func (c chanSource) Close() error          { return nil }
