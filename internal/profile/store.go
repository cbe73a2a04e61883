package profile

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"codeberg.org/mutker/framectl/internal/errors"
	"codeberg.org/mutker/framectl/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Store holds the live profile as an atomically-swappable snapshot.
// Readers (the control loop) always see a complete, validated profile;
// writers replace the whole value. The store can additionally watch the
// backing file so edits made by an external frontend are picked up
// without polling.
type Store struct {
	path     string
	current  atomic.Pointer[Profile]
	onReload func(Profile)
}

// NewStore loads the profile at path and returns a store around it.
func NewStore(path string) (*Store, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path}
	s.current.Store(&p)

	return s, nil
}

// Current returns the active profile snapshot.
func (s *Store) Current() Profile {
	return *s.current.Load()
}

// Replace validates, persists, and swaps in a new profile. The swap only
// happens after the write succeeds, so the in-memory snapshot never runs
// ahead of the durable state.
func (s *Store) Replace(p Profile) error {
	if err := Save(s.path, p); err != nil {
		return err
	}
	s.current.Store(&p)

	return nil
}

// OnReload registers fn to run after a watched reload swaps in a new
// profile. Must be set before Watch starts.
func (s *Store) OnReload(fn func(Profile)) {
	s.onReload = fn
}

// Reset persists the default profile and swaps it in.
func (s *Store) Reset() error {
	return s.Replace(Default())
}

// Watch reloads the profile whenever the backing file is rewritten and
// blocks until ctx is cancelled. A reload that fails keeps the previous
// snapshot; quarantined files fall back to defaults via Load.
func (s *Store) Watch(ctx context.Context) error {
	errFactory := errors.New()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errFactory.Wrap(ErrWatchFailed, err)
	}
	defer watcher.Close()

	// Watch the directory: atomic saves rename over the file, which
	// replaces the inode a file-level watch would be pinned to.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return errFactory.Wrap(ErrWatchFailed, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Profile watcher error")
		}
	}
}

func (s *Store) reload() {
	p, err := Load(s.path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to reload profile, keeping current snapshot")
		return
	}

	s.current.Store(&p)
	logger.Info().
		Str("mode", p.Mode.String()).
		Int("curve_points", p.Curve.Len()).
		Msg("Profile reloaded")

	if s.onReload != nil {
		s.onReload(p)
	}
}
