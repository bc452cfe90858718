package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Store holds the live configuration. Readers always see a complete,
// validated config.
type Store struct {
	path string
	cur  atomic.Pointer[Config]
	log  zerolog.Logger
}

// NewStore wraps cfg, loaded from path ("" when built in).
func NewStore(path string, cfg *Config, logger zerolog.Logger) *Store {
	if cfg == nil {
		d := Default()
		cfg = &d
	}
	s := &Store{path: path, log: logger.With().Str("component", "config").Logger()}
	s.cur.Store(cfg)
	return s
}

// Open loads path, or the defaults when path is empty.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return NewStore("", nil, logger), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(path, cfg, logger), nil
}

// Path returns the file the config came from.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current config. Callers must not modify it.
func (s *Store) Get() *Config {
	return s.cur.Load()
}

// Reload re-reads the file. An invalid file leaves the current config in
// place and returns the error.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.cur.Store(cfg)
	return nil
}

// Watch reloads the config whenever its file changes and calls onChange
// with each new config. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func(*Config)) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				s.log.Warn().Err(err).Str("path", s.path).Msg("Config reload failed, keeping previous")
				continue
			}
			s.log.Info().Str("path", s.path).Msg("Config reloaded")
			if onChange != nil {
				onChange(s.Get())
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("Config watcher error")
		}
	}
}
