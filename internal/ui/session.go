package ui

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jscyril/movix/internal/config"
	"github.com/jscyril/movix/internal/prefs"
)

// Session holds the preference snapshot of the running player and writes
// it back whenever it changes. It is shared with the equalizer's change
// hook, which runs outside the bubbletea loop.
type Session struct {
	mu     sync.Mutex
	store  *prefs.Store
	prefs  prefs.Prefs
	logger *zap.Logger
}

// NewSession starts a session from a loaded snapshot. A nil store keeps
// the preferences in memory only.
func NewSession(store *prefs.Store, initial prefs.Prefs, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, prefs: initial, logger: logger}
}

// Prefs returns a copy of the current preferences
func (s *Session) Prefs() prefs.Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Update applies mutate and saves the result
func (s *Session) Update(mutate func(p *prefs.Prefs)) error {
	s.mu.Lock()
	mutate(&s.prefs)
	snapshot := s.prefs
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Save(snapshot); err != nil {
		s.logger.Warn("save preferences", zap.String("path", s.store.Path()), zap.Error(err))
		return err
	}
	return nil
}

// defaultPrefs are the first-run preferences, starting at the configured
// volume
func defaultPrefs(cfg *config.Config) prefs.Prefs {
	p := prefs.Default()
	if cfg != nil && cfg.DefaultVolume >= 0 && cfg.DefaultVolume <= 1 {
		p.Volume = cfg.DefaultVolume
	}
	return p
}

// LoadSession reads the saved preferences, falling back to the first-run
// defaults when nothing was saved yet or the snapshot is unreadable
func LoadSession(store *prefs.Store, cfg *config.Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !store.Exists() {
		return NewSession(store, defaultPrefs(cfg), logger)
	}
	p, err := store.Load()
	if err != nil {
		logger.Warn("load preferences", zap.String("path", store.Path()), zap.Error(err))
	}
	return NewSession(store, p, logger)
}
