// ABOUTME: Read-side cache of one user's routines, history and workout frequency.
// ABOUTME: Refreshes explicitly or when the event bus reports changed rows.
package appstate

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lift/internal/events"
	"github.com/harperreed/lift/internal/models"
	"github.com/harperreed/lift/internal/storage"
)

// FrequencyWindow is how far back the cached workout frequency reaches.
const FrequencyWindow = 30 * 24 * time.Hour

// Service holds typed caches over a storage.Repository.
type Service struct {
	repo   storage.Repository
	userID int64
	logger *log.Logger
	now    func() time.Time

	mu        sync.RWMutex
	routines  []models.HistoryRoutine
	history   []models.History
	frequency []storage.WorkoutFrequency
	loadedAt  time.Time

	unsubscribe []func()
}

// New creates an empty Service for userID. Call Refresh or Attach to fill it.
func New(repo storage.Repository, userID int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{repo: repo, userID: userID, logger: logger, now: time.Now}
}

// Attach subscribes the service to refresh topics on bus. Events for other
// users are ignored. Handlers refresh synchronously on the publisher's goroutine.
func (s *Service) Attach(bus *events.Bus) {
	s.unsubscribe = append(s.unsubscribe,
		bus.Subscribe(events.HistoryRefreshed, s.onEvent(s.RefreshHistory)),
		bus.Subscribe(events.RoutinesRefreshed, s.onEvent(s.RefreshRoutines)),
		bus.Subscribe(events.Bootstrapped, s.onEvent(s.Refresh)),
	)
}

func (s *Service) onEvent(refresh func(context.Context) error) events.Handler {
	return func(e events.Event) {
		if e.UserID != 0 && e.UserID != s.userID {
			return
		}
		if err := refresh(context.Background()); err != nil {
			s.logger.Error("refresh after event failed", "topic", e.Topic, "err", err)
		}
	}
}

// Close removes every bus subscription.
func (s *Service) Close() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}

// Refresh reloads every cache.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.RefreshRoutines(ctx); err != nil {
		return err
	}
	return s.RefreshHistory(ctx)
}

// RefreshRoutines reloads routines with their exercises and sets.
func (s *Service) RefreshRoutines(ctx context.Context) error {
	routines, err := s.repo.GetRoutineData(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.routines = routines
	s.loadedAt = s.now()
	s.mu.Unlock()
	s.logger.Debug("routines refreshed", "user_id", s.userID, "count", len(routines))
	return nil
}

// RefreshHistory reloads the session history and the recent frequency counts.
func (s *Service) RefreshHistory(ctx context.Context) error {
	history, err := s.repo.ListHistory(ctx, s.userID, 0)
	if err != nil {
		return err
	}
	now := s.now()
	frequency, err := s.repo.WorkoutFrequency(ctx, s.userID, now.Add(-FrequencyWindow))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.history = history
	s.frequency = frequency
	s.loadedAt = now
	s.mu.Unlock()
	s.logger.Debug("history refreshed", "user_id", s.userID, "sessions", len(history))
	return nil
}

// UserID returns the user the caches belong to.
func (s *Service) UserID() int64 {
	return s.userID
}

// Routines returns a copy of the cached routines.
func (s *Service) Routines() []models.HistoryRoutine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.routines)
}

// History returns a copy of the cached sessions, most recent first.
func (s *Service) History() []models.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Frequency returns a copy of the cached per-day session counts.
func (s *Service) Frequency() []storage.WorkoutFrequency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.frequency)
}

// Session returns a deep copy of a cached session, so callers can edit it and
// hand both versions to the reconciler.
func (s *Service) Session(id int64) (*models.History, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.history {
		if s.history[i].ID == id {
			return s.history[i].Clone(), true
		}
	}
	return nil, false
}

// LoadedAt returns when a cache was last refreshed.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
