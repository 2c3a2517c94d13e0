// internal/search/session/store.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

const (
	DefaultTimeout = 30 * time.Minute

	resetQueryText = "show all"
)

var ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")

// Stats describes the store's current occupancy and fixed limits.
type Stats struct {
	ActiveSessions       int           `json:"activeSessions"`
	Timeout              time.Duration `json:"timeout"`
	MaxHistoryLength     int           `json:"maxHistoryLength"`
	MaxResultsPerSession int           `json:"maxResultsPerSession"`
}

type entry struct {
	mu           sync.Mutex
	session      *models.ConversationSession
	lastAccessed time.Time
	removed      bool
}

// Store holds conversation sessions in process memory. The map lock only
// guards membership; each entry has its own mutex so that mutations of one
// session are serialized without blocking other sessions.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	timeout time.Duration
	logger  logger.Logger

	now   func() time.Time
	newID func() string
}

func NewStore(timeout time.Duration, log logger.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		entries: make(map[string]*entry),
		timeout: timeout,
		logger:  log,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Create registers a new session for base. Base results beyond
// MaxResultsPerSession are dropped.
func (s *Store) Create(base models.BaseSearch, userID string) *models.ConversationSession {
	now := s.now()

	results := base.BaseResults
	if len(results) > models.MaxResultsPerSession {
		results = results[:models.MaxResultsPerSession]
	}
	base.Categories = append([]string(nil), base.Categories...)
	base.BaseResults = append([]models.Business(nil), results...)

	sess := &models.ConversationSession{
		SessionID:          s.newID(),
		UserID:             userID,
		BaseSearch:         base,
		CurrentFilters:     models.FilterState{},
		SearchHistory:      []models.SearchTurn{},
		StateVersion:       1,
		LastQueryTimestamp: now,
	}

	s.mu.Lock()
	s.entries[sess.SessionID] = &entry{session: sess, lastAccessed: now}
	s.mu.Unlock()

	metrics.SessionEvents.WithLabelValues("created").Inc()
	s.logger.Info("Session created", map[string]interface{}{
		"sessionId":   sess.SessionID,
		"baseResults": len(sess.BaseSearch.BaseResults),
	})

	return sess.Clone()
}

// Get returns a copy of the session and refreshes its idle timer.
func (s *Store) Get(id string) (*models.ConversationSession, bool) {
	var out *models.ConversationSession
	ok := s.withEntry(id, func(e *entry, _ time.Time) {
		out = e.session.Clone()
	})
	return out, ok
}

// UpdateFilters replaces the session's current filters.
func (s *Store) UpdateFilters(id string, filters models.FilterState) (*models.ConversationSession, bool) {
	var out *models.ConversationSession
	ok := s.withEntry(id, func(e *entry, now time.Time) {
		e.session.CurrentFilters = filters.Clone()
		out = s.bump(e, now)
	})
	if ok {
		s.logger.Debug("Session filters updated", map[string]interface{}{
			"sessionId": id,
			"version":   out.StateVersion,
		})
	}
	return out, ok
}

// UpdateFiltersFunc reads the current filters, hands them to fn and stores
// the result, all while holding the session's lock. If fn fails nothing is
// written and the version is unchanged.
func (s *Store) UpdateFiltersFunc(id string, fn func(current models.FilterState) (models.FilterState, error)) (*models.ConversationSession, error) {
	var (
		out   *models.ConversationSession
		fnErr error
	)
	ok := s.withEntry(id, func(e *entry, now time.Time) {
		next, err := fn(e.session.CurrentFilters.Clone())
		if err != nil {
			fnErr = err
			return
		}
		e.session.CurrentFilters = next.Clone()
		out = s.bump(e, now)
	})
	if !ok {
		return nil, ErrSessionNotFound
	}
	if fnErr != nil {
		return nil, fnErr
	}
	return out, nil
}

// AppendTurn records turn as the most recent history entry, keeping at most
// MaxHistoryLength turns.
func (s *Store) AppendTurn(id string, turn models.SearchTurn) (*models.ConversationSession, bool) {
	var out *models.ConversationSession
	ok := s.withEntry(id, func(e *entry, now time.Time) {
		if turn.Timestamp.IsZero() {
			turn.Timestamp = now
		}
		turn.AppliedFilters = turn.AppliedFilters.Clone()
		prependTurn(e.session, turn)
		out = s.bump(e, now)
	})
	return out, ok
}

// Reset clears the current filters and records a synthetic "show all" turn.
func (s *Store) Reset(id string) (*models.ConversationSession, bool) {
	var out *models.ConversationSession
	ok := s.withEntry(id, func(e *entry, now time.Time) {
		e.session.CurrentFilters = models.FilterState{}
		prependTurn(e.session, models.SearchTurn{
			QueryText:      resetQueryText,
			AppliedFilters: models.FilterState{},
			ResultCount:    len(e.session.BaseSearch.BaseResults),
			Timestamp:      now,
			IsRefinement:   true,
		})
		out = s.bump(e, now)
	})
	if ok {
		metrics.SessionEvents.WithLabelValues("reset").Inc()
		s.logger.Info("Session filters reset", map[string]interface{}{"sessionId": id})
	}
	return out, ok
}

// Delete removes the session. It reports false when the session was absent
// or had already expired.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	live := !e.removed && !s.expired(e, s.now())
	e.removed = true
	e.mu.Unlock()

	if live {
		metrics.SessionEvents.WithLabelValues("deleted").Inc()
		s.logger.Info("Session deleted", map[string]interface{}{"sessionId": id})
	}
	return live
}

// SweepExpired removes every session idle longer than the timeout and
// returns how many were removed. The map is only read-locked while taking a
// snapshot, so request handling continues during the sweep.
func (s *Store) SweepExpired() int {
	s.mu.RLock()
	snapshot := make(map[string]*entry, len(s.entries))
	for id, e := range s.entries {
		snapshot[id] = e
	}
	s.mu.RUnlock()

	now := s.now()
	removed := 0
	for id, e := range snapshot {
		e.mu.Lock()
		expired := !e.removed && s.expired(e, now)
		if expired {
			e.removed = true
		}
		e.mu.Unlock()

		if expired {
			s.forget(id, e)
			removed++
		}
	}

	if removed > 0 {
		metrics.SessionsEvicted.Add(float64(removed))
		s.logger.Info("Swept stale sessions", map[string]interface{}{"removed": removed})
	}
	return removed
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	active := len(s.entries)
	s.mu.RUnlock()

	return Stats{
		ActiveSessions:       active,
		Timeout:              s.timeout,
		MaxHistoryLength:     models.MaxHistoryLength,
		MaxResultsPerSession: models.MaxResultsPerSession,
	}
}

// withEntry runs fn under the session's lock if the session is live,
// refreshing its idle timer. Expired sessions are removed on touch.
func (s *Store) withEntry(id string, fn func(e *entry, now time.Time)) bool {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return false
	}
	now := s.now()
	if s.expired(e, now) {
		e.removed = true
		e.mu.Unlock()
		s.forget(id, e)
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		s.logger.Debug("Session expired on access", map[string]interface{}{"sessionId": id})
		return false
	}
	e.lastAccessed = now
	fn(e, now)
	e.mu.Unlock()
	return true
}

// forget drops id from the map if it still points at e.
func (s *Store) forget(id string, e *entry) {
	s.mu.Lock()
	if current, ok := s.entries[id]; ok && current == e {
		delete(s.entries, id)
	}
	s.mu.Unlock()
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastAccessed) > s.timeout
}

func (s *Store) bump(e *entry, now time.Time) *models.ConversationSession {
	e.session.StateVersion++
	e.session.LastQueryTimestamp = now
	return e.session.Clone()
}

func prependTurn(sess *models.ConversationSession, turn models.SearchTurn) {
	history := make([]models.SearchTurn, 0, models.MaxHistoryLength)
	history = append(history, turn)
	for _, t := range sess.SearchHistory {
		if len(history) == models.MaxHistoryLength {
			break
		}
		history = append(history, t)
	}
	sess.SearchHistory = history
}
