// internal/search/session/locations.go
package session

import (
	"context"
	"sync"
	"time"
)

// MaxRecentLocations bounds how many locations are remembered per session.
const MaxRecentLocations = 5

type locationEntry struct {
	locations    []string
	lastAccessed time.Time
}

// LocationStore remembers the locations recently parsed for a session id so
// that later queries can refer back to them ("coffee near there"). It is
// independent of Store: parses may arrive before any base search exists.
type LocationStore struct {
	mu      sync.Mutex
	entries map[string]*locationEntry
	timeout time.Duration
	now     func() time.Time
}

func NewLocationStore(timeout time.Duration) *LocationStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LocationStore{
		entries: make(map[string]*locationEntry),
		timeout: timeout,
		now:     time.Now,
	}
}

// Recent returns the remembered locations for sessionID, most recent first.
func (l *LocationStore) Recent(_ context.Context, sessionID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.live(sessionID)
	if !ok {
		return nil, nil
	}
	return append([]string(nil), e.locations...), nil
}

// Record pushes location to the front of the session's list.
func (l *LocationStore) Record(_ context.Context, sessionID, location string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.live(sessionID)
	if !ok {
		e = &locationEntry{}
		l.entries[sessionID] = e
	}

	locations := make([]string, 0, MaxRecentLocations)
	locations = append(locations, location)
	for _, prev := range e.locations {
		if len(locations) == MaxRecentLocations {
			break
		}
		locations = append(locations, prev)
	}
	e.locations = locations
	e.lastAccessed = l.now()
	return nil
}

// Forget drops everything remembered for sessionID.
func (l *LocationStore) Forget(sessionID string) {
	l.mu.Lock()
	delete(l.entries, sessionID)
	l.mu.Unlock()
}

// SweepExpired removes idle entries and returns how many were removed.
func (l *LocationStore) SweepExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, e := range l.entries {
		if now.Sub(e.lastAccessed) > l.timeout {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// live must be called with l.mu held.
func (l *LocationStore) live(sessionID string) (*locationEntry, bool) {
	e, ok := l.entries[sessionID]
	if !ok {
		return nil, false
	}
	now := l.now()
	if now.Sub(e.lastAccessed) > l.timeout {
		delete(l.entries, sessionID)
		return nil, false
	}
	e.lastAccessed = now
	return e, true
}
