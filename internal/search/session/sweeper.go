// internal/search/session/sweeper.go
package session

import (
	"context"
	"time"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
)

const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically evicts idle sessions and location contexts.
type Sweeper struct {
	sessions  *Store
	locations *LocationStore
	interval  time.Duration
	logger    logger.Logger
}

func NewSweeper(sessions *Store, locations *LocationStore, interval time.Duration, log logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Sweeper{
		sessions:  sessions,
		locations: locations,
		interval:  interval,
		logger:    log,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Session sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session sweeper stopped", nil)
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce runs a single eviction pass over both stores.
func (s *Sweeper) SweepOnce() (sessions, locations int) {
	if s.sessions != nil {
		sessions = s.sessions.SweepExpired()
		metrics.SessionsActive.Set(float64(s.sessions.Stats().ActiveSessions))
	}
	if s.locations != nil {
		locations = s.locations.SweepExpired()
	}
	if sessions > 0 || locations > 0 {
		s.logger.Debug("Sweep completed", map[string]interface{}{
			"sessions":  sessions,
			"locations": locations,
		})
	}
	return sessions, locations
}
