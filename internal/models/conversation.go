// internal/models/conversation.go
package models

import "time"

const (
	MaxHistoryLength     = 10
	MaxResultsPerSession = 200
)

type BaseSearch struct {
	Categories   []string    `json:"businessType"`
	Location     string      `json:"location"`
	SearchCenter Coordinates `json:"searchCenter"`
	BaseResults  []Business  `json:"baseResults"`
}

type SearchTurn struct {
	QueryText      string      `json:"queryText"`
	AppliedFilters FilterState `json:"appliedFilters"`
	ResultCount    int         `json:"resultCount"`
	Timestamp      time.Time   `json:"timestamp"`
	IsRefinement   bool        `json:"isRefinement"`
}

// ConversationSession is a snapshot of one session's logical state.
// SearchHistory is ordered most recent first.
type ConversationSession struct {
	SessionID          string       `json:"sessionId"`
	UserID             string       `json:"userId,omitempty"`
	BaseSearch         BaseSearch   `json:"baseSearch"`
	CurrentFilters     FilterState  `json:"currentFilters"`
	SearchHistory      []SearchTurn `json:"searchHistory"`
	StateVersion       int64        `json:"stateVersion"`
	LastQueryTimestamp time.Time    `json:"lastQueryTimestamp"`
}

// Clone deep-copies the session so callers never share slices with the store.
func (s *ConversationSession) Clone() *ConversationSession {
	if s == nil {
		return nil
	}
	out := *s
	out.BaseSearch.Categories = append([]string(nil), s.BaseSearch.Categories...)
	out.BaseSearch.BaseResults = append([]Business(nil), s.BaseSearch.BaseResults...)
	out.CurrentFilters = s.CurrentFilters.Clone()
	out.SearchHistory = make([]SearchTurn, len(s.SearchHistory))
	for i, turn := range s.SearchHistory {
		turn.AppliedFilters = turn.AppliedFilters.Clone()
		out.SearchHistory[i] = turn
	}
	return &out
}
