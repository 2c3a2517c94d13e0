// internal/workers/search/start-session/models.go
package startsession

import (
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/resultcache"
)

// Input describes the base search a conversation starts from. BaseResults
// may be empty when the caller expects a cached provider response.
type Input struct {
	Query        string              `json:"query,omitempty"`
	BusinessType []string            `json:"businessType"`
	Location     string              `json:"location"`
	SearchCenter models.Coordinates  `json:"searchCenter"`
	BaseResults  []models.Business   `json:"baseResults"`
	Filters      *models.FilterState `json:"filters,omitempty"`
	UserID       string              `json:"userId,omitempty"`
}

type Output struct {
	SessionID    string             `json:"sessionId"`
	StateVersion int64              `json:"stateVersion"`
	ResultCount  int                `json:"resultCount"`
	CacheStatus  resultcache.Status `json:"cacheStatus"`
}
