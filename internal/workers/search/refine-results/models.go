// internal/workers/search/refine-results/models.go
package refineresults

import "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
	Query     string `json:"query"`
}

// Output reports what a follow-up utterance did to the session. When
// SessionFound is false the caller starts a fresh search; when IsRefinement
// is false the utterance was a new search and the session is unchanged.
type Output struct {
	SessionFound bool                    `json:"sessionFound"`
	IsRefinement bool                    `json:"isRefinement"`
	Reset        bool                    `json:"reset"`
	Operators    []models.OperatorRecord `json:"operators"`
	Filters      models.FilterState      `json:"filters"`
	Results      []models.Business       `json:"results"`
	ResultCount  int                     `json:"resultCount"`
	StateVersion int64                   `json:"stateVersion"`
	Confidence   float64                 `json:"confidence"`
}
