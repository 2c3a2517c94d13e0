// internal/workers/search/parse-query/models.go
package parsequery

import "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"

type Input struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	ParseResult        *models.QueryParseResult   `json:"parseResult"`
	Ambiguity          *models.AmbiguityDetection `json:"ambiguity,omitempty"`
	NeedsClarification bool                       `json:"needsClarification"`
}
