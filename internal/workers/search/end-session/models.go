// internal/workers/search/end-session/models.go
package endsession

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output struct {
	Deleted bool `json:"deleted"`
}
