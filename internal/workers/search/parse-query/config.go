// internal/workers/search/parse-query/config.go
package parsequery

import (
	"time"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives the per-job deadline from the worker's activation
// timeout, leaving a margin for the complete command.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := 10 * time.Second
	if wcfg.Timeout > 0 {
		timeout = time.Duration(wcfg.Timeout) * time.Millisecond * 8 / 10
	}
	return &Config{Timeout: timeout}
}
