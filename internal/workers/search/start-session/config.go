// internal/workers/search/start-session/config.go
package startsession

import (
	"time"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := 10 * time.Second
	if wcfg.Timeout > 0 {
		timeout = time.Duration(wcfg.Timeout) * time.Millisecond * 8 / 10
	}
	return &Config{Timeout: timeout}
}
