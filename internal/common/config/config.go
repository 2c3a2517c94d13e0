package config

import "time"

type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Search   SearchConfig            `mapstructure:"search"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Server   ServerConfig            `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SearchConfig holds the knobs of the conversational search core. All
// durations are milliseconds.
type SearchConfig struct {
	SessionTimeout      int         `mapstructure:"session_timeout"`
	SweepInterval       int         `mapstructure:"sweep_interval"`
	ConfidenceThreshold float64     `mapstructure:"confidence_threshold"`
	MaxQueryLength      int         `mapstructure:"max_query_length"`
	CacheTTL            int         `mapstructure:"cache_ttl"`
	Retry               RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
	BaseDelay  int `mapstructure:"base_delay"` // milliseconds
	MaxDelay   int `mapstructure:"max_delay"`  // milliseconds
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

func (s SearchConfig) SessionTimeoutDuration() time.Duration {
	return GetDuration(s.SessionTimeout)
}

func (s SearchConfig) SweepIntervalDuration() time.Duration {
	return GetDuration(s.SweepInterval)
}

func (s SearchConfig) CacheTTLDuration() time.Duration {
	return GetDuration(s.CacheTTL)
}
