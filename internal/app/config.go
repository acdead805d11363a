package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	ConfigPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
