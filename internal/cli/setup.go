package cli

import (
	"actuator-quiz/internal/config"
	"actuator-quiz/internal/logging"
	"go.uber.org/zap"
)

// loadConfig reads the YAML config and applies flag and env overrides.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if opts.postgresURL != "" {
		cfg.Postgres.URL = opts.postgresURL
	}
	if opts.redisAddr != "" {
		cfg.Redis.Addr = opts.redisAddr
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config, opts *rootOptions) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Verbose: opts.verbose,
	})
}
