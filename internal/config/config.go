package config

import (
	"fmt"
	"os"
	"time"

	"actuator-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		PublicURL string `yaml:"publicURL"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL      string `yaml:"ttl"`
		BankPath string `yaml:"bankPath"`
		BankID   string `yaml:"bankID"`
	} `yaml:"quiz"`
	Scoring struct {
		Easy   int `yaml:"easy"`
		Medium int `yaml:"medium"`
		Hard   int `yaml:"hard"`
	} `yaml:"scoring"`
	Leaderboard struct {
		Limit          int    `yaml:"limit"`
		FallbackWindow string `yaml:"fallbackWindow"`
	} `yaml:"leaderboard"`
	Mail struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		TLS      string `yaml:"tls"`
	} `yaml:"mail"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	RateLimit struct {
		PerSecond float64 `yaml:"perSecond"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rateLimit"`
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Quiz.BankID == "" {
		c.Quiz.BankID = "default"
	}
	def := domain.DefaultScoreTable()
	if c.Scoring.Easy == 0 {
		c.Scoring.Easy = def[domain.DifficultyEasy]
	}
	if c.Scoring.Medium == 0 {
		c.Scoring.Medium = def[domain.DifficultyMedium]
	}
	if c.Scoring.Hard == 0 {
		c.Scoring.Hard = def[domain.DifficultyHard]
	}
	if c.Leaderboard.Limit == 0 {
		c.Leaderboard.Limit = 10
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	if err := c.ScoreTable().Validate(); err != nil {
		return err
	}
	for name, raw := range map[string]string{
		"redis.ttl":                  c.Redis.TTL,
		"quiz.ttl":                   c.Quiz.TTL,
		"leaderboard.fallbackWindow": c.Leaderboard.FallbackWindow,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return domain.Configurationf("%s: %v", name, err)
		}
	}
	if c.Leaderboard.Limit < 0 {
		return domain.Configurationf("leaderboard.limit must not be negative")
	}
	if c.Mail.Host != "" && c.Mail.From == "" {
		return domain.Configurationf("mail.from is required when mail.host is set")
	}
	return nil
}

// ScoreTable returns the configured points per difficulty.
func (c Config) ScoreTable() domain.ScoreTable {
	return domain.ScoreTable{
		domain.DifficultyEasy:   c.Scoring.Easy,
		domain.DifficultyMedium: c.Scoring.Medium,
		domain.DifficultyHard:   c.Scoring.Hard,
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
