package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"actuator-quiz/internal/domain"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Quiz.BankID != "default" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ScoreTable()[domain.DifficultyHard] != 30 {
		t.Fatalf("expected default hard score 30, got %d", cfg.ScoreTable()[domain.DifficultyHard])
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
scoring:
  easy: 5
  medium: 15
  hard: 25
leaderboard:
  fallbackWindow: 48h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.ScoreTable()[domain.DifficultyEasy] != 5 {
		t.Fatalf("expected easy score 5, got %d", cfg.ScoreTable()[domain.DifficultyEasy])
	}
	if got := TTLDuration(cfg.Leaderboard.FallbackWindow, time.Hour); got != 48*time.Hour {
		t.Fatalf("expected 48h window, got %s", got)
	}
}

func TestLoadRejectsNonIncreasingScores(t *testing.T) {
	path := writeConfig(t, `
scoring:
  easy: 30
  medium: 20
  hard: 10
`)
	if _, err := Load(path); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
quiz:
  ttl: soon
`)
	if _, err := Load(path); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("nope", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid value, got %s", got)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
