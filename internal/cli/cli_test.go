package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"actuator-quiz/internal/domain"
)

func TestBankValidateBuiltIn(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"bank", "validate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), `bank "default" ok`) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestBankValidateRejectsThinBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	data := `id: thin
questions:
  - id: tf-1
    type: true-false
    applicationName: 3D Printer Axis
    difficulty: medium
    prompt: Steppers need an encoder to hold position.
    correctAnswer: X
    timeLimitSeconds: 15
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"bank", "validate", path})
	err := cmd.Execute()
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for an undersized bank, got %v", err)
	}
}

func TestEnvOverridesFlags(t *testing.T) {
	t.Setenv("ACTUATOR_PORT", "9090")
	t.Setenv("ACTUATOR_REDIS_ADDR", "redis:6379")

	cmd := newRootCmd()
	fs := cmd.PersistentFlags()
	if got := fs.Lookup("port").Value.String(); got != "9090" {
		t.Fatalf("expected port from env, got %q", got)
	}
	if got := fs.Lookup("redis-addr").Value.String(); got != "redis:6379" {
		t.Fatalf("expected redis addr from env, got %q", got)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	opts := &rootOptions{
		configPath:  filepath.Join(t.TempDir(), "missing.yaml"),
		port:        "7070",
		postgresURL: "postgres://quiz@localhost/quiz",
		logLevel:    "debug",
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" || cfg.Postgres.URL != opts.postgresURL || cfg.Logging.Level != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Quiz.BankID != "default" {
		t.Fatalf("expected default bank id, got %q", cfg.Quiz.BankID)
	}
}
