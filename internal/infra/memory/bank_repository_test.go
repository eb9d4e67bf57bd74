package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"actuator-quiz/internal/domain"
	"golang.org/x/sync/errgroup"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{BankLoader: NewStaticBankLoader(domain.DefaultBank())}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), "default"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetBank(context.Background(), "default"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}

	repo.Invalidate("default")
	if _, err := repo.GetBank(context.Background(), "default"); err != nil {
		t.Fatalf("get bank 3: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestBankRepositoryExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	loader := &countingLoader{BankLoader: NewStaticBankLoader(domain.DefaultBank())}
	repo := NewBankRepository(loader, time.Minute)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetBank(context.Background(), "default")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetBank(context.Background(), "default")
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestBankRepositoryCollapsesConcurrentLoads(t *testing.T) {
	loader := &countingLoader{BankLoader: NewStaticBankLoader(domain.DefaultBank()), delay: 20 * time.Millisecond}
	repo := NewBankRepository(loader, time.Minute)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := repo.GetBank(context.Background(), "default")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected a single load, got %d", loader.count())
	}
}

func TestStaticBankLoaderUnknownBank(t *testing.T) {
	_, err := NewStaticBankLoader().LoadBank(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFileBankLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := `id: expo
questions:
  - id: tf-1
    type: true-false
    applicationName: AGV Wheel Drive
    difficulty: easy
    prompt: An AGV wheel needs a brake.
    correctAnswer: O
    timeLimitSeconds: 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}

	bank, err := NewFileBankLoader(path).LoadBank(context.Background(), "expo")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(bank.Questions) != 1 || bank.Questions[0].CorrectAnswer != domain.AnswerTrue {
		t.Fatalf("unexpected bank: %+v", bank)
	}

	if _, err := NewFileBankLoader(path).LoadBank(context.Background(), "other"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank mismatch, got %v", err)
	}
}

func TestFileBankLoaderRejectsInvalidBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := `id: expo
questions:
  - id: tf-1
    type: true-false
    difficulty: easy
    prompt: Broken.
    correctAnswer: maybe
    timeLimitSeconds: 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	if _, err := ReadBankFile(path); err == nil {
		t.Fatalf("expected invalid correct answer to be rejected")
	}
}

type countingLoader struct {
	BankLoader
	delay time.Duration
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	time.Sleep(l.delay)
	return l.BankLoader.LoadBank(ctx, bankID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
