package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/config"
	"actuator-quiz/internal/domain"
	"actuator-quiz/internal/infra/mail"
	"actuator-quiz/internal/infra/memory"
	pgstore "actuator-quiz/internal/infra/postgres"
	redisstore "actuator-quiz/internal/infra/redis"
	"actuator-quiz/internal/metrics"
	transport "actuator-quiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, opts)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServer(cmd.Context(), cfg, log)
		},
	}
}

// stores groups the persistence backends selected by the config.
type stores struct {
	banks    app.BankRepository
	results  app.ResultStore
	counter  app.CounterStore
	sessions app.SessionRepository
	sweep    func(context.Context) (int, error)
	close    func()
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{close: func() {}}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var loader memory.BankLoader = memory.NewStaticBankLoader(domain.DefaultBank())
	if cfg.Quiz.BankPath != "" {
		loader = memory.NewFileBankLoader(cfg.Quiz.BankPath)
	}

	var closers []func()
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		store := pgstore.NewStore(pool)
		s.results, s.counter = store, store
		if cfg.Quiz.BankPath == "" {
			loader = fallbackLoader{primary: pgstore.NewBankLoader(pool), fallback: loader}
		}
	} else {
		log.Warn("postgres not configured, results are kept in memory")
		s.results, s.counter = memory.NewResultStore(), memory.NewCounterStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, domain.Persistence("connect redis", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		s.banks = redisstore.NewBankRepository(client, loader, bankTTL)
		sessions := redisstore.NewSessionStore(client, sessionTTL)
		s.sessions, s.sweep = sessions, sessions.Sweep
		// the counter lives next to the sessions so every instance shares it
		s.counter = redisstore.NewCounterStore(client)
	} else {
		s.banks = memory.NewBankRepository(loader, bankTTL)
		sessions := memory.NewSessionStore(sessionTTL)
		s.sessions = sessions
		s.sweep = func(context.Context) (int, error) { return sessions.Sweep(), nil }
	}

	s.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return s, nil
}

// fallbackLoader serves the built-in bank until one has been imported.
type fallbackLoader struct {
	primary  memory.BankLoader
	fallback memory.BankLoader
}

func (l fallbackLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	bank, err := l.primary.LoadBank(ctx, bankID)
	if errors.Is(err, domain.ErrBankNotFound) {
		return l.fallback.LoadBank(ctx, bankID)
	}
	return bank, err
}

func newNotifier(cfg config.Config, log *zap.Logger) (app.ResultNotifier, error) {
	var sender mail.Sender = mail.NewLogSender(log)
	if cfg.Mail.Host != "" {
		smtp, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			TLS:      cfg.Mail.TLS,
		})
		if err != nil {
			return nil, err
		}
		sender = smtp
	}
	return mail.NewResultNotifier(sender)
}

func runServer(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	engine, err := app.NewEngine(st.banks, cfg.Quiz.BankID, domain.DefaultBlueprint(), cfg.ScoreTable())
	if err != nil {
		return err
	}
	ranker := app.NewRanker(st.results, log,
		app.WithFallbackWindow(config.TTLDuration(cfg.Leaderboard.FallbackWindow, 7*24*time.Hour)),
	)
	counter := app.NewParticipantCounter(st.counter, st.results, log)
	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}
	m := metrics.New()

	service := app.NewGameService(engine, ranker, counter, st.results, st.sessions, log,
		app.WithNotifier(notifier),
		app.WithObserver(m),
		app.WithLeaderboardLimit(cfg.Leaderboard.Limit),
	)
	defer service.Close()
	if err := service.Prime(ctx); err != nil {
		return err
	}

	router := transport.NewRouter(service, log, transport.RouterOptions{
		PublicURL:     cfg.Server.PublicURL,
		Metrics:       m.Handler(),
		Observer:      m,
		RatePerSecond: cfg.RateLimit.PerSecond,
		RateBurst:     cfg.RateLimit.Burst,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		// no write timeout: it would also cut hijacked websocket connections
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting actuator quiz", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				router.SweepVisitors(10 * time.Minute)
				n, err := st.sweep(ctx)
				if err != nil {
					log.Warn("session sweep failed", zap.Error(err))
				} else if n > 0 {
					log.Debug("expired sessions swept", zap.Int("count", n))
				}
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
