// Package control wires the engine to its collaborators and manages the
// daemon lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pressly/goose/v3"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/config"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/health"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/device"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/intents"
	redisclient "github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/redis"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/storage/postgres"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/monitor"
)

// Deps are the external collaborators the host process provides. The reader
// SDK, transport bridge and payment API live outside this module; the engine
// only sees these interfaces.
type Deps struct {
	Status       device.StatusSource
	Gateway      device.Gateway
	Feed         device.ConnectivityFeed
	IntentClient intents.Client
}

// Terminal is the main application struct managing the engine lifecycle.
type Terminal struct {
	cfg          *config.AppConfig
	mon          *monitor.Monitor
	blip         *monitor.BlipWatcher
	healthServer *health.Server
	grpcServer   *health.GRPCServer
	intents      *intents.Service
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewTerminal creates a Terminal with all dependencies initialized.
func NewTerminal(cfg *config.AppConfig, deps Deps) (*Terminal, error) {
	log := slog.Default()

	// 1. Optional audit store
	var db *postgres.DB
	var audit monitor.Audit
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		audit = postgres.NewEventRepo(db)
		log.Info("audit store enabled")
	}

	// 2. Optional journal
	var redisClient *redisclient.Client
	var journal monitor.Journal
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("failed to connect to redis, journal disabled", "error", err)
		} else {
			journal = redisclient.NewJournal(redisClient, cfg.TerminalID, cfg.Monitor.JournalDepth)
			log.Info("journal enabled")
		}
	}

	// 3. Intent service
	intentSvc := intents.NewService(deps.IntentClient, domain.IntentParams{
		AmountMinor: cfg.Intents.AmountMinor,
		Category:    cfg.Intents.Category,
	}, log)

	// 4. Engine stages
	sampler := monitor.NewSampler(deps.Status, intentSvc)
	gate := monitor.NewGate(cfg.Monitor.SecurityRebootGrace)
	guard := monitor.NewGuard(monitor.GuardConfig{
		HardTimeout:   cfg.Monitor.IntentHardTimeout,
		ProactiveAge:  cfg.Monitor.IntentProactiveAge,
		StuckAwaiting: cfg.Monitor.StuckAwaitingInput,
	}, intentSvc, log)
	scheduler := monitor.NewScheduler(monitor.SchedulerConfig{
		Fast:           monitor.BackoffPolicy{Steps: cfg.Monitor.FastBackoff},
		Slow:           monitor.BackoffPolicy{Steps: cfg.Monitor.SlowBackoff},
		MilestoneEvery: cfg.Monitor.MilestoneEvery,
	})
	executor := monitor.NewExecutor(monitor.ExecutorConfig{
		AttemptTimeout: cfg.Monitor.AttemptTimeout,
		DeviceFilter:   cfg.Monitor.DeviceFilter,
	}, deps.Gateway, intentSvc, log)

	mon := monitor.New(monitor.Config{
		TerminalID:      cfg.TerminalID,
		PollingInterval: cfg.Monitor.PollingInterval,
		AttemptTimeout:  cfg.Monitor.AttemptTimeout,
	}, sampler, gate, guard, scheduler, executor, journal, audit, log)

	blip := monitor.NewBlipWatcher(deps.Feed, deps.Status, intentSvc, cfg.Monitor.BlipSettleDelay, log)

	return &Terminal{
		cfg:          cfg,
		mon:          mon,
		blip:         blip,
		healthServer: health.NewServer(mon, cfg.Server.Port),
		grpcServer:   health.NewGRPCServer(mon, cfg.Server.GRPCPort),
		intents:      intentSvc,
		db:           db,
		redisClient:  redisClient,
		log:          log,
	}, nil
}

// Monitor exposes the engine for observers and tests.
func (t *Terminal) Monitor() *monitor.Monitor { return t.mon }

// Intents exposes the intent service so the UI flow can adopt intents it
// creates.
func (t *Terminal) Intents() *intents.Service { return t.intents }

// Start starts the engine and all its surfaces.
func (t *Terminal) Start(ctx context.Context) error {
	go func() {
		if err := t.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("health server failed", "error", err)
		}
	}()

	go func() {
		if err := t.grpcServer.Start(ctx); err != nil {
			t.log.Error("grpc health server failed", "error", err)
		}
	}()

	go func() {
		if err := t.mon.Start(ctx); err != nil {
			t.log.Error("monitor failed", "error", err)
		}
	}()

	go func() {
		if err := t.blip.Run(ctx); err != nil {
			t.log.Error("blip watcher failed", "error", err)
		}
	}()

	// First cycle immediately rather than one polling interval from now.
	t.mon.Kick()
	return nil
}

// Stop stops the terminal daemon.
func (t *Terminal) Stop(ctx context.Context) error {
	t.log.Info("stopping terminal daemon")

	_ = t.mon.Stop()
	t.grpcServer.Stop()

	if t.redisClient != nil {
		if err := t.redisClient.Close(); err != nil {
			t.log.Warn("failed to close redis", "error", err)
		}
	}
	if t.db != nil {
		if err := t.db.Close(); err != nil {
			t.log.Warn("failed to close db", "error", err)
		}
	}

	return t.healthServer.Stop(ctx)
}
