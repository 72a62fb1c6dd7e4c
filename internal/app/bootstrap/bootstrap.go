package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	evaluationengine "tarmac/contexts/community-gallery/evaluation-engine"
	evaluationpostgres "tarmac/contexts/community-gallery/evaluation-engine/adapters/postgres"
	evaluationcommands "tarmac/contexts/community-gallery/evaluation-engine/application/commands"
	"tarmac/contexts/community-gallery/evaluation-engine/application/workers"
	notificationservice "tarmac/contexts/community-gallery/notification-service"
	notificationpostgres "tarmac/contexts/community-gallery/notification-service/adapters/postgres"
	submissionservice "tarmac/contexts/community-gallery/submission-service"
	submissionpostgres "tarmac/contexts/community-gallery/submission-service/adapters/postgres"
	submissioncommands "tarmac/contexts/community-gallery/submission-service/application/commands"
	"tarmac/internal/platform/config"
	"tarmac/internal/platform/db"
	"tarmac/internal/platform/httpserver"
	"tarmac/internal/platform/messaging"
	"tarmac/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	notificationRepo := notificationpostgres.NewRepository(pg.DB, logger)
	notificationModule := notificationservice.NewModule(notificationservice.Dependencies{
		Repository: notificationRepo,
		Clock:      notificationpostgres.SystemClock{},
		IDGen:      notificationpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	submissionRepo := submissionpostgres.NewRepository(pg.DB, logger)
	submissionModule := submissionservice.NewModule(submissionservice.Dependencies{
		Submissions:   submissionRepo,
		Members:       submissionRepo,
		Notifications: notificationModule.Service,
		Clock:         submissionpostgres.SystemClock{},
		IDGen:         submissionpostgres.UUIDGenerator{},
		Policy: submissioncommands.AdmissionPolicy{
			MaxPendingQueueSize:   cfg.Moderation.MaxPendingQueueSize,
			PriorityLaneSize:      cfg.Moderation.PriorityLaneSize,
			WeeklySubmissionLimit: cfg.Moderation.WeeklySubmissionLimit,
		},
		Logger: logger,
	})

	evaluationRepo := evaluationpostgres.NewRepository(pg.DB, logger)
	evaluationModule := evaluationengine.NewModule(evaluationengine.Dependencies{
		Evaluations:   evaluationRepo,
		Submissions:   evaluationRepo,
		Members:       evaluationRepo,
		Notifications: notificationModule.Service,
		Outbox:        evaluationRepo,
		Clock:         evaluationpostgres.SystemClock{},
		IDGen:         evaluationpostgres.UUIDGenerator{},
		Policy: evaluationcommands.DecisionPolicy{
			EvaluatorRankThreshold:    cfg.Moderation.EvaluatorRankThreshold,
			QuorumFraction:            cfg.Moderation.QuorumFraction,
			ApprovalScoreThreshold:    cfg.Moderation.ApprovalScoreThreshold,
			ApprovalMajorityThreshold: cfg.Moderation.ApprovalMajorityThreshold,
		},
		Logger: logger,
	})

	server := httpserver.New(
		submissionModule,
		evaluationModule,
		notificationModule,
		metrics.New(),
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := evaluationpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workers.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     evaluationpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
