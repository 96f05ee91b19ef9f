package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/thecommish/pickem/external/slackhook"
	"github.com/thecommish/pickem/external/stattleship"
	"github.com/thecommish/pickem/internal/config"
	"github.com/thecommish/pickem/internal/domain/pick"
	"github.com/thecommish/pickem/internal/domain/season"
	"github.com/thecommish/pickem/internal/infrastructure/repository/memory"
	"github.com/thecommish/pickem/internal/infrastructure/repository/postgres"
	"github.com/thecommish/pickem/internal/interfaces/httpapi"
	"github.com/thecommish/pickem/internal/platform/async"
	"github.com/thecommish/pickem/internal/platform/logging"
	"github.com/thecommish/pickem/internal/platform/resilience"
	"github.com/thecommish/pickem/internal/usecase"
)

// NewHTTPServer wires the full service. The returned cleanup drains the
// background dispatcher and closes the database; call it after the server
// has shut down.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	clientLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(clientLogger)

	var pickRepo pick.Repository
	closeDB := func() {}
	if cfg.DBURL == "" {
		logger.Info("pick store configured", "backend", "memory")
		pickRepo = memory.NewPickRepository()
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open pick database: %w", err)
		}
		logger.Info("pick store configured", "backend", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
		pickRepo = postgres.NewPickRepository(db)
		closeDB = func() {
			if err := db.Close(); err != nil {
				logger.Error("close pick database", "error", err)
			}
		}
	}

	scheduleClient := stattleship.NewClient(stattleship.ClientConfig{
		BaseURL:    cfg.StattleshipBaseURL,
		Token:      cfg.StattleshipToken,
		Timeout:    cfg.StattleshipTimeout,
		MaxRetries: cfg.StattleshipMaxRetries,
		Logger:     clientLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StattleshipCircuitEnabled,
			FailureThreshold: cfg.StattleshipCircuitFailureCount,
			OpenTimeout:      cfg.StattleshipCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StattleshipCircuitHalfOpenMaxReq,
		},
	})

	slackPublisher := slackhook.NewPublisher(slackhook.PublisherConfig{
		Timeout:    cfg.SlackTimeout,
		MaxRetries: cfg.SlackMaxRetries,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SlackCircuitEnabled,
			FailureThreshold: cfg.SlackCircuitFailureCount,
			OpenTimeout:      cfg.SlackCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SlackCircuitHalfOpenMaxReq,
		},
	}, logger)

	clock := season.NewClock(cfg.SeasonWeek1Start, cfg.SeasonFinalWeek)
	dispatcher := async.NewDispatcher(cfg.DispatchMaxWorkers, cfg.DispatchTaskTimeout, logger)

	pickSvc := usecase.NewPickService(pickRepo, scheduleClient, clock, cfg.SeasonYear, logger)
	standingsSvc := usecase.NewStandingsService(pickRepo)
	settlementSvc := usecase.NewSettlementService(pickRepo, scheduleClient, cfg.SeasonYear, logger)
	reminderSvc := usecase.NewReminderService(pickRepo, logger)

	handler := httpapi.NewHandler(
		pickSvc,
		standingsSvc,
		settlementSvc,
		reminderSvc,
		clock,
		slackPublisher,
		cfg.SlackWebhookURL,
		dispatcher,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SlackCommandToken, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		closeDB()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func() {
		dispatcher.Wait()
		closeDB()
	}

	return server, cleanup, nil
}
