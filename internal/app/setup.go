package app

import (
	"context"
	"fmt"
	"time"

	"github.com/openverdict/tribunal/internal/advocate"
	"github.com/openverdict/tribunal/internal/circuitbreaker"
	"github.com/openverdict/tribunal/internal/events"
	"github.com/openverdict/tribunal/internal/evidence"
	"github.com/openverdict/tribunal/internal/judge"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/internal/llm"
	"github.com/openverdict/tribunal/internal/storage"
	"github.com/openverdict/tribunal/internal/trial"
	"github.com/openverdict/tribunal/pkg/authority"
	"github.com/openverdict/tribunal/pkg/cache"
	"github.com/openverdict/tribunal/pkg/config"
	"github.com/openverdict/tribunal/pkg/healthprobe"
	"github.com/openverdict/tribunal/pkg/httpserver"
	"go.uber.org/zap"
)

const (
	eventPersistTimeout = 5 * time.Second
	storageProbeTimeout = 2 * time.Second
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	signer, err := setupSigner(cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup signer: %w", err)
	}

	transcriptCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	eventStorage, err := setupStorage(cfg, logger, transcriptCache)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	healthChecker.Register("storage", func() error {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), storageProbeTimeout)
		defer pingCancel()
		return eventStorage.Ping(pingCtx)
	})

	bus := events.NewBus(64, logger)

	app := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		bus:           bus,
		storage:       eventStorage,
		cache:         transcriptCache,
		ctx:           ctx,
		cancel:        cancel,
	}

	app.ledger = ledger.New(ledger.Config{
		Authority: signer.Address(),
		Treasury:  ledger.NewPaperTreasury(logger),
		Logger:    logger,
		OnEvent:   app.handleLedgerEvent,
	})

	pendingStore := trial.NewStore(cache.NewMemoryCache(), cfg.PendingTrialTTL)
	app.trialRunner = setupTrialRunner(cfg, logger, eventStorage, pendingStore)
	app.settler = trial.NewSettler(app.ledger, signer, pendingStore, logger)

	app.breaker, err = setupBreaker(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup circuit breaker: %w", err)
	}
	if breaker := app.breaker; breaker != nil {
		// Readiness follows the breaker: open means the settlement path is down.
		healthChecker.Register("settlement-breaker", func() error {
			status := breaker.GetStatus()
			if status.State == circuitbreaker.StateOpen {
				return fmt.Errorf("circuit breaker open after %d consecutive failures", status.ConsecutiveFailures)
			}
			return nil
		})
	}

	app.httpServer = httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Ledger:        app.ledger,
		TrialRunner:   app.trialRunner,
		Settler:       app.settler,
		Breaker:       app.breaker,
		Storage:       eventStorage,
		Bus:           bus,
	})

	return app, nil
}

// handleLedgerEvent fans a ledger event out to websocket subscribers and
// persists it. Persistence happens off the ledger's critical path.
func (a *App) handleLedgerEvent(event ledger.Event) {
	a.bus.Publish(event)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), eventPersistTimeout)
		defer cancel()

		if err := a.storage.StoreEvent(ctx, &event); err != nil {
			a.logger.Error("event-persist-failed",
				zap.String("event-type", string(event.Type)),
				zap.String("market-id", event.MarketID),
				zap.Error(err))
		}
	}()
}

func setupSigner(cfg *config.Config) (*authority.Signer, error) {
	if cfg.AuthorityPrivateKey == "" {
		return nil, fmt.Errorf("AUTHORITY_PRIVATE_KEY must be set")
	}
	return authority.NewSigner(cfg.AuthorityPrivateKey)
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (1000 transcripts)
		MaxCost:     1000,  // Maximum 1000 items in cache
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger, c cache.Cache) (storage.Storage, error) {
	var inner storage.Storage
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		inner = pgStorage
	} else {
		inner = storage.NewConsoleStorage(logger)
	}

	return storage.NewCachedStorage(inner, c, 0), nil
}

func setupTrialRunner(
	cfg *config.Config,
	logger *zap.Logger,
	archive trial.Archive,
	pendingStore *trial.Store,
) *trial.Runner {
	sources := make([]evidence.Source, 0, len(cfg.EvidenceSources))
	for _, sc := range cfg.EvidenceSources {
		sources = append(sources, evidence.NewHTTPSource(
			sc.Name, sc.BaseURL, cfg.EvidenceMaxItems, cfg.EvidenceTimeout, logger))
	}

	return trial.NewRunner(trial.Config{
		Aggregator: evidence.NewAggregator(logger),
		Sources:    sources,
		Advocates: advocate.NewRunner(advocate.Config{
			MaxTokens:   cfg.AdvocateYes.MaxTokens,
			Temperature: cfg.AdvocateYes.Temperature,
			Logger:      logger,
		}),
		Judge: judge.New(judge.Config{
			MaxTokens:   cfg.Judge.MaxTokens,
			Temperature: cfg.Judge.Temperature,
			Logger:      logger,
		}),
		ClientYes:   llm.NewOpenAIClient(cfg.AdvocateYes, logger),
		ClientNo:    llm.NewOpenAIClient(cfg.AdvocateNo, logger),
		ClientJudge: llm.NewOpenAIClient(cfg.Judge, logger),
		Archive:     archive,
		Store:       pendingStore,
		Timeout:     cfg.TrialTimeout,
		Logger:      logger,
	})
}

func setupBreaker(cfg *config.Config, logger *zap.Logger) (*circuitbreaker.TrialCircuitBreaker, error) {
	if !cfg.BreakerEnabled {
		logger.Info("circuit-breaker-disabled",
			zap.String("note", "trial runs will not be gated on failure history"))
		return nil, nil
	}

	return circuitbreaker.New(&circuitbreaker.Config{
		FailureThreshold: cfg.BreakerTripThreshold,
		SuccessThreshold: cfg.BreakerSuccessThreshold,
		Cooldown:         cfg.BreakerCooldown,
		Logger:           logger,
	})
}
