// Package app wires the components together and owns their lifecycle.
package app

import (
	"context"
	"sync"

	"github.com/openverdict/tribunal/internal/circuitbreaker"
	"github.com/openverdict/tribunal/internal/events"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/internal/storage"
	"github.com/openverdict/tribunal/internal/trial"
	"github.com/openverdict/tribunal/pkg/cache"
	"github.com/openverdict/tribunal/pkg/config"
	"github.com/openverdict/tribunal/pkg/healthprobe"
	"github.com/openverdict/tribunal/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	ledger        *ledger.Ledger
	trialRunner   *trial.Runner
	settler       *trial.Settler
	breaker       *circuitbreaker.TrialCircuitBreaker
	bus           *events.Bus
	storage       storage.Storage
	cache         cache.Cache
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
