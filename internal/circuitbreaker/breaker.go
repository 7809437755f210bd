// Package circuitbreaker guards the automated settlement path. Repeated trial
// failures usually mean a provider or source outage; running more trials into
// the outage burns tokens and produces nothing, so the breaker trips and
// holds automated runs until the pipeline proves healthy again.
package circuitbreaker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// State is the breaker state.
type State string

const (
	// StateClosed admits trials normally.
	StateClosed State = "closed"
	// StateOpen rejects trials until the cooldown elapses.
	StateOpen State = "open"
	// StateHalfOpen admits probe trials after cooldown; successes close the
	// breaker, one failure re-opens it.
	StateHalfOpen State = "half_open"
)

// TrialCircuitBreaker trips after a run of consecutive trial failures and
// recovers through a half-open probe phase with hysteresis: closing again
// takes more consecutive successes than the single failure that re-opens it.
type TrialCircuitBreaker struct {
	allowing atomic.Bool // Lock-free read for hot paths

	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	logger           *zap.Logger

	mu           sync.Mutex
	state        State
	failures     int // Consecutive failures while closed
	successes    int // Consecutive successes while half-open
	openedAt     time.Time
	lastOutcome  time.Time
	now          func() time.Time
}

// Config holds circuit breaker configuration.
type Config struct {
	FailureThreshold int           // Consecutive failures that trip the breaker
	SuccessThreshold int           // Consecutive half-open successes that close it
	Cooldown         time.Duration // Open duration before probing resumes
	Logger           *zap.Logger
}

// Status is a point-in-time view for debugging and HTTP endpoints.
type Status struct {
	State                State     `json:"state"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	ConsecutiveSuccesses int       `json:"consecutive_successes"`
	OpenedAt             time.Time `json:"opened_at,omitempty"`
	LastOutcome          time.Time `json:"last_outcome,omitempty"`
}

// New creates a closed breaker.
func New(cfg *Config) (*TrialCircuitBreaker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.FailureThreshold <= 0 {
		return nil, fmt.Errorf("failure threshold must be positive")
	}
	if cfg.SuccessThreshold <= 0 {
		return nil, fmt.Errorf("success threshold must be positive")
	}
	if cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}

	b := &TrialCircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		cooldown:         cfg.Cooldown,
		logger:           cfg.Logger,
		state:            StateClosed,
		now:              time.Now,
	}
	b.allowing.Store(true)

	BreakerAllowing.Set(1)
	BreakerConsecutiveFailures.Set(0)

	return b, nil
}

// Allow reports whether a trial may run now. An open breaker whose cooldown
// has elapsed moves to half-open and admits the call as a probe.
func (b *TrialCircuitBreaker) Allow() bool {
	if b.allowing.Load() {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return b.allowing.Load()
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		BreakerRejectionsTotal.Inc()
		return false
	}

	b.transition(StateHalfOpen)
	b.successes = 0
	return true
}

// RecordSuccess feeds a completed trial into the breaker.
func (b *TrialCircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastOutcome = b.now()

	switch b.state {
	case StateClosed:
		b.failures = 0
		BreakerConsecutiveFailures.Set(0)
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.transition(StateClosed)
			b.failures = 0
			BreakerConsecutiveFailures.Set(0)
			b.logger.Info("circuit-breaker-closed",
				zap.Int("probe-successes", b.successes))
		}
	case StateOpen:
		// A success while open can only come from a manual run; ignore.
	}
}

// RecordFailure feeds a failed trial into the breaker.
func (b *TrialCircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastOutcome = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		BreakerConsecutiveFailures.Set(float64(b.failures))
		if b.failures >= b.failureThreshold {
			b.open()
		}
	case StateHalfOpen:
		// One failed probe re-opens immediately.
		b.open()
	case StateOpen:
	}
}

func (b *TrialCircuitBreaker) open() {
	b.transition(StateOpen)
	b.openedAt = b.now()
	b.logger.Warn("circuit-breaker-opened",
		zap.Int("consecutive-failures", b.failures),
		zap.Duration("cooldown", b.cooldown))
}

// transition updates state, the lock-free flag, and metrics. Callers hold mu.
func (b *TrialCircuitBreaker) transition(next State) {
	if b.state == next {
		return
	}
	b.state = next
	b.allowing.Store(next != StateOpen)
	BreakerStateChanges.Inc()
	if next == StateOpen {
		BreakerAllowing.Set(0)
	} else {
		BreakerAllowing.Set(1)
	}
}

// GetStatus returns the current breaker status.
func (b *TrialCircuitBreaker) GetStatus() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Status{
		State:                b.state,
		ConsecutiveFailures:  b.failures,
		ConsecutiveSuccesses: b.successes,
		OpenedAt:             b.openedAt,
		LastOutcome:          b.lastOutcome,
	}
}
