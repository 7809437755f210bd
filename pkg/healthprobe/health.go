// Package healthprobe serves liveness and readiness. Liveness only says the
// process is up; readiness additionally consults registered dependency
// probes, so a service whose storage or settlement path is down stops
// receiving traffic without the process restarting.
package healthprobe

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// Probe checks one dependency. A nil return means the dependency can serve.
type Probe func() error

// HealthChecker tracks startup readiness and dependency probes.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool

	mu     sync.RWMutex
	order  []string
	probes map[string]Probe
}

// New creates a checker with no probes; it reports not ready until SetReady.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		probes:    make(map[string]Probe),
	}
}

// SetReady marks startup as complete (or revokes it during shutdown).
// Readiness still requires every registered probe to pass.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Register adds a named dependency probe. Registering the same name again
// replaces the previous probe.
func (h *HealthChecker) Register(name string, probe Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.probes[name]; !exists {
		h.order = append(h.order, name)
	}
	h.probes[name] = probe
}

// HealthResponse is the body of both endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Message string            `json:"message,omitempty"`
	Failing map[string]string `json:"failing,omitempty"`
}

// Health returns the liveness handler. It answers 200 whenever the process
// can serve HTTP at all; dependency state is readiness' concern.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

// Ready returns the readiness handler: 200 once startup finished and every
// registered probe passes, 503 otherwise with the failing probes named.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeResponse(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Uptime:  time.Since(h.startTime).String(),
				Message: "application is starting",
			})
			return
		}

		failing := h.runProbes()
		if len(failing) > 0 {
			writeResponse(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Uptime:  time.Since(h.startTime).String(),
				Message: "dependency checks failed",
				Failing: failing,
			})
			return
		}

		writeResponse(w, http.StatusOK, HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

// runProbes runs every probe in registration order and collects failures.
func (h *HealthChecker) runProbes() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var failing map[string]string
	for _, name := range h.order {
		if err := h.probes[name](); err != nil {
			if failing == nil {
				failing = make(map[string]string)
			}
			failing[name] = err.Error()
		}
	}
	return failing
}

func writeResponse(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
