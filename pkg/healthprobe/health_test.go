package healthprobe

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func probeEndpoint(t *testing.T, handler http.HandlerFunc) (int, HealthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, resp
}

func TestHealthAlwaysServes(t *testing.T) {
	checker := New()

	// Liveness ignores readiness and probes entirely.
	checker.Register("storage", func() error { return errors.New("down") })

	code, resp := probeEndpoint(t, checker.Health())
	if code != http.StatusOK {
		t.Errorf("status code = %d, want %d", code, http.StatusOK)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Uptime == "" {
		t.Error("uptime should be reported")
	}
}

func TestReadyDuringStartup(t *testing.T) {
	checker := New()

	code, resp := probeEndpoint(t, checker.Ready())
	if code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if resp.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", resp.Status)
	}
	if resp.Message != "application is starting" {
		t.Errorf("message = %q, want startup message", resp.Message)
	}
}

func TestReadyAfterStartup(t *testing.T) {
	checker := New()
	checker.SetReady(true)

	code, resp := probeEndpoint(t, checker.Ready())
	if code != http.StatusOK {
		t.Errorf("status code = %d, want %d", code, http.StatusOK)
	}
	if resp.Status != "ready" {
		t.Errorf("status = %q, want ready", resp.Status)
	}
}

func TestReadyGatesOnDependencyProbes(t *testing.T) {
	checker := New()
	checker.SetReady(true)

	storageErr := errors.New("connection refused")
	storageDown := true
	checker.Register("storage", func() error {
		if storageDown {
			return storageErr
		}
		return nil
	})
	checker.Register("settlement", func() error { return nil })

	code, resp := probeEndpoint(t, checker.Ready())
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want %d while storage is down", code, http.StatusServiceUnavailable)
	}
	if got := resp.Failing["storage"]; got != storageErr.Error() {
		t.Errorf("failing[storage] = %q, want %q", got, storageErr.Error())
	}
	if _, listed := resp.Failing["settlement"]; listed {
		t.Error("passing probe should not be listed as failing")
	}

	// The same checker recovers when the dependency does.
	storageDown = false
	code, resp = probeEndpoint(t, checker.Ready())
	if code != http.StatusOK {
		t.Errorf("status code after recovery = %d, want %d", code, http.StatusOK)
	}
	if len(resp.Failing) != 0 {
		t.Errorf("failing = %v, want empty after recovery", resp.Failing)
	}
}

func TestReadyListsEveryFailingProbe(t *testing.T) {
	checker := New()
	checker.SetReady(true)
	checker.Register("storage", func() error { return errors.New("down") })
	checker.Register("breaker", func() error { return errors.New("open") })

	_, resp := probeEndpoint(t, checker.Ready())
	if len(resp.Failing) != 2 {
		t.Fatalf("failing probes = %d, want 2: %v", len(resp.Failing), resp.Failing)
	}
}

func TestRegisterReplacesProbe(t *testing.T) {
	checker := New()
	checker.SetReady(true)
	checker.Register("storage", func() error { return errors.New("down") })
	checker.Register("storage", func() error { return nil })

	code, _ := probeEndpoint(t, checker.Ready())
	if code != http.StatusOK {
		t.Errorf("status code = %d, want %d after probe replacement", code, http.StatusOK)
	}
}

func TestSetReadyRevocation(t *testing.T) {
	checker := New()
	checker.SetReady(true)
	checker.SetReady(false)

	code, _ := probeEndpoint(t, checker.Ready())
	if code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want %d after readiness revoked", code, http.StatusServiceUnavailable)
	}
}
