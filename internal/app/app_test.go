package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openverdict/tribunal/pkg/config"
	"go.uber.org/zap"
)

const testAuthorityKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("ADVOCATE_YES_MODEL", "model-alpha")
	t.Setenv("ADVOCATE_NO_MODEL", "model-beta")
	t.Setenv("JUDGE_MODEL", "model-gamma")
	t.Setenv("AUTHORITY_PRIVATE_KEY", testAuthorityKey)
	t.Setenv("HTTP_PORT", "0")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	return cfg
}

func TestNewWiresComponents(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := a.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}()

	if a.ledger == nil || a.trialRunner == nil || a.settler == nil || a.httpServer == nil {
		t.Error("core components should be wired")
	}
	if a.breaker == nil {
		t.Error("breaker should be enabled by default")
	}
}

func TestNewWithBreakerDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.BreakerEnabled = false

	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown() //nolint:errcheck

	if a.breaker != nil {
		t.Error("breaker should be nil when disabled")
	}
}

func TestReadinessFollowsBreakerState(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown() //nolint:errcheck

	a.healthChecker.SetReady(true)

	readiness := func() int {
		rec := httptest.NewRecorder()
		a.healthChecker.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		return rec.Code
	}

	if code := readiness(); code != http.StatusOK {
		t.Fatalf("readiness with closed breaker = %d, want %d", code, http.StatusOK)
	}

	for i := 0; i < cfg.BreakerTripThreshold; i++ {
		a.breaker.RecordFailure()
	}

	if code := readiness(); code != http.StatusServiceUnavailable {
		t.Errorf("readiness with open breaker = %d, want %d", code, http.StatusServiceUnavailable)
	}
}

func TestNewRequiresAuthorityKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthorityPrivateKey = ""

	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Fatal("New() should fail without an authority key")
	}
}

func TestNewRejectsMalformedAuthorityKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthorityPrivateKey = "not-a-key"

	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Fatal("New() should fail on a malformed authority key")
	}
}
