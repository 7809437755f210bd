package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/internal/advocate"
	"github.com/openverdict/tribunal/internal/circuitbreaker"
	"github.com/openverdict/tribunal/internal/events"
	"github.com/openverdict/tribunal/internal/evidence"
	"github.com/openverdict/tribunal/internal/judge"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/internal/llm"
	"github.com/openverdict/tribunal/internal/storage"
	"github.com/openverdict/tribunal/internal/testutil"
	"github.com/openverdict/tribunal/internal/trial"
	"github.com/openverdict/tribunal/pkg/authority"
	"github.com/openverdict/tribunal/pkg/cache"
	"github.com/openverdict/tribunal/pkg/healthprobe"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

const testAuthorityKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

// fixedSource serves a canned evidence bundle.
type fixedSource struct {
	items []types.EvidenceItem
}

func (s *fixedSource) Name() string { return "fixed" }

func (s *fixedSource) Fetch(context.Context, string) ([]types.EvidenceItem, error) {
	return s.items, nil
}

type serverHarness struct {
	server  *Server
	ledger  *ledger.Ledger
	breaker *circuitbreaker.TrialCircuitBreaker
	mockYes *testutil.MockLLM
	mockNo  *testutil.MockLLM
	mockJdg *testutil.MockLLM
}

func newServerHarness(t *testing.T) *serverHarness {
	t.Helper()

	logger := zap.NewNop()

	signer, err := authority.NewSigner(testAuthorityKey)
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}

	bus := events.NewBus(16, logger)
	t.Cleanup(bus.Close)

	store := storage.NewConsoleStorage(logger)

	l := ledger.New(ledger.Config{
		Authority: signer.Address(),
		Treasury:  ledger.NewPaperTreasury(logger),
		Logger:    logger,
		OnEvent:   bus.Publish,
	})

	breaker, err := circuitbreaker.New(&circuitbreaker.Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         time.Minute,
		Logger:           logger,
	})
	if err != nil {
		t.Fatalf("circuitbreaker.New() error = %v", err)
	}

	h := &serverHarness{
		ledger:  l,
		breaker: breaker,
		mockYes: testutil.NewMockLLM("model-yes"),
		mockNo:  testutil.NewMockLLM("model-no"),
		mockJdg: testutil.NewMockLLM("model-judge"),
	}

	pendingStore := trial.NewStore(cache.NewMemoryCache(), time.Hour)
	bundle := testutil.CreateTestBundle("report-a", "report-b")
	runner := trial.NewRunner(trial.Config{
		Aggregator:  evidence.NewAggregator(logger),
		Sources:     []evidence.Source{&fixedSource{items: bundle.Items}},
		Advocates:   advocate.NewRunner(advocate.Config{MaxTokens: 2048, Temperature: 0.7, Logger: logger}),
		Judge:       judge.New(judge.Config{MaxTokens: 2048, Temperature: 0.2, Logger: logger}),
		ClientYes:   h.mockYes,
		ClientNo:    h.mockNo,
		ClientJudge: h.mockJdg,
		Archive:     store,
		Store:       pendingStore,
		Timeout:     time.Minute,
		Logger:      logger,
	})

	healthChecker := healthprobe.New()
	healthChecker.SetReady(true)

	h.server = New(&Config{
		Port:          "0",
		Logger:        logger,
		HealthChecker: healthChecker,
		Ledger:        l,
		TrialRunner:   runner,
		Settler:       trial.NewSettler(l, signer, pendingStore, logger),
		Breaker:       breaker,
		Storage:       store,
		Bus:           bus,
	})

	return h
}

func (h *serverHarness) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.server.server.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestHealthAndReadyEndpoints(t *testing.T) {
	h := newServerHarness(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		w := h.do(t, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
	}
}

func TestCreateMarketEndpoint(t *testing.T) {
	h := newServerHarness(t)

	question := testutil.CreateTestQuestion("q-1", "Did the merger close before Q3?")
	w := h.do(t, http.MethodPost, "/api/markets", createMarketRequest{
		Question: *question,
		Creator:  "0x0000000000000000000000000000000000000001",
		Deposit:  "100",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var snap ledger.MarketSnapshot
	decodeBody(t, w, &snap)
	if snap.Status != ledger.StatusOpen {
		t.Errorf("status = %q, want open", snap.Status)
	}
	if snap.ID == "" {
		t.Error("market id should be assigned")
	}
}

func TestCreateMarketEndpointRejectsBadInput(t *testing.T) {
	h := newServerHarness(t)

	question := testutil.CreateTestQuestion("q-1", "Did it happen?")

	tests := []struct {
		name string
		req  createMarketRequest
		want int
	}{
		{
			name: "bad creator address",
			req:  createMarketRequest{Question: *question, Creator: "not-an-address"},
			want: http.StatusBadRequest,
		},
		{
			name: "bad deposit",
			req:  createMarketRequest{Question: *question, Creator: "0x0000000000000000000000000000000000000001", Deposit: "ten"},
			want: http.StatusBadRequest,
		},
		{
			name: "invalid rubric",
			req: createMarketRequest{
				Question: types.MarketQuestion{ID: "q-2", Question: "?", SettlementDeadline: time.Now().Add(time.Hour)},
				Creator:  "0x0000000000000000000000000000000000000001",
			},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/api/markets", tt.req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetMarketNotFound(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodGet, "/api/markets/no-such-market", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var errResp ErrorResponse
	decodeBody(t, w, &errResp)
	if errResp.Error == "" {
		t.Error("error response should carry a message")
	}
}

func TestFullSettlementFlow(t *testing.T) {
	h := newServerHarness(t)

	h.mockYes.Respond(llm.RoleAdvocateYes, testutil.MarshalJSON(testutil.CreateTestArgument(types.SideYes, "report-a")))
	h.mockNo.Respond(llm.RoleAdvocateNo, testutil.MarshalJSON(testutil.CreateTestArgument(types.SideNo, "report-b")))
	h.mockJdg.Respond(llm.RoleJudge, testutil.MarshalJSON(testutil.CreateTestRuling(types.SideYes, 78, 45)))

	question := testutil.CreateTestQuestion("q-1", "Did the merger close before Q3?")
	question.SettlementDeadline = time.Now().Add(50 * time.Millisecond)

	w := h.do(t, http.MethodPost, "/api/markets", createMarketRequest{
		Question: *question,
		Creator:  "0x0000000000000000000000000000000000000001",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create market status = %d: %s", w.Code, w.Body.String())
	}
	var snap ledger.MarketSnapshot
	decodeBody(t, w, &snap)
	marketID := snap.ID

	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/positions", takePositionRequest{
		Participant: "0x0000000000000000000000000000000000000002",
		Side:        types.SideYes,
		Amount:      "10",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("take position status = %d: %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/positions", takePositionRequest{
		Participant: "0x0000000000000000000000000000000000000003",
		Side:        types.SideNo,
		Amount:      "20",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("take position status = %d: %s", w.Code, w.Body.String())
	}

	// Trial before the deadline is rejected at request-settlement.
	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/request-settlement", callerRequest{
		Caller: "0x0000000000000000000000000000000000000009",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("early request-settlement status = %d, want 409", w.Code)
	}

	time.Sleep(80 * time.Millisecond)

	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/request-settlement", callerRequest{
		Caller: "0x0000000000000000000000000000000000000009",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("request-settlement status = %d: %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/run-trial", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("run-trial status = %d: %s", w.Code, w.Body.String())
	}

	var trialResp runTrialResponse
	decodeBody(t, w, &trialResp)
	if trialResp.Decision.Action != types.ActionResolve {
		t.Errorf("decision action = %q, want RESOLVE", trialResp.Decision.Action)
	}
	if trialResp.TranscriptHash == (common.Hash{}) {
		t.Error("transcript hash should be set")
	}

	w = h.do(t, http.MethodGet, "/api/markets/"+marketID, nil)
	decodeBody(t, w, &snap)
	if snap.Status != ledger.StatusResolved {
		t.Fatalf("market status = %q, want resolved", snap.Status)
	}
	if snap.Outcome != ledger.OutcomeYes {
		t.Errorf("outcome = %q, want yes", snap.Outcome)
	}

	// The archived transcript is retrievable by its hash.
	w = h.do(t, http.MethodGet, "/api/transcripts/"+trialResp.TranscriptHash.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get transcript status = %d: %s", w.Code, w.Body.String())
	}

	// The sole YES staker takes the whole pool.
	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/claims/winnings", claimRequest{
		Participant: "0x0000000000000000000000000000000000000002",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("claim status = %d: %s", w.Code, w.Body.String())
	}
	var claim claimResponse
	decodeBody(t, w, &claim)
	if claim.Amount != "30" {
		t.Errorf("payout = %s, want 30", claim.Amount)
	}

	// Second claim is rejected.
	w = h.do(t, http.MethodPost, "/api/markets/"+marketID+"/claims/winnings", claimRequest{
		Participant: "0x0000000000000000000000000000000000000002",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("double claim status = %d, want 409", w.Code)
	}
}

func TestRunTrialRejectedByBreaker(t *testing.T) {
	h := newServerHarness(t)

	for i := 0; i < 3; i++ {
		h.breaker.RecordFailure()
	}

	w := h.do(t, http.MethodPost, "/api/markets/any/run-trial", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestRunTrialRequiresSettlementRequested(t *testing.T) {
	h := newServerHarness(t)

	question := testutil.CreateTestQuestion("q-1", "Did it happen?")
	w := h.do(t, http.MethodPost, "/api/markets", createMarketRequest{
		Question: *question,
		Creator:  "0x0000000000000000000000000000000000000001",
	})
	var snap ledger.MarketSnapshot
	decodeBody(t, w, &snap)

	w = h.do(t, http.MethodPost, "/api/markets/"+snap.ID+"/run-trial", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for an open market", w.Code)
	}
}

func TestGetTranscriptBadHash(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodGet, "/api/transcripts/nothash", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = h.do(t, http.MethodGet, "/api/transcripts/"+common.HexToHash("0x1").Hex(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBreakerStatusEndpoint(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodGet, "/api/breaker", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var status circuitbreaker.Status
	decodeBody(t, w, &status)
	if status.State != circuitbreaker.StateClosed {
		t.Errorf("state = %q, want closed", status.State)
	}
}

func TestServerStartAndShutdown(t *testing.T) {
	h := newServerHarness(t)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- h.server.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverDone:
		if err != nil {
			t.Errorf("Start() returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after shutdown")
	}
}

func TestRouteNotFound(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodGet, "/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
