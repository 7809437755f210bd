package httpserver

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/internal/circuitbreaker"
	"github.com/openverdict/tribunal/internal/events"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/internal/storage"
	"github.com/openverdict/tribunal/internal/trial"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// apiHandler holds the components the API operates on.
type apiHandler struct {
	ledger  *ledger.Ledger
	runner  *trial.Runner
	settler *trial.Settler
	breaker *circuitbreaker.TrialCircuitBreaker
	storage storage.Storage
	bus     *events.Bus
	logger  *zap.Logger
}

func newAPIHandler(cfg *Config) *apiHandler {
	return &apiHandler{
		ledger:  cfg.Ledger,
		runner:  cfg.TrialRunner,
		settler: cfg.Settler,
		breaker: cfg.Breaker,
		storage: cfg.Storage,
		bus:     cfg.Bus,
		logger:  cfg.Logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type createMarketRequest struct {
	Question types.MarketQuestion `json:"question"`
	Creator  string               `json:"creator"`
	Deposit  string               `json:"deposit,omitempty"`
}

func (h *apiHandler) handleCreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	creator, ok := parseAddress(req.Creator)
	if !ok {
		h.writeError(w, "invalid creator address", http.StatusBadRequest)
		return
	}

	deposit := new(big.Int)
	if req.Deposit != "" {
		if _, ok := deposit.SetString(req.Deposit, 10); !ok {
			h.writeError(w, "invalid deposit amount", http.StatusBadRequest)
			return
		}
	}

	snap, err := h.ledger.CreateMarket(req.Question, creator, deposit)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, snap)
}

func (h *apiHandler) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ledger.ListMarkets())
}

func (h *apiHandler) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ledger.GetMarket(chi.URLParam(r, "id"))
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type takePositionRequest struct {
	Participant string     `json:"participant"`
	Side        types.Side `json:"side"`
	Amount      string     `json:"amount"`
}

func (h *apiHandler) handleTakePosition(w http.ResponseWriter, r *http.Request) {
	var req takePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	participant, ok := parseAddress(req.Participant)
	if !ok {
		h.writeError(w, "invalid participant address", http.StatusBadRequest)
		return
	}

	amount := new(big.Int)
	if _, ok := amount.SetString(req.Amount, 10); !ok {
		h.writeError(w, "invalid stake amount", http.StatusBadRequest)
		return
	}

	marketID := chi.URLParam(r, "id")
	if err := h.ledger.TakePosition(marketID, participant, req.Side, amount); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	snap, err := h.ledger.GetMarket(marketID)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (h *apiHandler) handleRequestSettlement(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	caller, ok := parseAddress(req.Caller)
	if !ok {
		h.writeError(w, "invalid caller address", http.StatusBadRequest)
		return
	}

	marketID := chi.URLParam(r, "id")
	if err := h.ledger.RequestSettlement(marketID, caller); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	snap, err := h.ledger.GetMarket(marketID)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type runTrialResponse struct {
	MarketID       string                   `json:"market_id"`
	Decision       types.SettlementDecision `json:"decision"`
	TranscriptHash common.Hash              `json:"transcript_hash"`
	ExecutedAt     time.Time                `json:"executed_at"`
}

// handleRunTrial runs the full pipeline for a market awaiting settlement and
// applies the resulting decision. This endpoint is the hook an external
// trigger calls once the deadline has passed.
func (h *apiHandler) handleRunTrial(w http.ResponseWriter, r *http.Request) {
	if h.breaker != nil && !h.breaker.Allow() {
		h.writeError(w, "trial runs suspended by circuit breaker", http.StatusServiceUnavailable)
		return
	}

	marketID := chi.URLParam(r, "id")

	snap, err := h.ledger.GetMarket(marketID)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	if snap.Status != ledger.StatusSettlementRequested {
		h.writeError(w, "market is not awaiting settlement", http.StatusConflict)
		return
	}

	result, err := h.runner.Run(r.Context(), marketID, &snap.Question)
	if err != nil {
		if h.breaker != nil {
			h.breaker.RecordFailure()
		}
		h.logger.Error("trial-run-failed",
			zap.String("market-id", marketID),
			zap.Error(err))
		h.writeError(w, "trial failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if h.breaker != nil {
		h.breaker.RecordSuccess()
	}

	if _, err := h.settler.Apply(marketID); err != nil {
		h.writeError(w, "apply decision: "+err.Error(), http.StatusConflict)
		return
	}

	h.writeJSON(w, http.StatusOK, runTrialResponse{
		MarketID:       marketID,
		Decision:       result.Decision,
		TranscriptHash: result.Hash,
		ExecutedAt:     result.Transcript.ExecutedAt,
	})
}

type claimRequest struct {
	Participant string `json:"participant"`
}

type claimResponse struct {
	MarketID    string `json:"market_id"`
	Participant string `json:"participant"`
	Amount      string `json:"amount"`
}

func (h *apiHandler) handleClaimWinnings(w http.ResponseWriter, r *http.Request) {
	h.handleClaim(w, r, h.ledger.ClaimWinnings)
}

func (h *apiHandler) handleClaimRefund(w http.ResponseWriter, r *http.Request) {
	h.handleClaim(w, r, h.ledger.ClaimRefund)
}

func (h *apiHandler) handleClaim(
	w http.ResponseWriter,
	r *http.Request,
	claim func(ctx context.Context, marketID string, participant common.Address) (*big.Int, error),
) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	participant, ok := parseAddress(req.Participant)
	if !ok {
		h.writeError(w, "invalid participant address", http.StatusBadRequest)
		return
	}

	marketID := chi.URLParam(r, "id")
	amount, err := claim(r.Context(), marketID, participant)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, claimResponse{
		MarketID:    marketID,
		Participant: participant.Hex(),
		Amount:      amount.String(),
	})
}

func (h *apiHandler) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "hash")
	if len(raw) != 66 || raw[:2] != "0x" {
		h.writeError(w, "invalid transcript hash", http.StatusBadRequest)
		return
	}

	transcript, err := h.storage.GetTranscript(r.Context(), common.HexToHash(raw))
	if errors.Is(err, storage.ErrTranscriptNotFound) {
		h.writeError(w, "transcript not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, "load transcript: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, transcript)
}

func (h *apiHandler) handleBreakerStatus(w http.ResponseWriter, r *http.Request) {
	if h.breaker == nil {
		h.writeError(w, "circuit breaker disabled", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, h.breaker.GetStatus())
}

func parseAddress(raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// writeLedgerError maps ledger sentinel errors onto HTTP statuses.
func (h *apiHandler) writeLedgerError(w http.ResponseWriter, err error) {
	status := http.StatusConflict
	switch {
	case errors.Is(err, ledger.ErrMarketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrZeroAmount),
		errors.Is(err, ledger.ErrDeadlineInPast),
		errors.Is(err, ledger.ErrEmptyTranscriptHash):
		status = http.StatusBadRequest
	}

	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		status = http.StatusBadRequest
	}

	h.writeError(w, err.Error(), status)
}

func (h *apiHandler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *apiHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
