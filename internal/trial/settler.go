package trial

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/pkg/authority"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// ErrNoPendingDecision means no completed trial is waiting for the market.
var ErrNoPendingDecision = errors.New("no pending decision for market")

// Settler applies a pending trial decision to the ledger as the settlement
// authority. The pipeline itself never touches the ledger; this is the only
// bridge, and it crosses the trust boundary with a signature over the
// transcript hash.
type Settler struct {
	ledger *ledger.Ledger
	signer *authority.Signer
	store  *Store
	logger *zap.Logger
}

// NewSettler creates a settler.
func NewSettler(l *ledger.Ledger, signer *authority.Signer, store *Store, logger *zap.Logger) *Settler {
	return &Settler{ledger: l, signer: signer, store: store, logger: logger}
}

// Apply looks up the market's pending decision and finalizes the market
// accordingly. The pending entry is removed only after the ledger accepts
// the transition, so a failed apply can be retried.
func (s *Settler) Apply(marketID string) (types.SettlementDecision, error) {
	pending, ok := s.store.Get(marketID)
	if !ok {
		return types.SettlementDecision{}, ErrNoPendingDecision
	}

	sig, err := s.signer.Sign(pending.TranscriptHash)
	if err != nil {
		return types.SettlementDecision{}, fmt.Errorf("sign transcript hash: %w", err)
	}

	caller := s.signer.Address()

	if pending.Decision.Resolved() {
		err = s.ledger.Settle(marketID, caller,
			*pending.Decision.Verdict,
			pending.ScoreYes, pending.ScoreNo,
			pending.TranscriptHash, sig)
	} else {
		err = s.ledger.Escalate(marketID, caller, pending.TranscriptHash, sig)
	}
	if err != nil {
		return types.SettlementDecision{}, fmt.Errorf("apply decision: %w", err)
	}

	s.store.Delete(marketID)

	s.logger.Info("decision-applied",
		zap.String("market-id", marketID),
		zap.String("action", string(pending.Decision.Action)),
		zap.String("transcript-hash", pending.TranscriptHash.Hex()),
		zap.String("authority-signature", hex.EncodeToString(sig)))

	return pending.Decision, nil
}
