package trial

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openverdict/tribunal/pkg/cache"
	"github.com/openverdict/tribunal/pkg/types"
)

// PendingDecision is the output of a finished trial awaiting application to
// the ledger: the decision plus the transcript hash that anchors it.
type PendingDecision struct {
	MarketID       string                   `json:"market_id"`
	Decision       types.SettlementDecision `json:"decision"`
	ScoreYes       float64                  `json:"score_yes"`
	ScoreNo        float64                  `json:"score_no"`
	TranscriptHash common.Hash              `json:"transcript_hash"`
	CompletedAt    time.Time                `json:"completed_at"`
}

// Store holds pending decisions keyed by market ID. It is passed explicitly
// to every component that reads or writes it; there is no package-level
// instance.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a pending-decision store backed by the given cache.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Put records the decision for a market, replacing any earlier entry.
func (s *Store) Put(decision PendingDecision) {
	s.cache.Set(pendingKey(decision.MarketID), decision, s.ttl)
}

// Get returns the pending decision for a market, if one exists.
func (s *Store) Get(marketID string) (PendingDecision, bool) {
	v, ok := s.cache.Get(pendingKey(marketID))
	if !ok {
		return PendingDecision{}, false
	}
	decision, ok := v.(PendingDecision)
	return decision, ok
}

// Delete removes a market's pending decision once it has been applied.
func (s *Store) Delete(marketID string) {
	s.cache.Delete(pendingKey(marketID))
}

func pendingKey(marketID string) string {
	return "pending-decision:" + marketID
}
