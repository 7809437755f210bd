// Package ledger is the authoritative settlement state machine: market
// lifecycle, stake bookkeeping, payout and refund arithmetic, and claim
// idempotency. Operations are sequenced by a single lock per ledger, and
// every transition is precondition-guarded so concurrent callers racing the
// same operation cannot both succeed.
package ledger

import (
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/openverdict/tribunal/pkg/authority"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// Ledger holds all markets and positions.
type Ledger struct {
	mu        sync.Mutex
	markets   map[string]*market
	authority common.Address
	treasury  Treasury
	logger    *zap.Logger
	onEvent   EventSink
	now       func() time.Time
}

// Config holds ledger configuration.
type Config struct {
	Authority common.Address // Only this address may settle or escalate
	Treasury  Treasury
	Logger    *zap.Logger
	OnEvent   EventSink // Optional; receives every transition
}

// New creates an empty ledger.
func New(cfg Config) *Ledger {
	return &Ledger{
		markets:   make(map[string]*market),
		authority: cfg.Authority,
		treasury:  cfg.Treasury,
		logger:    cfg.Logger,
		onEvent:   cfg.OnEvent,
		now:       time.Now,
	}
}

// CreateMarket allocates a new open market for the question. The rubric is
// committed to the ledger as a hash only.
func (l *Ledger) CreateMarket(question types.MarketQuestion, creator common.Address, deposit *big.Int) (MarketSnapshot, error) {
	err := question.Validate()
	if err != nil {
		return MarketSnapshot{}, err
	}

	if deposit == nil {
		deposit = new(big.Int)
	}

	l.mu.Lock()

	if !question.SettlementDeadline.After(l.now()) {
		l.mu.Unlock()
		return MarketSnapshot{}, ErrDeadlineInPast
	}

	m := &market{
		id:              uuid.NewString(),
		question:        question,
		rubricHash:      question.Rubric.Hash(),
		deadline:        question.SettlementDeadline,
		status:          StatusOpen,
		outcome:         OutcomeNone,
		yesPool:         new(big.Int),
		noPool:          new(big.Int),
		creator:         creator,
		creationDeposit: new(big.Int).Set(deposit),
		createdAt:       l.now().UTC(),
		positions:       make(map[common.Address]*position),
	}
	l.markets[m.id] = m
	snapshot := m.snapshot()

	l.mu.Unlock()

	MarketsCreatedTotal.Inc()
	l.logger.Info("market-created",
		zap.String("market-id", m.id),
		zap.String("creator", creator.Hex()),
		zap.Time("deadline", m.deadline))

	l.emit(Event{Type: EventMarketCreated, MarketID: m.id, Participant: &creator})

	return snapshot, nil
}

// TakePosition accumulates a stake on one side of an open market.
func (l *Ledger) TakePosition(marketID string, participant common.Address, side types.Side, amount *big.Int) error {
	if !side.Valid() {
		return &types.ValidationError{Field: "side", Message: "side must be YES or NO"}
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	l.mu.Lock()

	m, ok := l.markets[marketID]
	if !ok {
		l.mu.Unlock()
		return ErrMarketNotFound
	}
	if m.status != StatusOpen {
		l.mu.Unlock()
		return ErrMarketNotOpen
	}
	if !l.now().Before(m.deadline) {
		l.mu.Unlock()
		return ErrDeadlinePassed
	}

	pos, ok := m.positions[participant]
	if !ok {
		pos = newPosition()
		m.positions[participant] = pos
	}
	pos.onSide(side).Add(pos.onSide(side), amount)

	if side == types.SideYes {
		m.yesPool.Add(m.yesPool, amount)
	} else {
		m.noPool.Add(m.noPool, amount)
	}

	l.mu.Unlock()

	PositionsTakenTotal.WithLabelValues(string(side)).Inc()
	l.logger.Debug("position-taken",
		zap.String("market-id", marketID),
		zap.String("participant", participant.Hex()),
		zap.String("side", string(side)),
		zap.String("amount", amount.String()))

	l.emit(Event{
		Type:        EventPositionTaken,
		MarketID:    marketID,
		Participant: &participant,
		Side:        side,
		Amount:      new(big.Int).Set(amount),
	})

	return nil
}

// RequestSettlement moves an open market past its deadline into
// SettlementRequested. Callable by anyone.
func (l *Ledger) RequestSettlement(marketID string, caller common.Address) error {
	l.mu.Lock()

	m, ok := l.markets[marketID]
	if !ok {
		l.mu.Unlock()
		return ErrMarketNotFound
	}
	if m.status != StatusOpen {
		l.mu.Unlock()
		return ErrMarketNotOpen
	}
	if l.now().Before(m.deadline) {
		l.mu.Unlock()
		return ErrDeadlineNotReached
	}

	m.status = StatusSettlementRequested

	l.mu.Unlock()

	l.logger.Info("settlement-requested",
		zap.String("market-id", marketID),
		zap.String("caller", caller.Hex()))

	l.emit(Event{Type: EventSettlementRequested, MarketID: marketID, Participant: &caller})

	return nil
}

// Settle finalizes a market with a verdict and the adjudication scores that
// produced it. Authority-only; one-shot. The signature must be the
// authority's signature over the transcript hash; it is retained on the
// market and on the emitted event so the settlement stays auditable after
// the fact.
func (l *Ledger) Settle(marketID string, caller common.Address, verdict types.Side, scoreYes, scoreNo float64, transcriptHash common.Hash, signature []byte) error {
	if caller != l.authority {
		return ErrUnauthorized
	}
	if !verdict.Valid() {
		return &types.ValidationError{Field: "verdict", Message: "verdict must be YES or NO"}
	}
	if transcriptHash == (common.Hash{}) {
		return ErrEmptyTranscriptHash
	}
	if !authority.Verify(l.authority, transcriptHash, signature) {
		return ErrBadSignature
	}

	l.mu.Lock()

	m, ok := l.markets[marketID]
	if !ok {
		l.mu.Unlock()
		return ErrMarketNotFound
	}
	if m.status != StatusSettlementRequested {
		l.mu.Unlock()
		return ErrNotRequested
	}

	m.status = StatusResolved
	if verdict == types.SideYes {
		m.outcome = OutcomeYes
	} else {
		m.outcome = OutcomeNo
	}
	m.scoreYes = scoreYes
	m.scoreNo = scoreNo
	m.transcriptHash = transcriptHash
	m.signature = append([]byte(nil), signature...)
	outcome := m.outcome

	l.mu.Unlock()

	MarketsSettledTotal.WithLabelValues(string(outcome)).Inc()
	l.logger.Info("market-resolved",
		zap.String("market-id", marketID),
		zap.String("outcome", string(outcome)),
		zap.String("transcript-hash", transcriptHash.Hex()))

	l.emit(Event{
		Type:           EventMarketResolved,
		MarketID:       marketID,
		Outcome:        outcome,
		TranscriptHash: &transcriptHash,
		Signature:      append([]byte(nil), signature...),
	})

	return nil
}

// Escalate finalizes a market without a verdict, opening the refund path.
// Authority-only; one-shot. Signed like Settle.
func (l *Ledger) Escalate(marketID string, caller common.Address, transcriptHash common.Hash, signature []byte) error {
	if caller != l.authority {
		return ErrUnauthorized
	}
	if transcriptHash == (common.Hash{}) {
		return ErrEmptyTranscriptHash
	}
	if !authority.Verify(l.authority, transcriptHash, signature) {
		return ErrBadSignature
	}

	l.mu.Lock()

	m, ok := l.markets[marketID]
	if !ok {
		l.mu.Unlock()
		return ErrMarketNotFound
	}
	if m.status != StatusSettlementRequested {
		l.mu.Unlock()
		return ErrNotRequested
	}

	m.status = StatusEscalated
	m.transcriptHash = transcriptHash
	m.signature = append([]byte(nil), signature...)

	l.mu.Unlock()

	MarketsEscalatedTotal.Inc()
	l.logger.Info("market-escalated",
		zap.String("market-id", marketID),
		zap.String("transcript-hash", transcriptHash.Hex()))

	l.emit(Event{
		Type:           EventMarketEscalated,
		MarketID:       marketID,
		TranscriptHash: &transcriptHash,
		Signature:      append([]byte(nil), signature...),
	})

	return nil
}

// GetMarket returns a snapshot of one market.
func (l *Ledger) GetMarket(marketID string) (MarketSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.markets[marketID]
	if !ok {
		return MarketSnapshot{}, ErrMarketNotFound
	}
	return m.snapshot(), nil
}

// ListMarkets returns snapshots of every market, newest first.
func (l *Ledger) ListMarkets() []MarketSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]MarketSnapshot, 0, len(l.markets))
	for _, m := range l.markets {
		out = append(out, m.snapshot())
	}
	sortSnapshotsByCreation(out)
	return out
}

// Position returns a participant's current stake on both sides.
func (l *Ledger) Position(marketID string, participant common.Address) (yes, no *big.Int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.markets[marketID]
	if !ok {
		return nil, nil, ErrMarketNotFound
	}

	pos, ok := m.positions[participant]
	if !ok {
		return new(big.Int), new(big.Int), nil
	}
	return new(big.Int).Set(pos.yes), new(big.Int).Set(pos.no), nil
}

func sortSnapshotsByCreation(snapshots []MarketSnapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
}
