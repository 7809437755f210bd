package ledger

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/openverdict/tribunal/pkg/types"
)

// EventType names a ledger transition. Every externally observable state
// change emits exactly one event, so monitors can reconstruct market history
// from the event log alone.
type EventType string

const (
	EventMarketCreated       EventType = "market_created"
	EventPositionTaken       EventType = "position_taken"
	EventSettlementRequested EventType = "settlement_requested"
	EventMarketResolved      EventType = "market_resolved"
	EventMarketEscalated     EventType = "market_escalated"
	EventWinningsClaimed     EventType = "winnings_claimed"
	EventRefundClaimed       EventType = "refund_claimed"
)

// Event is one ledger transition record.
type Event struct {
	ID             string          `json:"id"`
	Type           EventType       `json:"type"`
	MarketID       string          `json:"market_id"`
	At             time.Time       `json:"at"`
	Participant    *common.Address `json:"participant,omitempty"`
	Side           types.Side      `json:"side,omitempty"`
	Amount         *big.Int        `json:"amount,omitempty"`
	Outcome        Outcome         `json:"outcome,omitempty"`
	TranscriptHash *common.Hash    `json:"transcript_hash,omitempty"`
	Signature      hexutil.Bytes   `json:"authority_signature,omitempty"`
}

// EventSink receives every emitted ledger event. Sinks must not call back
// into the ledger.
type EventSink func(Event)

func (l *Ledger) emit(event Event) {
	event.ID = uuid.NewString()
	event.At = l.now().UTC()

	EventsEmittedTotal.WithLabelValues(string(event.Type)).Inc()

	if l.onEvent != nil {
		l.onEvent(event)
	}
}
