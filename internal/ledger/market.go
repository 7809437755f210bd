package ledger

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/openverdict/tribunal/pkg/types"
)

// MarketStatus is the market lifecycle state. Transitions move strictly
// forward along Open -> SettlementRequested -> {Resolved | Escalated}; no
// other edges exist.
type MarketStatus string

const (
	StatusOpen                MarketStatus = "open"
	StatusSettlementRequested MarketStatus = "settlement_requested"
	StatusResolved            MarketStatus = "resolved"
	StatusEscalated           MarketStatus = "escalated"
)

// Outcome is the settled outcome of a market.
type Outcome string

const (
	OutcomeNone Outcome = "none"
	OutcomeYes  Outcome = "yes"
	OutcomeNo   Outcome = "no"
)

// market is the ledger's internal market record. Never deleted; a settled
// market is a historical record.
type market struct {
	id              string
	question        types.MarketQuestion
	rubricHash      common.Hash
	deadline        time.Time
	status          MarketStatus
	outcome         Outcome
	yesPool         *big.Int
	noPool          *big.Int
	scoreYes        float64
	scoreNo         float64
	transcriptHash  common.Hash
	signature       []byte
	creator         common.Address
	creationDeposit *big.Int
	createdAt       time.Time

	// positions accumulates stake per participant per side; an entry is
	// zeroed exactly once by a successful claim.
	positions map[common.Address]*position
}

type position struct {
	yes *big.Int
	no  *big.Int
}

func newPosition() *position {
	return &position{yes: new(big.Int), no: new(big.Int)}
}

func (p *position) onSide(side types.Side) *big.Int {
	if side == types.SideYes {
		return p.yes
	}
	return p.no
}

// MarketSnapshot is an immutable copy of market state for callers outside
// the ledger.
type MarketSnapshot struct {
	ID              string               `json:"id"`
	Question        types.MarketQuestion `json:"question"`
	RubricHash      common.Hash          `json:"rubric_hash"`
	Deadline        time.Time            `json:"deadline"`
	Status          MarketStatus         `json:"status"`
	Outcome         Outcome              `json:"outcome"`
	YesPool         *big.Int             `json:"yes_pool"`
	NoPool          *big.Int             `json:"no_pool"`
	ScoreYes        float64              `json:"score_yes"`
	ScoreNo         float64              `json:"score_no"`
	TranscriptHash  common.Hash          `json:"transcript_hash"`
	Signature       hexutil.Bytes        `json:"authority_signature,omitempty"`
	Creator         common.Address       `json:"creator"`
	CreationDeposit *big.Int             `json:"creation_deposit"`
	CreatedAt       time.Time            `json:"created_at"`
}

func (m *market) snapshot() MarketSnapshot {
	return MarketSnapshot{
		ID:              m.id,
		Question:        m.question,
		RubricHash:      m.rubricHash,
		Deadline:        m.deadline,
		Status:          m.status,
		Outcome:         m.outcome,
		YesPool:         new(big.Int).Set(m.yesPool),
		NoPool:          new(big.Int).Set(m.noPool),
		ScoreYes:        m.scoreYes,
		ScoreNo:         m.scoreNo,
		TranscriptHash:  m.transcriptHash,
		Signature:       append(hexutil.Bytes(nil), m.signature...),
		Creator:         m.creator,
		CreationDeposit: new(big.Int).Set(m.creationDeposit),
		CreatedAt:       m.createdAt,
	}
}
