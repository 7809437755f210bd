package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goccy/go-json"
)

// TrialTranscript is the complete, immutable record of one trial: inputs,
// both arguments, the ruling, and the decision. The ledger anchors only the
// content hash; the transcript itself is archived off-ledger and retrievable
// by that hash.
type TrialTranscript struct {
	ID          string             `json:"id"`
	Question    MarketQuestion     `json:"question"`
	Evidence    EvidenceBundle     `json:"evidence"`
	ArgumentYes AdvocateArgument   `json:"argument_yes"`
	ArgumentNo  AdvocateArgument   `json:"argument_no"`
	Ruling      JudgeRuling        `json:"ruling"`
	Decision    SettlementDecision `json:"decision"`
	ExecutedAt  time.Time          `json:"executed_at"`
	DurationMs  int64              `json:"duration_ms"`
}

// Encode returns the canonical JSON encoding of the transcript. Struct fields
// marshal in declaration order, so the encoding is deterministic and the hash
// is stable across processes.
func (t *TrialTranscript) Encode() ([]byte, error) {
	return json.Marshal(t)
}

// Hash returns the keccak256 content hash of the canonical encoding. This is
// the value the ledger stores at settlement.
func (t *TrialTranscript) Hash() (common.Hash, error) {
	data, err := t.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}
