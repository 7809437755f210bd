package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goccy/go-json"
)

// Side identifies which side of a binary question an advocate argues or a
// verdict lands on.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// RubricCriterion is a single named, weighted criterion the debate is judged
// against.
type RubricCriterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Weight      int    `json:"weight"` // Percentage points, all criteria sum to 100
}

// ResolutionRubric is the weighted set of criteria plus the margin threshold
// that gates automatic resolution.
type ResolutionRubric struct {
	Criteria            []RubricCriterion `json:"criteria"`
	ConfidenceThreshold float64           `json:"confidence_threshold"` // Minimum margin (0-100) to auto-resolve
}

// Validate checks structural rules: at least one criterion, weights summing to
// 100, non-empty names, threshold in [0, 100].
func (r *ResolutionRubric) Validate() error {
	if len(r.Criteria) == 0 {
		return &ValidationError{Field: "criteria", Message: "rubric must have at least one criterion"}
	}

	weightSum := 0
	seen := make(map[string]bool, len(r.Criteria))
	for i, c := range r.Criteria {
		if c.Name == "" {
			return &ValidationError{Field: "criteria", Message: "criterion name cannot be empty", Index: i}
		}
		if seen[c.Name] {
			return &ValidationError{Field: "criteria", Message: "duplicate criterion name: " + c.Name, Index: i}
		}
		seen[c.Name] = true

		if c.Weight <= 0 {
			return &ValidationError{Field: "criteria", Message: "criterion weight must be positive", Index: i}
		}
		weightSum += c.Weight
	}

	if weightSum != 100 {
		return &ValidationError{Field: "criteria", Message: "criterion weights must sum to 100"}
	}

	if r.ConfidenceThreshold < 0 || r.ConfidenceThreshold > 100 {
		return &ValidationError{Field: "confidence_threshold", Message: "confidence threshold must be in [0, 100]"}
	}

	return nil
}

// CriterionNames returns criterion names in rubric order.
func (r *ResolutionRubric) CriterionNames() []string {
	names := make([]string, len(r.Criteria))
	for i, c := range r.Criteria {
		names[i] = c.Name
	}
	return names
}

// Hash returns the keccak256 commitment to the rubric. The ledger stores this
// hash instead of the full rubric.
func (r *ResolutionRubric) Hash() common.Hash {
	// goccy/go-json marshals struct fields in declaration order, so the
	// encoding is deterministic for a given rubric value.
	data, err := json.Marshal(r)
	if err != nil {
		// A rubric is plain data; marshal cannot fail for valid values.
		panic("marshal rubric: " + err.Error())
	}
	return crypto.Keccak256Hash(data)
}

// MarketQuestion is the immutable description of what a trial resolves:
// the natural-language question, the rubric it is judged against, and the
// deadline after which settlement may be requested.
type MarketQuestion struct {
	ID                 string           `json:"id"`
	Question           string           `json:"question"`
	Rubric             ResolutionRubric `json:"rubric"`
	SettlementDeadline time.Time        `json:"settlement_deadline"`
}

// Validate checks the question is well-formed.
func (q *MarketQuestion) Validate() error {
	if q.ID == "" {
		return &ValidationError{Field: "id", Message: "market question id cannot be empty"}
	}
	if q.Question == "" {
		return &ValidationError{Field: "question", Message: "question text cannot be empty"}
	}
	return q.Rubric.Validate()
}
