package types

// Action is what the confidence evaluator decided to do with a ruling.
type Action string

const (
	ActionResolve  Action = "RESOLVE"
	ActionEscalate Action = "ESCALATE"
)

// SettlementDecision is the confidence evaluator's output: either resolve
// with a verdict, or escalate to external review. Verdict is nil iff
// escalated. Margin is always present.
type SettlementDecision struct {
	Action  Action  `json:"action"`
	Verdict *Side   `json:"verdict,omitempty"`
	Margin  float64 `json:"margin"`
	Reason  string  `json:"reason"`
}

// Resolved reports whether the decision resolves the market.
func (d *SettlementDecision) Resolved() bool {
	return d.Action == ActionResolve
}
