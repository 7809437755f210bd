package types

// CriterionArgument is one advocate's case for a single rubric criterion.
type CriterionArgument struct {
	Criterion         string   `json:"criterion"`
	Claim             string   `json:"claim"`
	EvidenceCitations []string `json:"evidence_citations"`
	Strength          float64  `json:"strength"` // Self-reported, 0-100
}

// AdvocateArgument is the complete, schema-validated output of one advocate:
// one CriterionArgument per rubric criterion, in rubric order.
type AdvocateArgument struct {
	Side                     Side                `json:"side"`
	Confidence               float64             `json:"confidence"` // 0-100
	Arguments                []CriterionArgument `json:"arguments"`
	WeaknessesInOpposingCase []string            `json:"weaknesses_in_opposing_case"`
	Model                    string              `json:"model"` // Provenance tag
}

// Validate strictly checks the argument against the rubric. Incomplete
// criterion coverage, out-of-range scores, and malformed citation lists are
// all fatal: there is no partial-credit advocate.
func (a *AdvocateArgument) Validate(rubric *ResolutionRubric) error {
	if !a.Side.Valid() {
		return &ValidationError{Field: "side", Message: "side must be YES or NO, got " + string(a.Side)}
	}

	if a.Confidence < 0 || a.Confidence > 100 {
		return &ValidationError{Field: "confidence", Message: "confidence must be in [0, 100]"}
	}

	if len(a.Arguments) != len(rubric.Criteria) {
		return &ValidationError{
			Field:   "arguments",
			Message: "argument must cover every rubric criterion exactly once",
		}
	}

	for i, arg := range a.Arguments {
		if arg.Criterion != rubric.Criteria[i].Name {
			return &ValidationError{
				Field:   "arguments",
				Message: "criterion mismatch: expected " + rubric.Criteria[i].Name + ", got " + arg.Criterion,
				Index:   i,
			}
		}
		if arg.Claim == "" {
			return &ValidationError{Field: "arguments", Message: "claim cannot be empty", Index: i}
		}
		if arg.Strength < 0 || arg.Strength > 100 {
			return &ValidationError{Field: "arguments", Message: "strength must be in [0, 100]", Index: i}
		}
		for _, citation := range arg.EvidenceCitations {
			if citation == "" {
				return &ValidationError{Field: "arguments", Message: "citation cannot be an empty string", Index: i}
			}
		}
	}

	return nil
}

// Citations returns every citation in the argument, in order, including
// duplicates.
func (a *AdvocateArgument) Citations() []string {
	var out []string
	for _, arg := range a.Arguments {
		out = append(out, arg.EvidenceCitations...)
	}
	return out
}
