package types

// CriterionScore is the adjudicator's scoring of both sides on one criterion.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	ScoreYes  float64 `json:"score_yes"` // 0-100
	ScoreNo   float64 `json:"score_no"`  // 0-100
	Reasoning string  `json:"reasoning"`
}

// JudgeRuling is the adjudicator's complete output: per-criterion and
// weighted-aggregate scores, a short natural-language ruling, and the list of
// citations that matched no evidence title.
type JudgeRuling struct {
	FinalVerdict           Side             `json:"final_verdict"`
	ScoreYes               float64          `json:"score_yes"` // Weighted aggregate, 0-100
	ScoreNo                float64          `json:"score_no"`  // Weighted aggregate, 0-100
	CriterionScores        []CriterionScore `json:"criterion_scores"`
	RulingText             string           `json:"ruling_text"`
	HallucinationsDetected []string         `json:"hallucinations_detected"`
}

// Validate strictly checks the ruling against the rubric, identically to
// advocate validation: full criterion coverage in rubric order and all scores
// in range.
func (r *JudgeRuling) Validate(rubric *ResolutionRubric) error {
	if !r.FinalVerdict.Valid() {
		return &ValidationError{Field: "final_verdict", Message: "final verdict must be YES or NO, got " + string(r.FinalVerdict)}
	}

	if r.ScoreYes < 0 || r.ScoreYes > 100 {
		return &ValidationError{Field: "score_yes", Message: "aggregate score must be in [0, 100]"}
	}
	if r.ScoreNo < 0 || r.ScoreNo > 100 {
		return &ValidationError{Field: "score_no", Message: "aggregate score must be in [0, 100]"}
	}

	if len(r.CriterionScores) != len(rubric.Criteria) {
		return &ValidationError{
			Field:   "criterion_scores",
			Message: "ruling must score every rubric criterion exactly once",
		}
	}

	for i, cs := range r.CriterionScores {
		if cs.Criterion != rubric.Criteria[i].Name {
			return &ValidationError{
				Field:   "criterion_scores",
				Message: "criterion mismatch: expected " + rubric.Criteria[i].Name + ", got " + cs.Criterion,
				Index:   i,
			}
		}
		if cs.ScoreYes < 0 || cs.ScoreYes > 100 {
			return &ValidationError{Field: "criterion_scores", Message: "score_yes must be in [0, 100]", Index: i}
		}
		if cs.ScoreNo < 0 || cs.ScoreNo > 100 {
			return &ValidationError{Field: "criterion_scores", Message: "score_no must be in [0, 100]", Index: i}
		}
	}

	for i, h := range r.HallucinationsDetected {
		if h == "" {
			return &ValidationError{Field: "hallucinations_detected", Message: "hallucination entry cannot be empty", Index: i}
		}
	}

	return nil
}

// Margin returns |ScoreYes - ScoreNo|, independent of which side the ruling
// names as winner.
func (r *JudgeRuling) Margin() float64 {
	m := r.ScoreYes - r.ScoreNo
	if m < 0 {
		m = -m
	}
	return m
}

// Consistent reports whether the declared verdict agrees with the side
// holding the higher aggregate score. Ties are consistent with either verdict.
func (r *JudgeRuling) Consistent() bool {
	switch {
	case r.ScoreYes > r.ScoreNo:
		return r.FinalVerdict == SideYes
	case r.ScoreNo > r.ScoreYes:
		return r.FinalVerdict == SideNo
	default:
		return true
	}
}
