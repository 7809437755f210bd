// Package testutil holds shared fixtures and mocks for pipeline and ledger
// tests.
package testutil

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/pkg/types"
)

// CreateTestQuestion builds a market question with the standard three-criterion
// rubric (weights 50/30/20, threshold 20).
func CreateTestQuestion(id string, question string) *types.MarketQuestion {
	return &types.MarketQuestion{
		ID:       id,
		Question: question,
		Rubric: types.ResolutionRubric{
			Criteria: []types.RubricCriterion{
				{Name: "factual-accuracy", Description: "Claims match the evidence", Weight: 50},
				{Name: "evidence-strength", Description: "Citations support the claims", Weight: 30},
				{Name: "logical-coherence", Description: "Argument hangs together", Weight: 20},
			},
			ConfidenceThreshold: 20,
		},
		SettlementDeadline: time.Now().Add(24 * time.Hour),
	}
}

// CreateTestBundle builds an evidence bundle with the given titles.
func CreateTestBundle(titles ...string) *types.EvidenceBundle {
	items := make([]types.EvidenceItem, len(titles))
	for i, title := range titles {
		items[i] = types.EvidenceItem{
			Source:      "test-source",
			Title:       title,
			Content:     "content of " + title,
			RetrievedAt: time.Now().UTC(),
		}
	}
	return &types.EvidenceBundle{Items: items, GatheredAt: time.Now().UTC()}
}

// CreateTestArgument builds a rubric-complete argument for a side, citing the
// given titles on every criterion.
func CreateTestArgument(side types.Side, citations ...string) types.AdvocateArgument {
	return types.AdvocateArgument{
		Side:       side,
		Confidence: 70,
		Arguments: []types.CriterionArgument{
			{Criterion: "factual-accuracy", Claim: "the record supports " + string(side), EvidenceCitations: citations, Strength: 75},
			{Criterion: "evidence-strength", Claim: "sources agree", EvidenceCitations: citations, Strength: 65},
			{Criterion: "logical-coherence", Claim: "the account is consistent", Strength: 60},
		},
		WeaknessesInOpposingCase: []string{"opposing case overreads one source"},
		Model:                    "test-model",
	}
}

// CreateTestRuling builds a rubric-complete ruling with the given aggregates.
func CreateTestRuling(verdict types.Side, scoreYes, scoreNo float64) types.JudgeRuling {
	return types.JudgeRuling{
		FinalVerdict: verdict,
		ScoreYes:     scoreYes,
		ScoreNo:      scoreNo,
		CriterionScores: []types.CriterionScore{
			{Criterion: "factual-accuracy", ScoreYes: scoreYes, ScoreNo: scoreNo, Reasoning: "per the record"},
			{Criterion: "evidence-strength", ScoreYes: scoreYes, ScoreNo: scoreNo, Reasoning: "citation quality"},
			{Criterion: "logical-coherence", ScoreYes: scoreYes, ScoreNo: scoreNo, Reasoning: "structure"},
		},
		RulingText: "ruling text",
	}
}

// MarshalJSON renders any fixture as the JSON string an LLM would return.
func MarshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic("marshal fixture: " + err.Error())
	}
	return string(data)
}
