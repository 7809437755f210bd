package confidence

import (
	"strings"
	"testing"

	"github.com/openverdict/tribunal/pkg/types"
)

func rubricWithThreshold(threshold float64) *types.ResolutionRubric {
	return &types.ResolutionRubric{
		Criteria: []types.RubricCriterion{
			{Name: "only", Description: "only criterion", Weight: 100},
		},
		ConfidenceThreshold: threshold,
	}
}

func ruling(verdict types.Side, scoreYes, scoreNo float64, hallucinations ...string) *types.JudgeRuling {
	return &types.JudgeRuling{
		FinalVerdict:           verdict,
		ScoreYes:               scoreYes,
		ScoreNo:                scoreNo,
		HallucinationsDetected: hallucinations,
	}
}

func TestEvaluate_DecisionPriority(t *testing.T) {
	tests := []struct {
		name        string
		ruling      *types.JudgeRuling
		threshold   float64
		wantAction  types.Action
		wantVerdict *types.Side
		wantMargin  float64
	}{
		{
			name:       "hallucination-forces-escalate-despite-decisive-margin",
			ruling:     ruling(types.SideYes, 78, 45, "Fabricated Study"),
			threshold:  20,
			wantAction: types.ActionEscalate,
			wantMargin: 33,
		},
		{
			name:       "margin-below-threshold-escalates",
			ruling:     ruling(types.SideYes, 52, 48),
			threshold:  20,
			wantAction: types.ActionEscalate,
			wantMargin: 4,
		},
		{
			name:        "margin-above-threshold-resolves-with-declared-verdict",
			ruling:      ruling(types.SideYes, 78, 45),
			threshold:   20,
			wantAction:  types.ActionResolve,
			wantVerdict: sidePtr(types.SideYes),
			wantMargin:  33,
		},
		{
			name:        "margin-exactly-at-threshold-resolves",
			ruling:      ruling(types.SideNo, 40, 60),
			threshold:   20,
			wantAction:  types.ActionResolve,
			wantVerdict: sidePtr(types.SideNo),
			wantMargin:  20,
		},
		{
			name:        "no-verdict-resolves-for-no",
			ruling:      ruling(types.SideNo, 30, 75),
			threshold:   20,
			wantAction:  types.ActionResolve,
			wantVerdict: sidePtr(types.SideNo),
			wantMargin:  45,
		},
		{
			name:        "evaluator-trusts-declared-verdict-even-when-inconsistent",
			ruling:      ruling(types.SideNo, 75, 30),
			threshold:   20,
			wantAction:  types.ActionResolve,
			wantVerdict: sidePtr(types.SideNo),
			wantMargin:  45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Evaluate(tt.ruling, rubricWithThreshold(tt.threshold))

			if decision.Action != tt.wantAction {
				t.Errorf("expected action %s, got %s", tt.wantAction, decision.Action)
			}
			if decision.Margin != tt.wantMargin {
				t.Errorf("expected margin %v, got %v", tt.wantMargin, decision.Margin)
			}
			if tt.wantVerdict == nil && decision.Verdict != nil {
				t.Errorf("expected nil verdict on escalation, got %s", *decision.Verdict)
			}
			if tt.wantVerdict != nil {
				if decision.Verdict == nil {
					t.Fatal("expected verdict, got nil")
				}
				if *decision.Verdict != *tt.wantVerdict {
					t.Errorf("expected verdict %s, got %s", *tt.wantVerdict, *decision.Verdict)
				}
			}
			if decision.Reason == "" {
				t.Error("decision must carry an audit reason")
			}
		})
	}
}

func TestEvaluate_HallucinationReasonNamesCitations(t *testing.T) {
	decision := Evaluate(ruling(types.SideYes, 90, 10, "Ghost Paper"), rubricWithThreshold(20))

	if !strings.Contains(decision.Reason, "Ghost Paper") {
		t.Errorf("reason must name the offending citation, got %q", decision.Reason)
	}
}

func TestEvaluate_MarginIsSideIndependent(t *testing.T) {
	a := Evaluate(ruling(types.SideYes, 70, 30), rubricWithThreshold(20))
	b := Evaluate(ruling(types.SideNo, 30, 70), rubricWithThreshold(20))

	if a.Margin != b.Margin {
		t.Errorf("margin must be |scoreYes-scoreNo| regardless of winner: %v vs %v", a.Margin, b.Margin)
	}
}

func TestEvaluate_Pure(t *testing.T) {
	r := ruling(types.SideYes, 52, 48)
	rub := rubricWithThreshold(20)

	first := Evaluate(r, rub)
	for i := 0; i < 10; i++ {
		if got := Evaluate(r, rub); got != first {
			t.Fatal("identical input must yield identical output")
		}
	}
}

func sidePtr(s types.Side) *types.Side {
	return &s
}
