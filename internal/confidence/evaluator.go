// Package confidence converts a ruling into a settlement decision. Evaluate
// is a pure function: no I/O, no clock, identical input always yields
// identical output.
package confidence

import (
	"fmt"
	"strings"

	"github.com/openverdict/tribunal/pkg/types"
)

// Evaluate applies the decision priority, first match wins:
//
//  1. Any detected hallucination escalates regardless of margin: fabricated
//     evidence invalidates the debate's integrity outright.
//  2. A margin strictly below the rubric threshold escalates. An exact tie
//     with the threshold resolves.
//  3. Otherwise resolve with the ruling's own FinalVerdict. The evaluator
//     does not re-derive the verdict from the raw scores.
func Evaluate(ruling *types.JudgeRuling, rubric *types.ResolutionRubric) types.SettlementDecision {
	margin := ruling.Margin()

	if len(ruling.HallucinationsDetected) > 0 {
		return types.SettlementDecision{
			Action: types.ActionEscalate,
			Margin: margin,
			Reason: fmt.Sprintf("fabricated citations detected: %s",
				strings.Join(ruling.HallucinationsDetected, "; ")),
		}
	}

	if margin < rubric.ConfidenceThreshold {
		return types.SettlementDecision{
			Action: types.ActionEscalate,
			Margin: margin,
			Reason: fmt.Sprintf("margin %.1f below confidence threshold %.1f",
				margin, rubric.ConfidenceThreshold),
		}
	}

	verdict := ruling.FinalVerdict
	return types.SettlementDecision{
		Action:  types.ActionResolve,
		Verdict: &verdict,
		Margin:  margin,
		Reason: fmt.Sprintf("margin %.1f meets confidence threshold %.1f, verdict %s",
			margin, rubric.ConfidenceThreshold, verdict),
	}
}
