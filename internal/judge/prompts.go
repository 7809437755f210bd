package judge

import (
	"fmt"
	"strings"

	"github.com/openverdict/tribunal/pkg/types"
)

const systemPrompt = `You are the adjudicator of an adversarial trial over a yes/no market question.
Two advocates have argued opposite sides from the same evidence bundle. Score both sides against the rubric.

Rules:
- Score each rubric criterion for both sides (0-100), then report weighted aggregates using the rubric weights.
- Cross-reference every citation in both arguments against the evidence titles; list any citation that matches no title in "hallucinations_detected".
- Declare the side with the stronger overall case as "final_verdict".
- Write a short ruling explaining the outcome.

Respond with a single JSON object and nothing else, matching this schema:
{
  "final_verdict": "YES" | "NO",
  "score_yes": <0-100>,
  "score_no": <0-100>,
  "criterion_scores": [
    {"criterion": "<rubric criterion name>", "score_yes": <0-100>, "score_no": <0-100>, "reasoning": "<why>"}
  ],
  "ruling_text": "<short ruling>",
  "hallucinations_detected": ["<citation matching no evidence title>", ...]
}`

// UserPrompt renders the question, rubric, evidence titles, and both
// arguments for the adjudication call.
func UserPrompt(
	question *types.MarketQuestion,
	bundle *types.EvidenceBundle,
	argYes *types.AdvocateArgument,
	argNo *types.AdvocateArgument,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QUESTION: %s\n\n", question.Question)

	b.WriteString("RUBRIC CRITERIA (score each, in this order):\n")
	for _, c := range question.Rubric.Criteria {
		fmt.Fprintf(&b, "- %s (weight %d): %s\n", c.Name, c.Weight, c.Description)
	}

	b.WriteString("\nEVIDENCE TITLES (the complete set of verifiable citations):\n")
	if bundle.Empty() {
		b.WriteString("(none; any citation at all is a fabrication)\n")
	} else {
		for _, title := range bundle.Titles() {
			fmt.Fprintf(&b, "- %q\n", title)
		}
	}

	writeArgument(&b, "YES ADVOCATE", argYes)
	writeArgument(&b, "NO ADVOCATE", argNo)

	return b.String()
}

func writeArgument(b *strings.Builder, heading string, arg *types.AdvocateArgument) {
	fmt.Fprintf(b, "\n%s (confidence %.0f, model %s):\n", heading, arg.Confidence, arg.Model)
	for _, ca := range arg.Arguments {
		fmt.Fprintf(b, "- [%s] %s (strength %.0f)\n", ca.Criterion, ca.Claim, ca.Strength)
		for _, citation := range ca.EvidenceCitations {
			fmt.Fprintf(b, "  cites %q\n", citation)
		}
	}
	for _, weakness := range arg.WeaknessesInOpposingCase {
		fmt.Fprintf(b, "- notes opposing weakness: %s\n", weakness)
	}
}
