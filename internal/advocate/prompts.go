package advocate

import (
	"fmt"
	"strings"

	"github.com/openverdict/tribunal/pkg/types"
)

const systemPromptTemplate = `You are a professional advocate in an adversarial trial over a yes/no market question.
Your mandate: argue the %s side as persuasively as the evidence honestly allows.

Rules:
- You may cite ONLY the evidence titles listed in the user message, verbatim. Citing anything else is fabrication and voids the trial.
- Address every rubric criterion, in the order given, exactly once.
- If the evidence is thin or absent, argue from its absence; do not invent material.

Respond with a single JSON object and nothing else, matching this schema:
{
  "side": "%s",
  "confidence": <0-100>,
  "arguments": [
    {"criterion": "<rubric criterion name>", "claim": "<your case for this criterion>", "evidence_citations": ["<evidence title>", ...], "strength": <0-100>}
  ],
  "weaknesses_in_opposing_case": ["<weakness>", ...]
}`

// SystemPrompt builds the side-mandated system prompt. The two advocates'
// prompts differ only in the mandated side.
func SystemPrompt(side types.Side) string {
	return fmt.Sprintf(systemPromptTemplate, side, side)
}

// UserPrompt renders the question, rubric, and evidence bundle for one
// advocate call.
func UserPrompt(question *types.MarketQuestion, bundle *types.EvidenceBundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QUESTION: %s\n\n", question.Question)

	b.WriteString("RUBRIC CRITERIA (address each, in this order):\n")
	for _, c := range question.Rubric.Criteria {
		fmt.Fprintf(&b, "- %s (weight %d): %s\n", c.Name, c.Weight, c.Description)
	}

	b.WriteString("\nEVIDENCE (the only titles you may cite):\n")
	if bundle.Empty() {
		b.WriteString("(no evidence could be gathered; argue from that fact alone and cite nothing)\n")
	} else {
		for _, item := range bundle.Items {
			fmt.Fprintf(&b, "--- %q (source: %s)\n%s\n", item.Title, item.Source, item.Content)
		}
	}

	return b.String()
}
