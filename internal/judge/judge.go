// Package judge runs the adjudication stage: one reasoning call over both
// validated arguments plus the evidence bundle, producing per-criterion and
// aggregate scores and a fabrication report. It is the pipeline's join point;
// it cannot start until both advocates have finished.
package judge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/internal/llm"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// Adjudicator executes the judge stage.
type Adjudicator struct {
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// Config holds adjudicator configuration.
type Config struct {
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

// New creates an adjudicator.
func New(cfg Config) *Adjudicator {
	return &Adjudicator{
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Run adjudicates the debate and returns a validated ruling. The returned
// ruling's hallucination list is the union of what the judge reported and
// what deterministic cross-referencing against the bundle's title set found;
// the title set is the only trusted fabrication oracle.
func (a *Adjudicator) Run(
	ctx context.Context,
	question *types.MarketQuestion,
	bundle *types.EvidenceBundle,
	argYes *types.AdvocateArgument,
	argNo *types.AdvocateArgument,
	client llm.Client,
) (*types.JudgeRuling, error) {
	start := time.Now()

	completion, err := client.Complete(ctx, llm.RoleJudge, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   UserPrompt(question, bundle, argYes, argNo),
		MaxTokens:    a.maxTokens,
		Temperature:  a.temperature,
	})
	if err != nil {
		RulingsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("complete: %w", err)
	}

	ruling, err := parseRuling(completion.Content)
	if err != nil {
		RulingsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("parse ruling: %w", err)
	}

	err = ruling.Validate(&question.Rubric)
	if err != nil {
		RulingsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("validate ruling: %w", err)
	}

	ruling.HallucinationsDetected = mergeHallucinations(
		ruling.HallucinationsDetected,
		crossReference(bundle, argYes, argNo),
	)

	if !ruling.Consistent() {
		// The evaluator trusts FinalVerdict; surface the inconsistency for
		// operators instead of silently correcting or escalating.
		InconsistentRulingsTotal.Inc()
		a.logger.Warn("ruling-verdict-contradicts-scores",
			zap.String("market-id", question.ID),
			zap.String("final-verdict", string(ruling.FinalVerdict)),
			zap.Float64("score-yes", ruling.ScoreYes),
			zap.Float64("score-no", ruling.ScoreNo))
	}

	RulingsTotal.WithLabelValues("success").Inc()
	RulingDurationSeconds.Observe(time.Since(start).Seconds())

	a.logger.Info("adjudication-complete",
		zap.String("market-id", question.ID),
		zap.String("final-verdict", string(ruling.FinalVerdict)),
		zap.Float64("score-yes", ruling.ScoreYes),
		zap.Float64("score-no", ruling.ScoreNo),
		zap.Int("hallucinations", len(ruling.HallucinationsDetected)),
		zap.Duration("elapsed", time.Since(start)))

	return ruling, nil
}

// crossReference returns every citation in both arguments that matches no
// title in the bundle.
func crossReference(bundle *types.EvidenceBundle, args ...*types.AdvocateArgument) []string {
	titles := bundle.TitleSet()

	var unverifiable []string
	for _, arg := range args {
		for _, citation := range arg.Citations() {
			if !titles[citation] {
				unverifiable = append(unverifiable, citation)
			}
		}
	}
	return unverifiable
}

// mergeHallucinations unions the judge-reported and code-detected lists,
// deduplicated and sorted for a deterministic transcript.
func mergeHallucinations(reported, detected []string) []string {
	seen := make(map[string]bool, len(reported)+len(detected))
	var merged []string
	for _, h := range append(reported, detected...) {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		merged = append(merged, h)
	}
	sort.Strings(merged)
	return merged
}

// parseRuling decodes the completion content as a JudgeRuling.
func parseRuling(content string) (*types.JudgeRuling, error) {
	doc, err := llm.ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var ruling types.JudgeRuling
	err = json.Unmarshal([]byte(doc), &ruling)
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return &ruling, nil
}
