// Package advocate runs the adversarial argument stage: two independently
// mandated arguers over the same evidence bundle, schema-validated strictly.
// A validation failure on either side fails the whole trial; there is no
// partial-credit advocate.
package advocate

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/internal/llm"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pair holds the result of the advocate stage: both sides' validated
// arguments.
type Pair struct {
	Yes types.AdvocateArgument
	No  types.AdvocateArgument
}

// Runner executes the advocate pair.
type Runner struct {
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// Config holds advocate runner configuration.
type Config struct {
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

// NewRunner creates an advocate pair runner.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// RunPair runs both advocates concurrently over the same bundle. The calls
// are mutually independent; neither sees the other's output. Either call
// failing (transport, schema, or validation) fails the pair.
func (r *Runner) RunPair(
	ctx context.Context,
	question *types.MarketQuestion,
	bundle *types.EvidenceBundle,
	clientYes llm.Client,
	clientNo llm.Client,
) (*Pair, error) {
	start := time.Now()
	userPrompt := UserPrompt(question, bundle)

	var pair Pair
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		arg, err := r.runOne(gctx, types.SideYes, llm.RoleAdvocateYes, userPrompt, question, clientYes)
		if err != nil {
			return fmt.Errorf("yes advocate: %w", err)
		}
		pair.Yes = *arg
		return nil
	})

	g.Go(func() error {
		arg, err := r.runOne(gctx, types.SideNo, llm.RoleAdvocateNo, userPrompt, question, clientNo)
		if err != nil {
			return fmt.Errorf("no advocate: %w", err)
		}
		pair.No = *arg
		return nil
	})

	err := g.Wait()
	PairDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		PairsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	PairsTotal.WithLabelValues("success").Inc()

	r.logger.Info("advocate-pair-complete",
		zap.String("market-id", question.ID),
		zap.Float64("yes-confidence", pair.Yes.Confidence),
		zap.Float64("no-confidence", pair.No.Confidence),
		zap.Duration("elapsed", time.Since(start)))

	return &pair, nil
}

// runOne executes and strictly validates a single advocate call.
func (r *Runner) runOne(
	ctx context.Context,
	side types.Side,
	role llm.Role,
	userPrompt string,
	question *types.MarketQuestion,
	client llm.Client,
) (*types.AdvocateArgument, error) {
	completion, err := client.Complete(ctx, role, llm.Request{
		SystemPrompt: SystemPrompt(side),
		UserPrompt:   userPrompt,
		MaxTokens:    r.maxTokens,
		Temperature:  r.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	arg, err := parseArgument(completion.Content)
	if err != nil {
		ValidationFailuresTotal.WithLabelValues(string(side)).Inc()
		return nil, fmt.Errorf("parse argument: %w", err)
	}

	// The model self-reports a side; the mandate wins. A response arguing
	// the wrong side is a schema violation, not something to silently flip.
	if arg.Side != side {
		ValidationFailuresTotal.WithLabelValues(string(side)).Inc()
		return nil, fmt.Errorf("advocate argued side %s, mandated %s", arg.Side, side)
	}

	err = arg.Validate(&question.Rubric)
	if err != nil {
		ValidationFailuresTotal.WithLabelValues(string(side)).Inc()
		return nil, fmt.Errorf("validate argument: %w", err)
	}

	arg.Model = completion.Model

	return arg, nil
}

// parseArgument decodes the completion content as an AdvocateArgument.
func parseArgument(content string) (*types.AdvocateArgument, error) {
	doc, err := llm.ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var arg types.AdvocateArgument
	err = json.Unmarshal([]byte(doc), &arg)
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return &arg, nil
}
