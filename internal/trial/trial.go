// Package trial orchestrates one full pipeline run: evidence gathering, the
// advocate pair, adjudication, and the confidence decision, assembled into an
// immutable content-hashed transcript. Stages run strictly downstream; no
// stage re-enters an earlier one.
package trial

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/openverdict/tribunal/internal/advocate"
	"github.com/openverdict/tribunal/internal/confidence"
	"github.com/openverdict/tribunal/internal/evidence"
	"github.com/openverdict/tribunal/internal/judge"
	"github.com/openverdict/tribunal/internal/llm"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// Archive persists transcripts by content hash.
type Archive interface {
	StoreTranscript(ctx context.Context, hash common.Hash, transcript *types.TrialTranscript) error
}

// Result is a completed trial: the full transcript, its content hash, and
// the decision extracted for the settlement path.
type Result struct {
	Transcript *types.TrialTranscript
	Hash       common.Hash
	Decision   types.SettlementDecision
}

// Runner executes trials.
type Runner struct {
	aggregator *evidence.Aggregator
	sources    []evidence.Source
	advocates  *advocate.Runner
	judge      *judge.Adjudicator
	clientYes  llm.Client
	clientNo   llm.Client
	clientJudge llm.Client
	archive    Archive
	store      *Store
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// Config holds trial runner configuration. All collaborators are passed in
// explicitly.
type Config struct {
	Aggregator  *evidence.Aggregator
	Sources     []evidence.Source
	Advocates   *advocate.Runner
	Judge       *judge.Adjudicator
	ClientYes   llm.Client
	ClientNo    llm.Client
	ClientJudge llm.Client
	Archive     Archive
	Store       *Store
	Timeout     time.Duration // Wall-clock budget for the whole trial
	Logger      *zap.Logger
}

// NewRunner creates a trial runner.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		aggregator:  cfg.Aggregator,
		sources:     cfg.Sources,
		advocates:   cfg.Advocates,
		judge:       cfg.Judge,
		clientYes:   cfg.ClientYes,
		clientNo:    cfg.ClientNo,
		clientJudge: cfg.ClientJudge,
		archive:     cfg.Archive,
		store:       cfg.Store,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// Run executes the full pipeline for one market question. Any advocate or
// judge failure fails the trial outright; there is no default verdict. On
// success the transcript is archived, the pending decision is recorded in the
// store under marketID, and the result is returned.
func (r *Runner) Run(ctx context.Context, marketID string, question *types.MarketQuestion) (*Result, error) {
	start := r.now()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	err := question.Validate()
	if err != nil {
		TrialsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("validate question: %w", err)
	}

	r.logger.Info("trial-started",
		zap.String("market-id", marketID),
		zap.String("question-id", question.ID))

	bundle := r.aggregator.Gather(ctx, question.Question, r.sources)

	pair, err := r.advocates.RunPair(ctx, question, bundle, r.clientYes, r.clientNo)
	if err != nil {
		TrialsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("run advocate pair: %w", err)
	}

	ruling, err := r.judge.Run(ctx, question, bundle, &pair.Yes, &pair.No, r.clientJudge)
	if err != nil {
		TrialsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("adjudicate: %w", err)
	}

	decision := confidence.Evaluate(ruling, &question.Rubric)

	executedAt := r.now().UTC()
	transcript := &types.TrialTranscript{
		ID:          uuid.NewString(),
		Question:    *question,
		Evidence:    *bundle,
		ArgumentYes: pair.Yes,
		ArgumentNo:  pair.No,
		Ruling:      *ruling,
		Decision:    decision,
		ExecutedAt:  executedAt,
		DurationMs:  executedAt.Sub(start).Milliseconds(),
	}

	hash, err := transcript.Hash()
	if err != nil {
		TrialsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hash transcript: %w", err)
	}

	err = r.archive.StoreTranscript(ctx, hash, transcript)
	if err != nil {
		TrialsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("archive transcript: %w", err)
	}

	r.store.Put(PendingDecision{
		MarketID:       marketID,
		Decision:       decision,
		ScoreYes:       ruling.ScoreYes,
		ScoreNo:        ruling.ScoreNo,
		TranscriptHash: hash,
		CompletedAt:    executedAt,
	})

	TrialsTotal.WithLabelValues(outcomeLabel(decision.Action)).Inc()
	TrialDurationSeconds.Observe(r.now().Sub(start).Seconds())

	r.logger.Info("trial-complete",
		zap.String("market-id", marketID),
		zap.String("transcript-hash", hash.Hex()),
		zap.String("action", string(decision.Action)),
		zap.Float64("margin", decision.Margin),
		zap.Duration("elapsed", r.now().Sub(start)))

	return &Result{Transcript: transcript, Hash: hash, Decision: decision}, nil
}

func outcomeLabel(action types.Action) string {
	if action == types.ActionResolve {
		return "resolved"
	}
	return "escalated"
}
