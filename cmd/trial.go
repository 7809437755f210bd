package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/openverdict/tribunal/internal/advocate"
	"github.com/openverdict/tribunal/internal/evidence"
	"github.com/openverdict/tribunal/internal/judge"
	"github.com/openverdict/tribunal/internal/llm"
	"github.com/openverdict/tribunal/internal/storage"
	"github.com/openverdict/tribunal/internal/trial"
	"github.com/openverdict/tribunal/pkg/cache"
	"github.com/openverdict/tribunal/pkg/config"
	"github.com/openverdict/tribunal/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Run a single adversarial trial for a question file",
	Long: `Runs the full trial pipeline once for a market question described in a
JSON file, without touching any ledger. Useful for dry-running a question and
its rubric before opening a market on it.

The question file carries the question text, the scoring rubric, and the
settlement deadline:

  {
    "id": "q-1",
    "question": "Did the merger close before Q3 2026?",
    "rubric": {
      "criteria": [{"name": "directness", "weight": 50}, ...],
      "confidence_threshold": 20
    },
    "settlement_deadline": "2026-09-01T00:00:00Z"
  }`,
	RunE: runTrial,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(trialCmd)
	trialCmd.Flags().StringP("question-file", "q", "", "Path to the market question JSON file (required)")
	trialCmd.Flags().StringP("transcript-out", "o", "", "Write the full transcript JSON to this path")
	_ = trialCmd.MarkFlagRequired("question-file")
}

func runTrial(cmd *cobra.Command, args []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	questionFile, _ := cmd.Flags().GetString("question-file")
	question, err := loadQuestionFile(questionFile)
	if err != nil {
		return err
	}

	sources := make([]evidence.Source, 0, len(cfg.EvidenceSources))
	for _, sc := range cfg.EvidenceSources {
		sources = append(sources, evidence.NewHTTPSource(
			sc.Name, sc.BaseURL, cfg.EvidenceMaxItems, cfg.EvidenceTimeout, logger))
	}

	archive := storage.NewConsoleStorage(logger)
	runner := trial.NewRunner(trial.Config{
		Aggregator: evidence.NewAggregator(logger),
		Sources:    sources,
		Advocates: advocate.NewRunner(advocate.Config{
			MaxTokens:   cfg.AdvocateYes.MaxTokens,
			Temperature: cfg.AdvocateYes.Temperature,
			Logger:      logger,
		}),
		Judge: judge.New(judge.Config{
			MaxTokens:   cfg.Judge.MaxTokens,
			Temperature: cfg.Judge.Temperature,
			Logger:      logger,
		}),
		ClientYes:   llm.NewOpenAIClient(cfg.AdvocateYes, logger),
		ClientNo:    llm.NewOpenAIClient(cfg.AdvocateNo, logger),
		ClientJudge: llm.NewOpenAIClient(cfg.Judge, logger),
		Archive:     archive,
		Store:       trial.NewStore(cache.NewMemoryCache(), cfg.PendingTrialTTL),
		Timeout:     cfg.TrialTimeout,
		Logger:      logger,
	})

	fmt.Printf("Running trial for %q...\n\n", question.Question)

	result, err := runner.Run(context.Background(), "dry-run", question)
	if err != nil {
		return fmt.Errorf("run trial: %w", err)
	}

	printTrialResult(result)

	if out, _ := cmd.Flags().GetString("transcript-out"); out != "" {
		data, err := json.MarshalIndent(result.Transcript, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal transcript: %w", err)
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		fmt.Printf("\nTranscript written to %s\n", out)
	}

	return nil
}

func loadQuestionFile(path string) (*types.MarketQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}

	var question types.MarketQuestion
	if err := json.Unmarshal(data, &question); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("validate question: %w", err)
	}

	return &question, nil
}

func printTrialResult(result *trial.Result) {
	ruling := result.Transcript.Ruling

	fmt.Printf("Transcript hash: %s\n", result.Hash.Hex())
	fmt.Printf("Scores:          YES %.1f / NO %.1f (margin %.1f)\n",
		ruling.ScoreYes, ruling.ScoreNo, result.Decision.Margin)

	if len(ruling.HallucinationsDetected) > 0 {
		fmt.Printf("Fabrications:    %d flagged citation(s)\n", len(ruling.HallucinationsDetected))
	}

	switch result.Decision.Action {
	case types.ActionResolve:
		fmt.Printf("Decision:        RESOLVE %s\n", *result.Decision.Verdict)
	case types.ActionEscalate:
		fmt.Printf("Decision:        ESCALATE (%s)\n", result.Decision.Reason)
	}

	fmt.Printf("Duration:        %dms\n", result.Transcript.DurationMs)
}
