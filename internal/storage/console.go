package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing events to the console
// and holding transcripts in memory. Useful for local runs without postgres;
// transcripts survive only for the process lifetime.
type ConsoleStorage struct {
	logger *zap.Logger

	mu          sync.Mutex
	transcripts map[common.Hash]*types.TrialTranscript
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger:      logger,
		transcripts: make(map[common.Hash]*types.TrialTranscript),
	}
}

// StoreEvent pretty-prints a ledger event.
func (c *ConsoleStorage) StoreEvent(ctx context.Context, event *ledger.Event) error {
	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("LEDGER EVENT  %s\n", event.Type)
	fmt.Printf("Market:   %s\n", event.MarketID)
	fmt.Printf("Time:     %s\n", event.At.Format("2006-01-02 15:04:05"))
	if event.Participant != nil {
		fmt.Printf("Party:    %s\n", event.Participant.Hex())
	}
	if event.Side != "" {
		fmt.Printf("Side:     %s\n", event.Side)
	}
	if event.Amount != nil {
		fmt.Printf("Amount:   %s wei\n", event.Amount)
	}
	if event.Outcome != "" && event.Outcome != ledger.OutcomeNone {
		fmt.Printf("Outcome:  %s\n", event.Outcome)
	}
	if event.TranscriptHash != nil {
		fmt.Printf("Hash:     %s\n", event.TranscriptHash.Hex())
	}
	if len(event.Signature) > 0 {
		fmt.Printf("Sig:      %s\n", event.Signature.String())
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// StoreTranscript keeps the transcript in memory.
func (c *ConsoleStorage) StoreTranscript(ctx context.Context, hash common.Hash, transcript *types.TrialTranscript) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcripts[hash] = transcript

	c.logger.Info("transcript-stored",
		zap.String("content-hash", hash.Hex()),
		zap.String("trial-id", transcript.ID))

	return nil
}

// GetTranscript retrieves a transcript stored in this process.
func (c *ConsoleStorage) GetTranscript(ctx context.Context, hash common.Hash) (*types.TrialTranscript, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	transcript, ok := c.transcripts[hash]
	if !ok {
		return nil, ErrTranscriptNotFound
	}
	return transcript, nil
}

// Ping always succeeds; there is no connection behind console storage.
func (c *ConsoleStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
