// Package storage persists the ledger event log and the content-addressed
// transcript archive.
package storage

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/pkg/types"
)

// ErrTranscriptNotFound means no transcript is archived under the hash.
var ErrTranscriptNotFound = errors.New("transcript not found")

// Storage persists ledger events and trial transcripts.
type Storage interface {
	// StoreEvent appends a ledger event to the log.
	StoreEvent(ctx context.Context, event *ledger.Event) error

	// StoreTranscript archives a transcript under its content hash.
	StoreTranscript(ctx context.Context, hash common.Hash, transcript *types.TrialTranscript) error

	// GetTranscript retrieves an archived transcript by content hash.
	GetTranscript(ctx context.Context, hash common.Hash) (*types.TrialTranscript, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close closes the storage connection.
	Close() error
}
