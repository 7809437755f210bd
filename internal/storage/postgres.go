package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreEvent appends a ledger event to the event log table.
func (p *PostgresStorage) StoreEvent(ctx context.Context, event *ledger.Event) error {
	var participant sql.NullString
	if event.Participant != nil {
		participant = sql.NullString{String: event.Participant.Hex(), Valid: true}
	}

	var amount sql.NullString
	if event.Amount != nil {
		amount = sql.NullString{String: event.Amount.String(), Valid: true}
	}

	var transcriptHash sql.NullString
	if event.TranscriptHash != nil {
		transcriptHash = sql.NullString{String: event.TranscriptHash.Hex(), Valid: true}
	}

	var signature sql.NullString
	if len(event.Signature) > 0 {
		signature = sql.NullString{String: event.Signature.String(), Valid: true}
	}

	query := `
		INSERT INTO ledger_events (
			id, event_type, market_id, occurred_at,
			participant, side, amount, outcome, transcript_hash, authority_signature
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.db.ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		event.MarketID,
		event.At,
		participant,
		string(event.Side),
		amount,
		string(event.Outcome),
		transcriptHash,
		signature,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	p.logger.Debug("event-stored",
		zap.String("event-id", event.ID),
		zap.String("event-type", string(event.Type)),
		zap.String("market-id", event.MarketID))

	return nil
}

// StoreTranscript archives a transcript under its content hash. Storing the
// same hash twice is a no-op; identical content hashes to identical bytes.
func (p *PostgresStorage) StoreTranscript(ctx context.Context, hash common.Hash, transcript *types.TrialTranscript) error {
	body, err := transcript.Encode()
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	query := `
		INSERT INTO transcripts (content_hash, trial_id, executed_at, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_hash) DO NOTHING
	`

	_, err = p.db.ExecContext(ctx, query,
		hash.Hex(),
		transcript.ID,
		transcript.ExecutedAt,
		body,
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}

	p.logger.Debug("transcript-stored",
		zap.String("content-hash", hash.Hex()),
		zap.String("trial-id", transcript.ID))

	return nil
}

// GetTranscript retrieves an archived transcript by content hash.
func (p *PostgresStorage) GetTranscript(ctx context.Context, hash common.Hash) (*types.TrialTranscript, error) {
	query := `SELECT body FROM transcripts WHERE content_hash = $1`

	var body []byte
	err := p.db.QueryRowContext(ctx, query, hash.Hex()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTranscriptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}

	var transcript types.TrialTranscript
	err = json.Unmarshal(body, &transcript)
	if err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}

	return &transcript, nil
}

// Ping checks database connectivity.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
