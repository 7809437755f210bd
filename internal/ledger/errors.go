package ledger

import "errors"

// Precondition violations are rejected synchronously with a specific, named
// reason and are never partially applied.
var (
	ErrMarketNotFound      = errors.New("market not found")
	ErrDeadlineInPast      = errors.New("settlement deadline must be in the future")
	ErrMarketNotOpen       = errors.New("market is not open")
	ErrDeadlinePassed      = errors.New("market deadline has passed")
	ErrDeadlineNotReached  = errors.New("market deadline has not been reached")
	ErrZeroAmount          = errors.New("stake amount must be positive")
	ErrNotRequested        = errors.New("market is not awaiting settlement")
	ErrUnauthorized        = errors.New("caller is not the settlement authority")
	ErrNotResolved         = errors.New("market is not resolved")
	ErrNotEscalated        = errors.New("market is not escalated")
	ErrNothingToClaim      = errors.New("caller has no claimable position")
	ErrEmptyTranscriptHash = errors.New("transcript hash cannot be empty")
	ErrBadSignature        = errors.New("signature does not recover to the settlement authority")
)
