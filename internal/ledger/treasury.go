package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Treasury performs the external funds transfer of a claim. The ledger
// mutates its own state first and calls the treasury last, with no callback
// in between, so a claimant cannot re-enter the claim path before their
// position is zeroed.
type Treasury interface {
	// Transfer moves amount to recipient. A returned error means no funds
	// moved.
	Transfer(ctx context.Context, recipient common.Address, amount *big.Int) error
}

// PaperTreasury records transfers in the log without moving real funds.
type PaperTreasury struct {
	logger *zap.Logger
}

// NewPaperTreasury creates a log-only treasury.
func NewPaperTreasury(logger *zap.Logger) *PaperTreasury {
	return &PaperTreasury{logger: logger}
}

// Transfer logs the payout.
func (t *PaperTreasury) Transfer(ctx context.Context, recipient common.Address, amount *big.Int) error {
	t.logger.Info("paper-transfer",
		zap.String("recipient", recipient.Hex()),
		zap.String("amount", amount.String()))
	return nil
}
