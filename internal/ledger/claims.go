package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// ClaimWinnings pays a participant their share of the total pool on a
// resolved market. The winning stake is zeroed under the lock before the
// treasury transfer runs, so a second concurrent claim by the same
// participant observes a zero position and fails. A failed transfer restores
// the stake so the claim can be retried.
func (l *Ledger) ClaimWinnings(ctx context.Context, marketID string, participant common.Address) (*big.Int, error) {
	l.mu.Lock()

	m, ok := l.markets[marketID]
	if !ok {
		l.mu.Unlock()
		return nil, ErrMarketNotFound
	}
	if m.status != StatusResolved {
		l.mu.Unlock()
		return nil, ErrNotResolved
	}

	winningSide := types.SideYes
	if m.outcome == OutcomeNo {
		winningSide = types.SideNo
	}

	pos, ok := m.positions[participant]
	if !ok || pos.onSide(winningSide).Sign() == 0 {
		l.mu.Unlock()
		return nil, ErrNothingToClaim
	}

	stake := new(big.Int).Set(pos.onSide(winningSide))
	payout := winningsFor(stake, m.yesPool, m.noPool, winningSide)

	// Zero before transfer. Pools stay frozen at their settlement values so
	// later claimants compute against the same denominator.
	pos.onSide(winningSide).SetInt64(0)

	l.mu.Unlock()

	err := l.treasury.Transfer(ctx, participant, payout)
	if err != nil {
		l.mu.Lock()
		pos.onSide(winningSide).Set(stake)
		l.mu.Unlock()

		ClaimsFailedTotal.WithLabelValues(string(EventWinningsClaimed)).Inc()
		l.logger.Error("winnings-transfer-failed",
			zap.String("market-id", marketID),
			zap.String("participant", participant.Hex()),
			zap.Error(err))

		return nil, fmt.Errorf("transfer winnings: %w", err)
	}

	ClaimsPaidTotal.WithLabelValues(string(EventWinningsClaimed)).Inc()
	l.logger.Info("winnings-claimed",
		zap.String("market-id", marketID),
		zap.String("participant", participant.Hex()),
		zap.String("payout", payout.String()))

	l.emit(Event{
		Type:        EventWinningsClaimed,
		MarketID:    marketID,
		Participant: &participant,
		Side:        winningSide,
		Amount:      new(big.Int).Set(payout),
	})

	return payout, nil
}

// ClaimRefund returns a participant's full stake on both sides of an
// escalated market. Same zero-then-transfer discipline as ClaimWinnings.
func (l *Ledger) ClaimRefund(ctx context.Context, marketID string, participant common.Address) (*big.Int, error) {
	l.mu.Lock()

	m, ok := l.markets[marketID]
	if !ok {
		l.mu.Unlock()
		return nil, ErrMarketNotFound
	}
	if m.status != StatusEscalated {
		l.mu.Unlock()
		return nil, ErrNotEscalated
	}

	pos, ok := m.positions[participant]
	if !ok {
		l.mu.Unlock()
		return nil, ErrNothingToClaim
	}

	refund := new(big.Int).Add(pos.yes, pos.no)
	if refund.Sign() == 0 {
		l.mu.Unlock()
		return nil, ErrNothingToClaim
	}

	stakeYes := new(big.Int).Set(pos.yes)
	stakeNo := new(big.Int).Set(pos.no)
	pos.yes.SetInt64(0)
	pos.no.SetInt64(0)

	l.mu.Unlock()

	err := l.treasury.Transfer(ctx, participant, refund)
	if err != nil {
		l.mu.Lock()
		pos.yes.Set(stakeYes)
		pos.no.Set(stakeNo)
		l.mu.Unlock()

		ClaimsFailedTotal.WithLabelValues(string(EventRefundClaimed)).Inc()
		l.logger.Error("refund-transfer-failed",
			zap.String("market-id", marketID),
			zap.String("participant", participant.Hex()),
			zap.Error(err))

		return nil, fmt.Errorf("transfer refund: %w", err)
	}

	ClaimsPaidTotal.WithLabelValues(string(EventRefundClaimed)).Inc()
	l.logger.Info("refund-claimed",
		zap.String("market-id", marketID),
		zap.String("participant", participant.Hex()),
		zap.String("refund", refund.String()))

	l.emit(Event{
		Type:        EventRefundClaimed,
		MarketID:    marketID,
		Participant: &participant,
		Amount:      new(big.Int).Set(refund),
	})

	return refund, nil
}

// winningsFor computes stake * (yesPool + noPool) / winningPool with floor
// division. Rounding dust stays in the pool rather than being minted. If the
// losing pool is empty every winner gets back exactly their stake.
func winningsFor(stake, yesPool, noPool *big.Int, winningSide types.Side) *big.Int {
	winningPool := yesPool
	if winningSide == types.SideNo {
		winningPool = noPool
	}
	if winningPool.Sign() == 0 {
		return new(big.Int)
	}

	total := new(big.Int).Add(yesPool, noPool)
	payout := new(big.Int).Mul(stake, total)
	return payout.Quo(payout, winningPool)
}
