package wallet

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const depositPendingAfter = 24 * time.Hour

// Sweeper resolves ledger entries stuck in pending, e.g. after a crash
// between reservation and the fulfillment response. Purchases older than
// pendingAfter are refunded and failed; deposits get a longer grace period
// because the gateway may still deliver a webhook.
type Sweeper struct {
	repo         Repository
	pendingAfter time.Duration
}

// NewSweeper creates a reconciliation sweeper
func NewSweeper(repo Repository, pendingAfter time.Duration) *Sweeper {
	if pendingAfter <= 0 {
		pendingAfter = 15 * time.Minute
	}
	return &Sweeper{repo: repo, pendingAfter: pendingAfter}
}

// Start runs the sweep on the given interval until the context is cancelled
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Reconciliation sweeper stopped")
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Sweeper) run(ctx context.Context) {
	s.sweepPurchases(ctx)
	s.sweepDeposits(ctx)
}

func (s *Sweeper) sweepPurchases(ctx context.Context) {
	cutoff := time.Now().Add(-s.pendingAfter)
	entries, err := s.repo.ListStalePending(ctx, cutoff, false)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stale pending purchases")
		return
	}

	for _, entry := range entries {
		err := s.repo.FinalizeFailure(ctx, entry.ID, "reconciled: pending timeout")
		if err != nil && err != ErrEntryNotPending {
			log.Error().Err(err).Str("entry_id", entry.ID.String()).Msg("Failed to reconcile stale purchase")
			continue
		}
		log.Warn().
			Str("entry_id", entry.ID.String()).
			Str("category", string(entry.Category)).
			Int64("amount", entry.Amount).
			Msg("Stale pending purchase auto-failed and refunded")
	}
}

func (s *Sweeper) sweepDeposits(ctx context.Context) {
	cutoff := time.Now().Add(-depositPendingAfter)
	entries, err := s.repo.ListStalePending(ctx, cutoff, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stale pending deposits")
		return
	}

	for _, entry := range entries {
		err := s.repo.FailDeposit(ctx, entry.ID, "reconciled: gateway never confirmed")
		if err != nil && err != ErrEntryNotPending {
			log.Error().Err(err).Str("entry_id", entry.ID.String()).Msg("Failed to reconcile stale deposit")
			continue
		}
		log.Warn().
			Str("entry_id", entry.ID.String()).
			Int64("amount", entry.Amount).
			Msg("Stale pending deposit marked failed")
	}
}
