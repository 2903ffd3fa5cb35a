package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service is the balance mutator: the only code path allowed to change an
// account balance. Orchestration code never touches the accounts table.
type Service struct {
	repo Repository
}

// NewService creates wallet service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Balance returns the current wallet balance
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.Balance(ctx, accountID)
}

// Credit increases the balance and records a success-status entry with the
// positive signed amount. Rejects non-positive amounts with no state change.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	entry, balance, err := s.repo.Credit(ctx, accountID, amount, category, desc, meta)
	if err != nil {
		return nil, 0, err
	}
	log.Info().
		Str("account_id", accountID.String()).
		Str("category", string(category)).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("Wallet credited")
	return entry, balance, nil
}

// Debit decreases the balance and records a success-status entry with the
// negative signed amount. Fails with ErrInsufficientBalance and no state
// change when the balance cannot cover the amount.
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	entry, balance, err := s.repo.Debit(ctx, accountID, amount, category, desc, meta)
	if err != nil {
		return nil, 0, err
	}
	log.Info().
		Str("account_id", accountID.String()).
		Str("category", string(category)).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("Wallet debited")
	return entry, balance, nil
}

// Reserve atomically checks the balance, decrements it and records a pending
// entry. Exactly one of two concurrent reservations against the same funds
// can win; the loser gets ErrInsufficientBalance with nothing written.
func (s *Service) Reserve(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.repo.Reserve(ctx, accountID, amount, category, desc, meta)
}

// FinalizeSuccess moves a pending entry to success and attaches the vendor
// reference. Terminal entries are never touched.
func (s *Service) FinalizeSuccess(ctx context.Context, entryID uuid.UUID, vendorRef string, extra Metadata) error {
	return s.repo.FinalizeSuccess(ctx, entryID, vendorRef, extra)
}

// FinalizeFailure refunds the reserved amount and moves the pending entry to
// failed with the reason folded into metadata. Safe to call twice: the
// second call returns ErrEntryNotPending without a second refund.
func (s *Service) FinalizeFailure(ctx context.Context, entryID uuid.UUID, reason string) error {
	err := s.repo.FinalizeFailure(ctx, entryID, reason)
	if err != nil {
		return err
	}
	log.Warn().
		Str("entry_id", entryID.String()).
		Str("reason", reason).
		Msg("Purchase finalized as failed")
	return nil
}

// CreateDepositPending records an inbound funding attempt before the gateway
// confirms it. The balance is untouched until confirmation.
func (s *Service) CreateDepositPending(ctx context.Context, accountID uuid.UUID, amount int64, desc string, meta Metadata) (*LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.repo.CreateDepositPending(ctx, accountID, amount, desc, meta)
}

// ConfirmDeposit credits the balance for a confirmed funding attempt.
// Idempotent: re-confirming a settled deposit never credits twice.
func (s *Service) ConfirmDeposit(ctx context.Context, entryID uuid.UUID, extra Metadata) (int64, error) {
	return s.repo.ConfirmDeposit(ctx, entryID, extra)
}

// FailDeposit marks an unconfirmed funding attempt failed. No refund: the
// money never entered the wallet.
func (s *Service) FailDeposit(ctx context.Context, entryID uuid.UUID, reason string) error {
	return s.repo.FailDeposit(ctx, entryID, reason)
}

// Entry loads one ledger entry
func (s *Service) Entry(ctx context.Context, id uuid.UUID) (*LedgerEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// History returns a filtered, paginated, reverse-chronological ledger view
func (s *Service) History(ctx context.Context, accountID uuid.UUID, f Filter) ([]*LedgerEntry, int, error) {
	return s.repo.List(ctx, accountID, f)
}

// Recent returns the account's most recent n entries for dashboard widgets
func (s *Service) Recent(ctx context.Context, accountID uuid.UUID, n int) ([]*LedgerEntry, error) {
	if n <= 0 || n > 50 {
		n = 5
	}
	entries, _, err := s.repo.List(ctx, accountID, Filter{Limit: n})
	return entries, err
}

// Drift reports balance minus the sum of successful entry amounts. Zero in a
// correctly operating system; surfaced for operators, never auto-corrected.
func (s *Service) Drift(ctx context.Context, accountID uuid.UUID) (int64, error) {
	balance, err := s.repo.Balance(ctx, accountID)
	if err != nil {
		return 0, err
	}
	sum, err := s.repo.SumSuccess(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return balance - sum, nil
}
