package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/account"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
)

// Notifier records user-facing adjustment notifications. Optional.
type Notifier interface {
	AdjustmentApplied(ctx context.Context, accountID uuid.UUID, amount int64, reason string)
}

// Service exposes the operator console: account management, the full ledger
// view, manual adjustments and the drift probe.
type Service struct {
	accounts *account.Service
	wallet   *wallet.Service
	notifier Notifier
}

// NewService creates admin service
func NewService(accounts *account.Service, walletSvc *wallet.Service, notifier Notifier) *Service {
	return &Service{accounts: accounts, wallet: walletSvc, notifier: notifier}
}

// ListAccounts returns accounts matching an optional search term
func (s *Service) ListAccounts(ctx context.Context, search string, limit, offset int) ([]*account.Account, int, error) {
	return s.accounts.List(ctx, search, limit, offset)
}

// GetAccount returns one account
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accounts.Get(ctx, id)
}

// SetAccountStatus enables or disables an account
func (s *Service) SetAccountStatus(ctx context.Context, adminID, accountID uuid.UUID, active bool) error {
	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		return err
	}
	log.Info().
		Str("admin_id", adminID.String()).
		Str("account_id", accountID.String()).
		Bool("is_active", active).
		Msg("Account status changed")
	return nil
}

// ListTransactions returns the ledger across all accounts
func (s *Service) ListTransactions(ctx context.Context, f wallet.Filter) ([]*wallet.LedgerEntry, int, error) {
	return s.wallet.History(ctx, uuid.Nil, f)
}

// CreditAccount manually credits a wallet with an audit reason
func (s *Service) CreditAccount(ctx context.Context, adminID, accountID uuid.UUID, amount int64, reason string) (*wallet.LedgerEntry, int64, error) {
	meta := wallet.EncodeMeta(wallet.AdjustmentMeta{AdminID: adminID, Reason: reason})
	entry, balance, err := s.wallet.Credit(ctx, accountID, amount, wallet.CategoryAdjustment, "Manual credit: "+reason, meta)
	if err != nil {
		return nil, 0, err
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("Manual credit applied")

	if s.notifier != nil {
		s.notifier.AdjustmentApplied(ctx, accountID, amount, reason)
	}
	return entry, balance, nil
}

// DebitAccount manually debits a wallet with an audit reason. Fails like any
// debit when the balance cannot cover the amount.
func (s *Service) DebitAccount(ctx context.Context, adminID, accountID uuid.UUID, amount int64, reason string) (*wallet.LedgerEntry, int64, error) {
	meta := wallet.EncodeMeta(wallet.AdjustmentMeta{AdminID: adminID, Reason: reason})
	entry, balance, err := s.wallet.Debit(ctx, accountID, amount, wallet.CategoryAdjustment, "Manual debit: "+reason, meta)
	if err != nil {
		return nil, 0, err
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("Manual debit applied")

	if s.notifier != nil {
		s.notifier.AdjustmentApplied(ctx, accountID, -amount, reason)
	}
	return entry, balance, nil
}

// Drift returns the account's ledger drift
func (s *Service) Drift(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.wallet.Drift(ctx, accountID)
}
