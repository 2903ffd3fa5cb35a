package funding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/paystack"
)

// MinDeposit is the smallest accepted funding amount in naira
const MinDeposit = 100

// Gateway is the card-payment surface the funding flow needs
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
}

// Wallet is the ledger surface the funding flow needs
type Wallet interface {
	CreateDepositPending(ctx context.Context, accountID uuid.UUID, amount int64, desc string, meta wallet.Metadata) (*wallet.LedgerEntry, error)
	ConfirmDeposit(ctx context.Context, entryID uuid.UUID, extra wallet.Metadata) (int64, error)
	FailDeposit(ctx context.Context, entryID uuid.UUID, reason string) error
	Entry(ctx context.Context, id uuid.UUID) (*wallet.LedgerEntry, error)
}

// Accounts resolves the email the gateway requires on checkout
type Accounts interface {
	Email(ctx context.Context, accountID uuid.UUID) (string, error)
}

// Notifier records user-facing funding notifications. Optional.
type Notifier interface {
	DepositConfirmed(ctx context.Context, accountID uuid.UUID, amount int64)
}

// Service drives wallet funding: create a pending deposit, hand the user to
// the gateway's hosted checkout, credit on confirmation. The ledger entry ID
// doubles as the gateway reference so the webhook can find its deposit.
type Service struct {
	wallet      Wallet
	gateway     Gateway
	accounts    Accounts
	notifier    Notifier
	secretKey   string
	callbackURL string
}

// NewService creates the funding service
func NewService(w Wallet, gateway Gateway, accounts Accounts, notifier Notifier, secretKey, callbackURL string) *Service {
	return &Service{
		wallet:      w,
		gateway:     gateway,
		accounts:    accounts,
		notifier:    notifier,
		secretKey:   secretKey,
		callbackURL: callbackURL,
	}
}

// Session is a hosted checkout handoff
type Session struct {
	Reference        uuid.UUID
	AuthorizationURL string
	AccessCode       string
	Amount           int64
}

// Initialize creates a pending deposit and a gateway checkout session.
// Amounts are whole naira here; the gateway speaks kobo.
func (s *Service) Initialize(ctx context.Context, accountID uuid.UUID, amount int64) (*Session, error) {
	if amount < MinDeposit {
		return nil, fmt.Errorf("%w: minimum is %d", ErrDepositTooSmall, MinDeposit)
	}

	email, err := s.accounts.Email(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entry, err := s.wallet.CreateDepositPending(ctx, accountID, amount,
		"Wallet funding via Paystack",
		wallet.EncodeMeta(wallet.DepositMeta{Gateway: "paystack"}))
	if err != nil {
		return nil, err
	}

	init, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountKobo:  amount * 100,
		Reference:   entry.ID.String(),
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		if failErr := s.wallet.FailDeposit(ctx, entry.ID, "gateway initialization failed"); failErr != nil {
			log.Error().Err(failErr).Str("entry_id", entry.ID.String()).Msg("Failed to fail deposit after gateway error")
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailed, err)
	}

	log.Info().
		Str("account_id", accountID.String()).
		Str("reference", entry.ID.String()).
		Int64("amount", amount).
		Msg("Deposit initialized")

	return &Session{
		Reference:        entry.ID,
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Amount:           amount,
	}, nil
}

// HandleWebhook processes a gateway delivery. Signature is checked against
// the raw body before anything is parsed. Confirmation is idempotent, so
// redelivered events credit at most once.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !paystack.VerifySignature(body, signature, s.secretKey) {
		return ErrBadSignature
	}

	event, err := paystack.ParseWebhook(body)
	if err != nil {
		return fmt.Errorf("malformed webhook body: %w", err)
	}
	if event.Event != "charge.success" {
		log.Debug().Str("event", event.Event).Msg("Ignoring webhook event")
		return nil
	}

	entryID, err := uuid.Parse(event.Data.Reference)
	if err != nil {
		return ErrUnknownReference
	}

	return s.settle(ctx, entryID, event.Data.AmountKobo, event.Data.Channel, "webhook")
}

// VerifyDeposit is the client-driven fallback to the webhook: poll the
// gateway for the reference and settle the deposit accordingly.
func (s *Service) VerifyDeposit(ctx context.Context, accountID, entryID uuid.UUID) (*wallet.LedgerEntry, error) {
	entry, err := s.wallet.Entry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.AccountID != accountID || entry.Category != wallet.CategoryDeposit {
		return nil, wallet.ErrEntryNotFound
	}
	if entry.IsTerminal() {
		return entry, nil
	}

	res, err := s.gateway.Verify(ctx, entryID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailed, err)
	}

	switch res.Status {
	case "success":
		if err := s.settle(ctx, entryID, res.AmountKobo, res.Channel, "verify"); err != nil {
			return nil, err
		}
	case "failed", "abandoned":
		if err := s.wallet.FailDeposit(ctx, entryID, "gateway reported "+res.Status); err != nil && err != wallet.ErrEntryNotPending {
			return nil, err
		}
	}

	return s.wallet.Entry(ctx, entryID)
}

func (s *Service) settle(ctx context.Context, entryID uuid.UUID, amountKobo int64, channel, via string) error {
	entry, err := s.wallet.Entry(ctx, entryID)
	if err != nil {
		if err == wallet.ErrEntryNotFound {
			return ErrUnknownReference
		}
		return err
	}
	if entry.Category != wallet.CategoryDeposit {
		return ErrUnknownReference
	}
	// Redelivery of a settled deposit is acknowledged without a second
	// credit or a second notification.
	if entry.IsTerminal() {
		return nil
	}

	// Credit what was charged, never more than what was asked. A short
	// payment fails the deposit for operator review.
	paid := amountKobo / 100
	if paid < entry.Amount {
		reason := fmt.Sprintf("amount mismatch: charged %d, expected %d", paid, entry.Amount)
		if err := s.wallet.FailDeposit(ctx, entryID, reason); err != nil && err != wallet.ErrEntryNotPending {
			return err
		}
		log.Warn().Str("entry_id", entryID.String()).Str("reason", reason).Msg("Deposit failed on settlement")
		return nil
	}

	extra := wallet.EncodeMeta(map[string]string{"gateway_ref": entryID.String(), "channel": channel})
	balance, err := s.wallet.ConfirmDeposit(ctx, entryID, extra)
	if err != nil {
		return err
	}

	log.Info().
		Str("entry_id", entryID.String()).
		Str("account_id", entry.AccountID.String()).
		Int64("amount", entry.Amount).
		Int64("balance", balance).
		Str("via", via).
		Msg("Deposit confirmed")

	if s.notifier != nil {
		s.notifier.DepositConfirmed(ctx, entry.AccountID, entry.Amount)
	}
	return nil
}
