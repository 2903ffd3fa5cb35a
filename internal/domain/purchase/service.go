package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/vtpass"
)

// Fulfiller delivers the purchased service upstream. Implemented by the live
// aggregator client and the sandbox.
type Fulfiller interface {
	Purchase(ctx context.Context, req vtpass.PurchaseRequest) (*vtpass.PurchaseResult, error)
}

// Verifier resolves a recipient identity (smartcard, meter, betting
// customer id) before funds are committed.
type Verifier interface {
	VerifyCustomer(ctx context.Context, req vtpass.VerifyRequest) (*vtpass.CustomerInfo, error)
}

// Wallet is the balance mutator surface the orchestrator needs
type Wallet interface {
	Reserve(ctx context.Context, accountID uuid.UUID, amount int64, category wallet.Category, desc string, meta wallet.Metadata) (*wallet.LedgerEntry, error)
	FinalizeSuccess(ctx context.Context, entryID uuid.UUID, vendorRef string, extra wallet.Metadata) error
	FinalizeFailure(ctx context.Context, entryID uuid.UUID, reason string) error
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// PINVerifier checks the account's transaction PIN, when one is set
type PINVerifier interface {
	VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) error
}

// Notifier records user-facing purchase notifications. Optional.
type Notifier interface {
	PurchaseSucceeded(ctx context.Context, accountID uuid.UUID, category wallet.Category, amount int64, vendorRef string)
	PurchaseFailed(ctx context.Context, accountID uuid.UUID, category wallet.Category, amount int64, reason string)
}

// Input is the normalized purchase request across all five categories
type Input struct {
	Category wallet.Category
	Amount   int64
	PIN      string

	// airtime / data
	Network string
	Phone   string

	// data / cable
	PlanID   string
	PlanName string

	// cable provider, electricity disco, betting platform
	Provider string
	// smartcard / meter number / betting customer id
	Identifier string
	MeterType  string
}

// Result is the outcome of a successful purchase
type Result struct {
	EntryID    uuid.UUID
	Category   wallet.Category
	Amount     int64
	VendorRef  string
	Token      string
	NewBalance int64
}

// Service drives one end-to-end purchase: validate, verify identity,
// reserve funds, fulfill upstream, finalize the ledger entry.
type Service struct {
	wallet    Wallet
	fulfiller Fulfiller
	verifier  Verifier
	pins      PINVerifier
	notifier  Notifier
}

// NewService creates the purchase orchestrator
func NewService(w Wallet, fulfiller Fulfiller, verifier Verifier, pins PINVerifier, notifier Notifier) *Service {
	return &Service{wallet: w, fulfiller: fulfiller, verifier: verifier, pins: pins, notifier: notifier}
}

// Purchase runs the full flow for any category. Validation and verification
// failures leave no trace; once funds are reserved the entry always reaches
// a terminal status.
func (s *Service) Purchase(ctx context.Context, accountID uuid.UUID, in Input) (*Result, error) {
	desc, ok := Lookup(in.Category)
	if !ok {
		return nil, ErrUnsupportedCategory
	}

	if in.Amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}
	if !desc.AmountFromPlan && (in.Amount < desc.MinAmount || in.Amount > desc.MaxAmount) {
		return nil, fmt.Errorf("%w: %d..%d", ErrAmountOutOfBounds, desc.MinAmount, desc.MaxAmount)
	}

	if s.pins != nil {
		if err := s.pins.VerifyPIN(ctx, accountID, in.PIN); err != nil {
			return nil, err
		}
	}

	customerName := ""
	if desc.RequiresVerification {
		info, err := s.verifier.VerifyCustomer(ctx, vtpass.VerifyRequest{
			ServiceID: serviceID(in.Category, in),
			BillerID:  in.Identifier,
			MeterType: in.MeterType,
		})
		if err != nil {
			log.Warn().
				Str("account_id", accountID.String()).
				Str("category", string(in.Category)).
				Err(err).
				Msg("Customer verification failed")
			return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, vendorMessage(err))
		}
		customerName = info.Name
	}

	entry, err := s.wallet.Reserve(ctx, accountID, in.Amount, in.Category, description(in), buildMeta(in, customerName))
	if err != nil {
		return nil, err
	}

	vendorRes, err := s.fulfiller.Purchase(ctx, vtpass.PurchaseRequest{
		ServiceID: serviceID(in.Category, in),
		RequestID: entry.ID.String(),
		Amount:    in.Amount,
		Phone:     in.Phone,
		PlanCode:  in.PlanID,
		BillerID:  in.Identifier,
		MeterType: in.MeterType,
	})
	if err != nil {
		// Vendor declines, transport errors, timeouts and malformed
		// responses all finalize the same way: refund and fail.
		reason := vendorMessage(err)
		if finErr := s.wallet.FinalizeFailure(ctx, entry.ID, reason); finErr != nil && finErr != wallet.ErrEntryNotPending {
			log.Error().Err(finErr).Str("entry_id", entry.ID.String()).Msg("Failed to finalize failed purchase")
		}
		s.notifyFailed(ctx, accountID, in, reason)
		return nil, fmt.Errorf("%w: %s", ErrFulfillmentFailed, reason)
	}

	extra := wallet.Metadata(nil)
	if vendorRes.Token != "" {
		extra = wallet.EncodeMeta(map[string]string{"token": vendorRes.Token})
	}
	if err := s.wallet.FinalizeSuccess(ctx, entry.ID, vendorRes.Reference, extra); err != nil {
		// The vendor has delivered; the reserve already holds the debit.
		// Never refund here, only log for reconciliation.
		log.Error().Err(err).Str("entry_id", entry.ID.String()).Msg("Failed to finalize successful purchase")
	}

	newBalance, err := s.wallet.Balance(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to read balance after purchase")
	}

	if s.notifier != nil {
		s.notifier.PurchaseSucceeded(ctx, accountID, in.Category, in.Amount, vendorRes.Reference)
	}

	log.Info().
		Str("account_id", accountID.String()).
		Str("category", string(in.Category)).
		Int64("amount", in.Amount).
		Str("vendor_ref", vendorRes.Reference).
		Msg("Purchase fulfilled")

	return &Result{
		EntryID:    entry.ID,
		Category:   in.Category,
		Amount:     in.Amount,
		VendorRef:  vendorRes.Reference,
		Token:      vendorRes.Token,
		NewBalance: newBalance,
	}, nil
}

// VerifyCustomer runs the standalone identity check used by the UI before a
// purchase is submitted.
func (s *Service) VerifyCustomer(ctx context.Context, req *VerifyCustomerRequest) (*vtpass.CustomerInfo, error) {
	info, err := s.verifier.VerifyCustomer(ctx, vtpass.VerifyRequest{
		ServiceID: req.Provider,
		BillerID:  req.Identifier,
		MeterType: req.MeterType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, vendorMessage(err))
	}
	return info, nil
}

func (s *Service) notifyFailed(ctx context.Context, accountID uuid.UUID, in Input, reason string) {
	if s.notifier != nil {
		s.notifier.PurchaseFailed(ctx, accountID, in.Category, in.Amount, reason)
	}
}

func buildMeta(in Input, customerName string) wallet.Metadata {
	switch in.Category {
	case wallet.CategoryAirtime:
		return wallet.EncodeMeta(wallet.AirtimeMeta{Network: in.Network, Phone: in.Phone})
	case wallet.CategoryData:
		return wallet.EncodeMeta(wallet.DataMeta{Network: in.Network, Phone: in.Phone, PlanID: in.PlanID, PlanName: in.PlanName})
	case wallet.CategoryCable:
		return wallet.EncodeMeta(wallet.CableMeta{Provider: in.Provider, Smartcard: in.Identifier, PlanID: in.PlanID, CustomerName: customerName})
	case wallet.CategoryElectricity:
		return wallet.EncodeMeta(wallet.ElectricityMeta{Disco: in.Provider, MeterNumber: in.Identifier, MeterType: in.MeterType, CustomerName: customerName})
	case wallet.CategoryBetting:
		return wallet.EncodeMeta(wallet.BettingMeta{Platform: in.Provider, CustomerID: in.Identifier, CustomerName: customerName})
	}
	return nil
}

func description(in Input) string {
	switch in.Category {
	case wallet.CategoryAirtime:
		return fmt.Sprintf("%s airtime for %s", in.Network, in.Phone)
	case wallet.CategoryData:
		return fmt.Sprintf("%s data (%s) for %s", in.Network, in.PlanID, in.Phone)
	case wallet.CategoryCable:
		return fmt.Sprintf("%s subscription for card %s", in.Provider, in.Identifier)
	case wallet.CategoryElectricity:
		return fmt.Sprintf("%s %s token for meter %s", in.Provider, in.MeterType, in.Identifier)
	case wallet.CategoryBetting:
		return fmt.Sprintf("%s wallet top-up for %s", in.Provider, in.Identifier)
	}
	return string(in.Category)
}

// vendorMessage strips the sentinel prefix so only the vendor's own words
// reach metadata and the client.
func vendorMessage(err error) string {
	if errors.Is(err, vtpass.ErrDeclined) {
		msg := err.Error()
		prefix := vtpass.ErrDeclined.Error() + ": "
		if len(msg) > len(prefix) {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}
