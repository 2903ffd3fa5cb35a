package notification

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
)

// Publisher pushes a freshly created notification to connected clients
type Publisher interface {
	NotifyNew(ctx context.Context, accountID uuid.UUID, n *Notification, unreadCount int) error
}

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher Publisher // nil if realtime disabled
}

// NewService creates notification service
func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Create creates a notification and pushes it over the realtime channel
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		unread, _ := s.repo.CountUnreadByAccount(ctx, accountID)
		if err := s.publisher.NotifyNew(ctx, accountID, n, unread); err != nil {
			log.Debug().Err(err).Str("account_id", accountID.String()).Msg("Realtime notify failed")
		}
	}

	return n, nil
}

// List returns notifications for an account
func (s *Service) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByAccount(ctx, accountID)
}

// MarkAsRead marks a single notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, accountID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, accountID)
}

// MarkAllAsRead marks all of the account's notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

// --- Helper methods for wallet events ---

// DepositConfirmed notifies the account that funding settled
func (s *Service) DepositConfirmed(ctx context.Context, accountID uuid.UUID, amount int64) {
	s.Create(ctx, accountID, TypeDepositConfirmed,
		"Wallet funded",
		fmt.Sprintf("Your wallet has been credited with ₦%d", amount),
		&NotificationData{Category: string(wallet.CategoryDeposit), Amount: &amount},
	)
}

// PurchaseSucceeded notifies the account that a purchase was delivered
func (s *Service) PurchaseSucceeded(ctx context.Context, accountID uuid.UUID, category wallet.Category, amount int64, vendorRef string) {
	s.Create(ctx, accountID, TypePurchaseSuccess,
		fmt.Sprintf("%s purchase successful", titleCase(string(category))),
		fmt.Sprintf("₦%d %s purchase delivered", amount, category),
		&NotificationData{Category: string(category), Amount: &amount, VendorRef: vendorRef},
	)
}

// PurchaseFailed notifies the account that a purchase failed and was refunded
func (s *Service) PurchaseFailed(ctx context.Context, accountID uuid.UUID, category wallet.Category, amount int64, reason string) {
	s.Create(ctx, accountID, TypePurchaseFailed,
		fmt.Sprintf("%s purchase failed", titleCase(string(category))),
		fmt.Sprintf("₦%d was refunded to your wallet: %s", amount, reason),
		&NotificationData{Category: string(category), Amount: &amount},
	)
}

// AdjustmentApplied notifies the account of a manual balance adjustment
func (s *Service) AdjustmentApplied(ctx context.Context, accountID uuid.UUID, amount int64, reason string) {
	title := "Wallet credited"
	if amount < 0 {
		title = "Wallet debited"
	}
	s.Create(ctx, accountID, TypeAdjustment, title, reason,
		&NotificationData{Category: string(wallet.CategoryAdjustment), Amount: &amount},
	)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
