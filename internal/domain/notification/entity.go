package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeDepositConfirmed Type = "deposit_confirmed"
	TypePurchaseSuccess  Type = "purchase_success"
	TypePurchaseFailed   Type = "purchase_failed"
	TypeAdjustment       Type = "adjustment"
)

// Notification represents an account notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	AccountID uuid.UUID       `db:"account_id" json:"account_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"-"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"-"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Data links a notification to the ledger entry that caused it
type NotificationData struct {
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	Category      string     `json:"category,omitempty"`
	Amount        *int64     `json:"amount,omitempty"`
	VendorRef     string     `json:"vendor_ref,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}
