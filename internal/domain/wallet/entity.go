package wallet

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category represents the kind of balance-affecting event (matches
// ledger_category enum)
type Category string

const (
	CategoryDeposit     Category = "deposit"
	CategoryAirtime     Category = "airtime"
	CategoryData        Category = "data"
	CategoryCable       Category = "cable"
	CategoryElectricity Category = "electricity"
	CategoryBetting     Category = "betting"
	CategoryAdjustment  Category = "adjustment"
)

// Status represents ledger entry lifecycle (matches ledger_status enum).
// Pending is the only initial state; success and failed are terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsPurchase reports whether the category debits the wallet for an upstream
// service.
func (c Category) IsPurchase() bool {
	switch c {
	case CategoryAirtime, CategoryData, CategoryCable, CategoryElectricity, CategoryBetting:
		return true
	}
	return false
}

// Metadata handles NULL jsonb fields from DB
type Metadata []byte

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*m = append((*m)[0:0], v...)
	case string:
		*m = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

// LedgerEntry represents one balance-affecting event (or failed attempt).
// Amount is signed: credits are positive, debits negative. Whole naira.
type LedgerEntry struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	AccountID   uuid.UUID      `db:"account_id" json:"account_id"`
	Category    Category       `db:"category" json:"category"`
	Amount      int64          `db:"amount" json:"amount"`
	Status      Status         `db:"status" json:"status"`
	Description string         `db:"description" json:"description"`
	VendorRef   sql.NullString `db:"vendor_ref" json:"vendor_ref,omitempty"`
	Metadata    Metadata       `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the entry has reached a final status.
func (e *LedgerEntry) IsTerminal() bool {
	return e.Status == StatusSuccess || e.Status == StatusFailed
}

// Per-category metadata variants. The entry's category column is the tag;
// the jsonb column holds exactly one of these shapes, plus failure_reason
// or vendor response fields folded in on finalization.

type AirtimeMeta struct {
	Network string `json:"network"`
	Phone   string `json:"phone"`
}

type DataMeta struct {
	Network  string `json:"network"`
	Phone    string `json:"phone"`
	PlanID   string `json:"plan_id"`
	PlanName string `json:"plan_name,omitempty"`
}

type CableMeta struct {
	Provider     string `json:"provider"`
	Smartcard    string `json:"smartcard"`
	PlanID       string `json:"plan_id"`
	CustomerName string `json:"customer_name,omitempty"`
}

type ElectricityMeta struct {
	Disco        string `json:"disco"`
	MeterNumber  string `json:"meter_number"`
	MeterType    string `json:"meter_type"`
	CustomerName string `json:"customer_name,omitempty"`
	Token        string `json:"token,omitempty"`
}

type BettingMeta struct {
	Platform     string `json:"platform"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`
}

type DepositMeta struct {
	Gateway    string `json:"gateway"`
	GatewayRef string `json:"gateway_ref,omitempty"`
	Channel    string `json:"channel,omitempty"`
}

type AdjustmentMeta struct {
	AdminID uuid.UUID `json:"admin_id"`
	Reason  string    `json:"reason"`
}

// EncodeMeta marshals a metadata variant for storage
func EncodeMeta(v interface{}) Metadata {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
