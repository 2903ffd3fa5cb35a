package beneficiary

import (
	"time"

	"github.com/google/uuid"
)

// Beneficiary is a saved recipient for quick repeat purchases: a phone for
// airtime/data, a smartcard, meter or betting customer id for the rest.
type Beneficiary struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AccountID   uuid.UUID `db:"account_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	ServiceType string    `db:"service_type" json:"service_type"`
	Provider    string    `db:"provider" json:"provider"`
	Identifier  string    `db:"identifier" json:"identifier"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
