package wallet

import (
	"time"

	"github.com/google/uuid"
)

// TransactionResponse represents a ledger entry in the API
type TransactionResponse struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	VendorRef   string    `json:"vendor_ref,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// TransactionResponseFromEntity converts a ledger entry to API shape
func TransactionResponseFromEntity(e *LedgerEntry) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          e.ID,
		Category:    string(e.Category),
		Amount:      e.Amount,
		Status:      string(e.Status),
		Description: e.Description,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.VendorRef.Valid {
		resp.VendorRef = e.VendorRef.String
	}
	return resp
}

// BalanceResponse for GET /wallet/balance
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}
