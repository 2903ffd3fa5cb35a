package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/account"
)

// AdjustRequest for POST /admin/accounts/{id}/credit and /debit
type AdjustRequest struct {
	Amount int64  `json:"amount" validate:"required,gte=1"`
	Reason string `json:"reason" validate:"required,min=3,max=256"`
}

// StatusRequest for PUT /admin/accounts/{id}/status
type StatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// AccountResponse is the admin console's view of an account
type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	KYCTier      int       `json:"kyc_tier"`
	ReferralCode string    `json:"referral_code"`
	Balance      int64     `json:"balance"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdjustResponse reports the result of a manual adjustment
type AdjustResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"new_balance"`
}

// DriftResponse reports balance minus the sum of successful ledger amounts
type DriftResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Drift     int64     `json:"drift"`
}

// AccountResponseFromEntity maps an account entity to the admin view
func AccountResponseFromEntity(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		Email:        a.Email,
		Phone:        a.Phone,
		FullName:     a.FullName,
		Role:         string(a.Role),
		KYCTier:      a.KYCTier,
		ReferralCode: a.ReferralCode,
		Balance:      a.Balance,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
}
