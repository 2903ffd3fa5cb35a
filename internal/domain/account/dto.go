package account

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,ng_phone"`
	FullName     string `json:"full_name" validate:"required,min=2,max=128"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	ReferralCode string `json:"referral_code,omitempty" validate:"omitempty,min=4,max=16"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SetPINRequest for PUT /account/pin
type SetPINRequest struct {
	PIN        string `json:"pin" validate:"required,pin"`
	CurrentPIN string `json:"current_pin,omitempty" validate:"omitempty,pin"`
}

// ChangePasswordRequest for PUT /account/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ProfileResponse is the account's own view of itself
type ProfileResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	KYCTier      int       `json:"kyc_tier"`
	ReferralCode string    `json:"referral_code"`
	Balance      int64     `json:"balance"`
	HasPIN       bool      `json:"has_pin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokensResponse carries the issued token pair
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse is the register/login/refresh payload
type AuthResponse struct {
	Account *ProfileResponse `json:"account"`
	Tokens  TokensResponse   `json:"tokens"`
}

// NewProfileResponse maps an account entity to its profile view
func NewProfileResponse(a *Account) *ProfileResponse {
	return &ProfileResponse{
		ID:           a.ID,
		Email:        a.Email,
		Phone:        a.Phone,
		FullName:     a.FullName,
		Role:         string(a.Role),
		KYCTier:      a.KYCTier,
		ReferralCode: a.ReferralCode,
		Balance:      a.Balance,
		HasPIN:       a.HasPIN(),
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
}
