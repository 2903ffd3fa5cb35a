package account

import "errors"

var (
	ErrNotFound             = errors.New("account not found")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrPhoneAlreadyExists   = errors.New("phone already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrInvalidReferralCode  = errors.New("unknown referral code")
	ErrRefreshTokenRequired = errors.New("refresh token required")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrPINRequired          = errors.New("transaction PIN required")
	ErrPINMismatch          = errors.New("incorrect transaction PIN")
)
