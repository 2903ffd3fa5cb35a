package account

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents account role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account represents a reseller account. Balance is whole naira and only the
// wallet mutator writes it; everything else here is profile state.
type Account struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	Phone        string         `db:"phone"`
	FullName     string         `db:"full_name"`
	PasswordHash string         `db:"password_hash"`
	PINHash      sql.NullString `db:"pin_hash"`
	Role         Role           `db:"role"`
	KYCTier      int            `db:"kyc_tier"`
	ReferralCode string         `db:"referral_code"`
	ReferredBy   uuid.NullUUID  `db:"referred_by"`
	Balance      int64          `db:"balance"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// HasPIN reports whether a transaction PIN has been set
func (a *Account) HasPIN() bool {
	return a.PINHash.Valid && a.PINHash.String != ""
}
