package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines account data access interface
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByReferralCode(ctx context.Context, code string) (*Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePIN(ctx context.Context, id uuid.UUID, pinHash string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, search string, limit, offset int) ([]*Account, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new account repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const accountColumns = `id, email, phone, full_name, password_hash, pin_hash, role, kyc_tier,
       referral_code, referred_by, balance, is_active, created_at, updated_at`

// Create creates a new account
func (r *repository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (id, email, phone, full_name, password_hash, role, kyc_tier, referral_code, referred_by, balance, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Email,
		a.Phone,
		a.FullName,
		a.PasswordHash,
		a.Role,
		a.KYCTier,
		a.ReferralCode,
		a.ReferredBy,
		a.Balance,
		a.IsActive,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "accounts_email_key":
				return ErrEmailAlreadyExists
			case "accounts_phone_key":
				return ErrPhoneAlreadyExists
			}
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("account repository create: %w", err)
	}

	return nil
}

// GetByID returns account by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var a Account
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &a, nil
}

// GetByEmail returns account by email
func (r *repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	var a Account
	err := r.db.GetContext(ctx, &a, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &a, nil
}

// GetByReferralCode returns account by referral code
func (r *repository) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE referral_code = $1`

	var a Account
	err := r.db.GetContext(ctx, &a, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &a, nil
}

// UpdatePassword updates the password hash
func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("account repository update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePIN updates the transaction PIN hash
func (r *repository) UpdatePIN(ctx context.Context, id uuid.UUID, pinHash string) error {
	query := `UPDATE accounts SET pin_hash = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, pinHash)
	if err != nil {
		return fmt.Errorf("account repository update pin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive enables or disables the account
func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("account repository set active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns accounts matching an optional search term, newest first
func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]*Account, int, error) {
	where := ``
	args := []interface{}{}
	if search != "" {
		where = `WHERE email ILIKE $1 OR phone ILIKE $1 OR full_name ILIKE $1 OR referral_code ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM accounts ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("account repository count: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+accountColumns+` FROM accounts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	accounts := []*Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("account repository list: %w", err)
	}

	return accounts, total, nil
}
