package beneficiary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines beneficiary data access interface
type Repository interface {
	Create(ctx context.Context, b *Beneficiary) error
	GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, serviceType string) ([]*Beneficiary, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new beneficiary repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create creates a beneficiary
func (r *repository) Create(ctx context.Context, b *Beneficiary) error {
	query := `
		INSERT INTO beneficiaries (id, account_id, name, service_type, provider, identifier)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, b.ID, b.AccountID, b.Name, b.ServiceType, b.Provider, b.Identifier)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadySaved
		}
		return fmt.Errorf("beneficiary repository create: %w", err)
	}

	return nil
}

// GetByID returns beneficiary by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	query := `SELECT id, account_id, name, service_type, provider, identifier, created_at FROM beneficiaries WHERE id = $1`

	var b Beneficiary
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &b, nil
}

// ListByAccount returns the account's beneficiaries, optionally one service type
func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, serviceType string) ([]*Beneficiary, error) {
	query := `SELECT id, account_id, name, service_type, provider, identifier, created_at
		FROM beneficiaries WHERE account_id = $1`
	args := []interface{}{accountID}

	if serviceType != "" {
		query += ` AND service_type = $2`
		args = append(args, serviceType)
	}
	query += ` ORDER BY created_at DESC`

	items := []*Beneficiary{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("beneficiary repository list: %w", err)
	}

	return items, nil
}

// CountByAccount returns how many beneficiaries the account has saved
func (r *repository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM beneficiaries WHERE account_id = $1`, accountID)
	return n, err
}

// Delete removes a beneficiary
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM beneficiaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("beneficiary repository delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
