package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Filter narrows ledger listings
type Filter struct {
	Category Category
	Status   Status
	Search   string
	Limit    int
	Offset   int
}

// Repository is the single authority over accounts.balance and the ledger.
// Every mutation is one database transaction: callers observe either the
// pre-state or the post-state, never a partial write.
type Repository interface {
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error)
	Reserve(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, error)
	FinalizeSuccess(ctx context.Context, entryID uuid.UUID, vendorRef string, extra Metadata) error
	FinalizeFailure(ctx context.Context, entryID uuid.UUID, reason string) error
	CreateDepositPending(ctx context.Context, accountID uuid.UUID, amount int64, desc string, meta Metadata) (*LedgerEntry, error)
	ConfirmDeposit(ctx context.Context, entryID uuid.UUID, extra Metadata) (int64, error)
	FailDeposit(ctx context.Context, entryID uuid.UUID, reason string) error
	GetEntry(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)
	List(ctx context.Context, accountID uuid.UUID, f Filter) ([]*LedgerEntry, int, error)
	ListStalePending(ctx context.Context, cutoff time.Time, deposits bool) ([]*LedgerEntry, error)
	SumSuccess(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates wallet repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (r *repository) Credit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error) {
	return r.mutate(ctx, accountID, amount, category, StatusSuccess, desc, meta, false)
}

func (r *repository) Debit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, int64, error) {
	return r.mutate(ctx, accountID, -amount, category, StatusSuccess, desc, meta, true)
}

func (r *repository) Reserve(ctx context.Context, accountID uuid.UUID, amount int64, category Category, desc string, meta Metadata) (*LedgerEntry, error) {
	entry, _, err := r.mutate(ctx, accountID, -amount, category, StatusPending, desc, meta, true)
	return entry, err
}

// mutate applies a signed balance change and records the ledger entry in one
// transaction. Debits use a conditional update so that two concurrent debits
// can never race past the balance check.
func (r *repository) mutate(ctx context.Context, accountID uuid.UUID, signedAmount int64, category Category, status Status, desc string, meta Metadata, conditional bool) (*LedgerEntry, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var newBalance int64
	if conditional {
		err = tx.QueryRowContext(ctx, `
			UPDATE accounts
			SET balance = balance + $2, updated_at = NOW()
			WHERE id = $1 AND is_active AND balance >= -$2
			RETURNING balance
		`, accountID, signedAmount).Scan(&newBalance)
	} else {
		err = tx.QueryRowContext(ctx, `
			UPDATE accounts
			SET balance = balance + $2, updated_at = NOW()
			WHERE id = $1 AND is_active
			RETURNING balance
		`, accountID, signedAmount).Scan(&newBalance)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, r.classifyRejection(ctx, accountID, -signedAmount)
		}
		return nil, 0, fmt.Errorf("update balance: %w", err)
	}

	entry := &LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Category:    category,
		Amount:      signedAmount,
		Status:      status,
		Description: desc,
		Metadata:    meta,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, account_id, category, amount, status, description, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.AccountID, entry.Category, entry.Amount, entry.Status, entry.Description, entry.Metadata, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return entry, newBalance, nil
}

// classifyRejection tells an unknown account, a disabled one and an
// insufficient balance apart after a zero-row conditional update.
func (r *repository) classifyRejection(ctx context.Context, accountID uuid.UUID, debitAmount int64) error {
	var row struct {
		Balance  int64 `db:"balance"`
		IsActive bool  `db:"is_active"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT balance, is_active FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if !row.IsActive {
		return ErrAccountDisabled
	}
	if debitAmount > 0 && row.Balance < debitAmount {
		return ErrInsufficientBalance
	}
	return ErrAccountNotFound
}

func (r *repository) FinalizeSuccess(ctx context.Context, entryID uuid.UUID, vendorRef string, extra Metadata) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = 'success',
		    vendor_ref = $2,
		    metadata = COALESCE(metadata, '{}'::jsonb) || COALESCE($3::jsonb, '{}'::jsonb),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, entryID, vendorRef, nullableMeta(extra))
	if err != nil {
		return fmt.Errorf("finalize success: %w", err)
	}
	return r.checkFinalized(ctx, result, entryID)
}

func (r *repository) FinalizeFailure(ctx context.Context, entryID uuid.UUID, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var entry LedgerEntry
	err = tx.GetContext(ctx, &entry, `
		SELECT id, account_id, category, amount, status, description, metadata, created_at, updated_at
		FROM ledger_entries WHERE id = $1 FOR UPDATE
	`, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("load entry: %w", err)
	}
	if entry.Status != StatusPending {
		return ErrEntryNotPending
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = 'failed',
		    metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('failure_reason', $2::text),
		    updated_at = NOW()
		WHERE id = $1
	`, entryID, reason)
	if err != nil {
		return fmt.Errorf("fail entry: %w", err)
	}

	// Refund the reserved amount; entry amounts are negative for debits.
	if entry.Amount < 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id = $1
		`, entry.AccountID, -entry.Amount)
		if err != nil {
			return fmt.Errorf("refund reserve: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) CreateDepositPending(ctx context.Context, accountID uuid.UUID, amount int64, desc string, meta Metadata) (*LedgerEntry, error) {
	entry := &LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Category:    CategoryDeposit,
		Amount:      amount,
		Status:      StatusPending,
		Description: desc,
		Metadata:    meta,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, account_id, category, amount, status, description, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.AccountID, entry.Category, entry.Amount, entry.Status, entry.Description, entry.Metadata, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert deposit entry: %w", err)
	}
	return entry, nil
}

// ConfirmDeposit moves a pending deposit to success and credits the balance
// in one transaction. Confirming an already-successful deposit returns the
// current balance without a second credit.
func (r *repository) ConfirmDeposit(ctx context.Context, entryID uuid.UUID, extra Metadata) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var entry LedgerEntry
	err = tx.GetContext(ctx, &entry, `
		SELECT id, account_id, category, amount, status, description, metadata, created_at, updated_at
		FROM ledger_entries WHERE id = $1 FOR UPDATE
	`, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrEntryNotFound
		}
		return 0, fmt.Errorf("load entry: %w", err)
	}

	if entry.Status == StatusSuccess {
		var balance int64
		if err := tx.GetContext(ctx, &balance, `SELECT balance FROM accounts WHERE id = $1`, entry.AccountID); err != nil {
			return 0, err
		}
		return balance, tx.Commit()
	}
	if entry.Status != StatusPending {
		return 0, ErrEntryNotPending
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = 'success',
		    metadata = COALESCE(metadata, '{}'::jsonb) || COALESCE($2::jsonb, '{}'::jsonb),
		    updated_at = NOW()
		WHERE id = $1
	`, entryID, nullableMeta(extra))
	if err != nil {
		return 0, fmt.Errorf("confirm deposit: %w", err)
	}

	var newBalance int64
	err = tx.QueryRowContext(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id = $1 RETURNING balance
	`, entry.AccountID, entry.Amount).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}

	return newBalance, tx.Commit()
}

func (r *repository) FailDeposit(ctx context.Context, entryID uuid.UUID, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = 'failed',
		    metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('failure_reason', $2::text),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, entryID, reason)
	if err != nil {
		return fmt.Errorf("fail deposit: %w", err)
	}
	return r.checkFinalized(ctx, result, entryID)
}

func (r *repository) checkFinalized(ctx context.Context, result sql.Result, entryID uuid.UUID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE id = $1)`, entryID); err != nil {
		return err
	}
	if !exists {
		return ErrEntryNotFound
	}
	return ErrEntryNotPending
}

func (r *repository) GetEntry(ctx context.Context, id uuid.UUID) (*LedgerEntry, error) {
	var entry LedgerEntry
	err := r.db.GetContext(ctx, &entry, `SELECT * FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// List returns ledger entries reverse-chronologically with the total match
// count. A nil account ID lists across all accounts (admin view).
func (r *repository) List(ctx context.Context, accountID uuid.UUID, f Filter) ([]*LedgerEntry, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if accountID != uuid.Nil {
		args = append(args, accountID)
		where += " AND account_id = $" + strconv.Itoa(len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where += " AND category = $" + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (description ILIKE $" + n + " OR category::text ILIKE $" + n + " OR COALESCE(vendor_ref, '') ILIKE $" + n + ")"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM ledger_entries "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := "SELECT * FROM ledger_entries " + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var entries []*LedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) ListStalePending(ctx context.Context, cutoff time.Time, deposits bool) ([]*LedgerEntry, error) {
	op := "!="
	if deposits {
		op = "="
	}
	query := `
		SELECT * FROM ledger_entries
		WHERE status = 'pending' AND created_at < $1 AND category ` + op + ` 'deposit'
		ORDER BY created_at ASC
		LIMIT 500
	`
	var entries []*LedgerEntry
	err := r.db.SelectContext(ctx, &entries, query, cutoff)
	return entries, err
}

func (r *repository) SumSuccess(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE account_id = $1 AND status = 'success'
	`, accountID)
	return sum, err
}

func nullableMeta(m Metadata) interface{} {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
