package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines notification data access interface
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Notification, error)
	CountUnreadByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, id, accountID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create creates a notification
func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, account_id, type, title, body, data, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query, n.ID, n.AccountID, n.Type, n.Title, n.Body, n.Data, n.IsRead)
	if err != nil {
		return fmt.Errorf("notification repository create: %w", err)
	}
	return nil
}

// ListByAccount returns notifications for an account, newest first
func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Notification, error) {
	query := `
		SELECT id, account_id, type, title, body, data, is_read, read_at, created_at
		FROM notifications
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	items := []*Notification{}
	if err := r.db.SelectContext(ctx, &items, query, accountID, limit, offset); err != nil {
		return nil, fmt.Errorf("notification repository list: %w", err)
	}
	return items, nil
}

// CountUnreadByAccount returns the unread count
func (r *repository) CountUnreadByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND is_read = FALSE`, accountID)
	return n, err
}

// MarkAsRead marks one notification as read
func (r *repository) MarkAsRead(ctx context.Context, id, accountID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE id = $1 AND account_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, accountID)
	return err
}

// MarkAllAsRead marks all of the account's notifications as read
func (r *repository) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE account_id = $1 AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, query, accountID)
	return err
}

// DeleteReadOlderThan removes read notifications created before the cutoff
func (r *repository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("notification repository cleanup: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
