package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

const notificationColumns = `id, recipient_id, title, body, subject_ref, dedupe_key, read, created_at`

// Create inserts a new notification row.
func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, recipient_id, title, body, subject_ref, dedupe_key, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + notificationColumns
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.RecipientID,
		n.Title,
		n.Body,
		n.SubjectRef,
		n.DedupeKey,
		n.Read,
		n.CreatedAt,
	)
	var out model.Notification
	if err := row.Scan(
		&out.ID,
		&out.RecipientID,
		&out.Title,
		&out.Body,
		&out.SubjectRef,
		&out.DedupeKey,
		&out.Read,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByRecipient returns the recipient's notifications newest-first.
func (r *NotificationPostgres) ListByRecipient(ctx context.Context, recipientID string, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	const qCount = `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, recipientID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, recipientID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Title,
			&n.Body,
			&n.SubjectRef,
			&n.DedupeKey,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Notification]{Items: items, Total: total}, nil
}

// UnreadCount returns the recipient's unread notification count.
func (r *NotificationPostgres) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`
	var n int
	if err := r.db.QueryRowContext(ctx, q, recipientID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ExistsWithDedupeKey reports whether a notification with the exact dedupe
// key was created at or after since.
func (r *NotificationPostgres) ExistsWithDedupeKey(ctx context.Context, dedupeKey string, since time.Time) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM notifications WHERE dedupe_key = $1 AND created_at >= $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, dedupeKey, since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkRead flags one notification as read, scoped to its recipient.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id, recipientID string) error {
	const q = `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, recipientID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead flags all of the recipient's notifications as read.
func (r *NotificationPostgres) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	const q = `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`
	res, err := r.db.ExecContext(ctx, q, recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes one of the recipient's notifications. A missing row is not
// an error.
func (r *NotificationPostgres) Delete(ctx context.Context, id, recipientID string) error {
	const q = `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`
	_, err := r.db.ExecContext(ctx, q, id, recipientID)
	return err
}
