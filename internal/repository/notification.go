package repository

import (
	"context"
	"time"

	"rentapi/internal/model"
)

// NotificationRepository defines data access for recipient-owned
// notifications.
type NotificationRepository interface {
	// Create inserts a new notification record.
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// ListByRecipient returns a recipient's notifications newest-first with
	// the total count.
	ListByRecipient(ctx context.Context, recipientID string, pq PageQuery) (*PageResult[model.Notification], error)

	// UnreadCount returns the recipient's number of unread notifications.
	UnreadCount(ctx context.Context, recipientID string) (int, error)

	// ExistsWithDedupeKey reports whether a notification carrying the exact
	// dedupe key was created at or after since.
	ExistsWithDedupeKey(ctx context.Context, dedupeKey string, since time.Time) (bool, error)

	// MarkRead flags one of the recipient's notifications as read.
	MarkRead(ctx context.Context, id, recipientID string) error

	// MarkAllRead flags all of the recipient's notifications as read and
	// returns how many rows changed.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)

	// Delete removes one of the recipient's notifications. Missing rows are
	// not an error.
	Delete(ctx context.Context, id, recipientID string) error
}
