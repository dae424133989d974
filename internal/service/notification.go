package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

var ErrRecipientRequired = errors.New("recipient id is required")

// NotificationListResult is the service-level DTO for a recipient's inbox.
type NotificationListResult struct {
	Items  []model.Notification `json:"data"`
	Total  int                  `json:"total"`
	Unread int                  `json:"unread"`
}

// NotificationService is the read/write collaborator consumed by clients.
// The scheduler is the exclusive writer of reminder and report
// notifications; this service only reads and toggles state.
type NotificationService interface {
	// List returns the recipient's notifications newest-first plus the
	// unread count.
	List(ctx context.Context, recipientID string, limit, offset int) (*NotificationListResult, error)

	// MarkRead flags one notification as read.
	MarkRead(ctx context.Context, id, recipientID string) error

	// MarkAllRead flags every unread notification as read and returns how
	// many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)

	// Delete removes one notification.
	Delete(ctx context.Context, id, recipientID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{repo: repo, log: log}
}

func (s *notificationService) List(ctx context.Context, recipientID string, limit, offset int) (*NotificationListResult, error) {
	if recipientID == "" {
		return nil, ErrRecipientRequired
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByRecipient(ctx, recipientID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{Items: res.Items, Total: res.Total, Unread: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	if id == "" {
		return ErrIDRequired
	}
	if recipientID == "" {
		return ErrRecipientRequired
	}
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if recipientID == "" {
		return 0, ErrRecipientRequired
	}
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *notificationService) Delete(ctx context.Context, id, recipientID string) error {
	if id == "" {
		return ErrIDRequired
	}
	if recipientID == "" {
		return ErrRecipientRequired
	}
	return s.repo.Delete(ctx, id, recipientID)
}
