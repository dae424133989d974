package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

var ErrRetentionTooShort = errors.New("retention horizon must be at least 1 day")

// ActivityListResult is the service-level DTO for paginated activity events.
type ActivityListResult struct {
	Items []model.ActivityEvent `json:"data"`
	Total int                   `json:"total"`
}

// ActivityService is the audit-log facade. Record is best-effort: audit
// logging must never break the business operation that triggered it.
type ActivityService interface {
	// Record appends an event. Failures are logged and swallowed.
	Record(ctx context.Context, ev *model.ActivityEvent)

	// Query returns filtered events newest-first with the total count.
	Query(ctx context.Context, f repository.ActivityFilter, limit, offset int) (*ActivityListResult, error)

	// Purge hard-deletes events older than the horizon and returns the count.
	Purge(ctx context.Context, now time.Time, olderThanDays int) (int64, error)
}

type activityService struct {
	repo repository.ActivityRepository
	log  *zap.Logger
}

// NewActivityService constructs a new ActivityService.
func NewActivityService(repo repository.ActivityRepository, log *zap.Logger) ActivityService {
	return &activityService{repo: repo, log: log}
}

func (s *activityService) Record(ctx context.Context, ev *model.ActivityEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, ev); err != nil {
		s.log.Error("activity write failed",
			zap.String("action", ev.Action),
			zap.String("entity_kind", ev.EntityKind),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err),
		)
	}
}

func (s *activityService) Query(ctx context.Context, f repository.ActivityFilter, limit, offset int) (*ActivityListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.Query(ctx, f, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ActivityListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *activityService) Purge(ctx context.Context, now time.Time, olderThanDays int) (int64, error) {
	if olderThanDays < 1 {
		return 0, ErrRetentionTooShort
	}
	cutoff := now.AddDate(0, 0, -olderThanDays)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info("activity log purged",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
