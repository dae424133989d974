package repository

import (
	"context"
	"time"

	"rentapi/internal/model"
)

// ActivityFilter narrows an activity query. Zero values mean "any".
type ActivityFilter struct {
	ActorUserID string
	EntityKind  string
	Action      string
	From        *time.Time
	To          *time.Time
}

// ActivityRepository defines data access for the append-only audit log.
type ActivityRepository interface {
	// Insert appends one event.
	Insert(ctx context.Context, ev *model.ActivityEvent) error

	// Query returns events matching the filter newest-first with the total
	// count.
	Query(ctx context.Context, f ActivityFilter, pq PageQuery) (*PageResult[model.ActivityEvent], error)

	// DeleteOlderThan hard-deletes events created before the cutoff and
	// returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
