package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

// ActivityPostgres is a PostgreSQL implementation of
// repository.ActivityRepository. Metadata is stored as JSONB.
type ActivityPostgres struct {
	db *sql.DB
}

// NewActivityPostgres creates a new ActivityPostgres repository.
func NewActivityPostgres(db *sql.DB) *ActivityPostgres {
	return &ActivityPostgres{db: db}
}

var _ repository.ActivityRepository = (*ActivityPostgres)(nil)

// Insert appends one activity event.
func (r *ActivityPostgres) Insert(ctx context.Context, ev *model.ActivityEvent) error {
	meta, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	const q = `
		INSERT INTO activity_events
			(id, actor_user_id, action, entity_kind, entity_id, entity_name, description, metadata, client_ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, q,
		ev.ID,
		ev.ActorUserID,
		ev.Action,
		ev.EntityKind,
		ev.EntityID,
		ev.EntityName,
		ev.Description,
		meta,
		ev.ClientIP,
		ev.UserAgent,
		ev.CreatedAt,
	)
	return err
}

// Query returns filtered events newest-first with the total count. The WHERE
// clause is assembled from the non-zero filter fields.
func (r *ActivityPostgres) Query(ctx context.Context, f repository.ActivityFilter, pq repository.PageQuery) (*repository.PageResult[model.ActivityEvent], error) {
	where, args := buildActivityWhere(f)

	qCount := `SELECT COUNT(*) FROM activity_events` + where
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `
		SELECT id, actor_user_id, action, entity_kind, entity_id, entity_name, description, metadata, client_ip, user_agent, created_at
		FROM activity_events` + where + fmt.Sprintf(`
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ActivityEvent, 0)
	for rows.Next() {
		var ev model.ActivityEvent
		var meta []byte
		if err := rows.Scan(
			&ev.ID,
			&ev.ActorUserID,
			&ev.Action,
			&ev.EntityKind,
			&ev.EntityID,
			&ev.EntityName,
			&ev.Description,
			&meta,
			&ev.ClientIP,
			&ev.UserAgent,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ActivityEvent]{Items: items, Total: total}, nil
}

// DeleteOlderThan hard-deletes events created before the cutoff.
func (r *ActivityPostgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM activity_events WHERE created_at < $1`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func buildActivityWhere(f repository.ActivityFilter) (string, []any) {
	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ActorUserID != "" {
		add("actor_user_id = $%d", f.ActorUserID)
	}
	if f.EntityKind != "" {
		add("entity_kind = $%d", f.EntityKind)
	}
	if f.Action != "" {
		add("action = $%d", f.Action)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
