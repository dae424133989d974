package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

// ContractPostgres is a PostgreSQL implementation of
// repository.ContractRepository. The scanner only reads contracts; CRUD is
// owned elsewhere.
type ContractPostgres struct {
	db *sql.DB
}

// NewContractPostgres creates a new ContractPostgres repository.
func NewContractPostgres(db *sql.DB) *ContractPostgres {
	return &ContractPostgres{db: db}
}

var _ repository.ContractRepository = (*ContractPostgres)(nil)

// ListActiveEndingBetween returns active contracts with an end date inside
// the closed interval [from, to], ordered by end date ascending.
func (r *ContractPostgres) ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]model.Contract, error) {
	const q = `
		SELECT id, owner_id, room_name, tenant_name, status, start_date, end_date, created_at
		FROM contracts
		WHERE status = $1 AND end_date BETWEEN $2 AND $3
		ORDER BY end_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, model.ContractStatusActive, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contract, 0)
	for rows.Next() {
		var c model.Contract
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.RoomName,
			&c.TenantName,
			&c.Status,
			&c.StartDate,
			&c.EndDate,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
