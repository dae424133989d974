package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentapi/internal/model"
	"rentapi/internal/numbering"
	"rentapi/internal/repository"
)

// scopeSequenceConstraint is the unique index arbitrating sequence races.
const scopeSequenceConstraint = "ux_documents_scope_sequence"

// DocumentPostgres is a PostgreSQL implementation of
// repository.DocumentRepository. It uses database/sql with parameterized
// queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, owner_id, kind, number, period, sequence, room_name, amount, status, due_date, created_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Kind,
		&d.Number,
		&d.Period,
		&d.Sequence,
		&d.RoomName,
		&d.Amount,
		&d.Status,
		&d.DueDate,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row. A unique-violation on the scope
// constraint is translated into numbering.ErrSequenceTaken so the allocator
// can retry with a fresh maximum.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, owner_id, kind, number, period, sequence, room_name, amount, status, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OwnerID,
		doc.Kind,
		doc.Number,
		doc.Period,
		doc.Sequence,
		doc.RoomName,
		doc.Amount,
		doc.Status,
		doc.DueDate,
		doc.CreatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		if isUniqueViolation(err, scopeSequenceConstraint) {
			return nil, fmt.Errorf("%w: %v", numbering.ErrSequenceTaken, err)
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns an owner's documents of one kind using LIMIT/OFFSET
// pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, ownerID string, kind model.DocumentKind, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE owner_id = $1 AND kind = $2`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID, kind).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1 AND kind = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, kind, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// MaxSequence reads the scope's current maximum. COALESCE keeps a fresh
// scope at 0 so the first allocation proposes 1.
func (r *DocumentPostgres) MaxSequence(ctx context.Context, ownerID string, kind model.DocumentKind, period int) (int, error) {
	const q = `
		SELECT COALESCE(MAX(sequence), 0)
		FROM documents
		WHERE owner_id = $1 AND kind = $2 AND period = $3
	`
	var max int
	if err := r.db.QueryRowContext(ctx, q, ownerID, kind, period).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// ListPendingDueBetween returns pending invoices with a due date inside the
// closed interval [from, to], ordered by due date ascending.
func (r *DocumentPostgres) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE kind = $1 AND status = $2 AND due_date BETWEEN $3 AND $4
		ORDER BY due_date ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, model.KindInvoice, model.InvoiceStatusPending, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// PeriodSummary aggregates one owner's counts and totals for a period.
func (r *DocumentPostgres) PeriodSummary(ctx context.Context, ownerID string, period int) (*repository.PeriodSummary, error) {
	const q = `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'invoice'),
			COUNT(*) FILTER (WHERE kind = 'receipt'),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'invoice'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'receipt'), 0)
		FROM documents
		WHERE owner_id = $1 AND period = $2
	`
	var s repository.PeriodSummary
	if err := r.db.QueryRowContext(ctx, q, ownerID, period).Scan(
		&s.InvoiceCount,
		&s.ReceiptCount,
		&s.InvoiceTotal,
		&s.ReceiptTotal,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListOwnerIDs returns every owner that holds at least one document.
func (r *DocumentPostgres) ListOwnerIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT owner_id FROM documents ORDER BY owner_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
