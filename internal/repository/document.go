package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentapi/internal/model"
)

// PeriodSummary aggregates one owner's documents for one numbering period.
// It feeds the monthly report.
type PeriodSummary struct {
	InvoiceCount int
	ReceiptCount int
	InvoiceTotal decimal.Decimal
	ReceiptTotal decimal.Decimal
}

// DocumentRepository defines data access for numbered documents using SQL
// queries only. No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record. It must return
	// numbering.ErrSequenceTaken (wrapped) when the insert violates the
	// (owner_id, kind, period, sequence) uniqueness constraint.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated page of an owner's documents of one kind,
	// newest first, with the total row count.
	List(ctx context.Context, ownerID string, kind model.DocumentKind, pq PageQuery) (*PageResult[model.Document], error)

	// MaxSequence returns the highest sequence allocated in the scope, or 0
	// when the scope has no documents yet.
	MaxSequence(ctx context.Context, ownerID string, kind model.DocumentKind, period int) (int, error)

	// ListPendingDueBetween returns pending invoices whose due date lies in
	// [from, to].
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]model.Document, error)

	// PeriodSummary aggregates an owner's document counts and totals for a
	// period.
	PeriodSummary(ctx context.Context, ownerID string, period int) (*PeriodSummary, error)

	// ListOwnerIDs returns the distinct owners holding at least one document.
	ListOwnerIDs(ctx context.Context) ([]string, error)
}
