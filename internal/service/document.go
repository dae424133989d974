package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rentapi/internal/model"
	"rentapi/internal/numbering"
	"rentapi/internal/repository"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrOwnerRequired   = errors.New("owner id is required")
	ErrAmountInvalid   = errors.New("amount must be positive")
	ErrDueDateRequired = errors.New("invoices require a due date")
	ErrNotFound        = errors.New("not found")
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// CreateDocumentInput carries the fields for minting a new invoice or
// receipt. Actor fields feed the audit trail.
type CreateDocumentInput struct {
	OwnerID  string
	RoomName string
	Amount   decimal.Decimal
	DueDate  *time.Time

	ActorUserID string
	ClientIP    string
	UserAgent   string
}

// DocumentService mints numbered documents and reads them back.
type DocumentService interface {
	// CreateInvoice allocates the next invoice number in the owner's current
	// period and persists the document. Surfaces
	// numbering.ErrAllocationContention when the retry budget runs out; the
	// whole call is safe to retry.
	CreateInvoice(ctx context.Context, in CreateDocumentInput) (*model.Document, error)

	// CreateReceipt is CreateInvoice for receipts; receipts carry no due date.
	CreateReceipt(ctx context.Context, in CreateDocumentInput) (*model.Document, error)

	// List returns an owner's documents of one kind, newest first.
	List(ctx context.Context, ownerID string, kind model.DocumentKind, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)
}

type documentService struct {
	repo     repository.DocumentRepository
	alloc    *numbering.Allocator
	activity ActivityService
	now      func() time.Time
	log      *zap.Logger
}

// NewDocumentService constructs a new DocumentService. now defaults to
// time.Now when nil; tests inject a fixed clock.
func NewDocumentService(repo repository.DocumentRepository, alloc *numbering.Allocator, activity ActivityService, now func() time.Time, log *zap.Logger) DocumentService {
	if now == nil {
		now = time.Now
	}
	return &documentService{repo: repo, alloc: alloc, activity: activity, now: now, log: log}
}

func (s *documentService) CreateInvoice(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	if in.DueDate == nil {
		return nil, ErrDueDateRequired
	}
	return s.create(ctx, model.KindInvoice, model.InvoiceStatusPending, in)
}

func (s *documentService) CreateReceipt(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	in.DueDate = nil
	return s.create(ctx, model.KindReceipt, model.ReceiptStatusIssued, in)
}

func (s *documentService) create(ctx context.Context, kind model.DocumentKind, status string, in CreateDocumentInput) (*model.Document, error) {
	if in.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if !in.Amount.IsPositive() {
		return nil, ErrAmountInvalid
	}

	now := s.now().UTC()
	period := numbering.PeriodOf(now)

	var created *model.Document
	_, _, err := s.alloc.Allocate(ctx, in.OwnerID, kind, period, func(ctx context.Context, seq int, number string) error {
		doc := &model.Document{
			ID:        uuid.NewString(),
			OwnerID:   in.OwnerID,
			Kind:      kind,
			Number:    number,
			Period:    period,
			Sequence:  seq,
			RoomName:  in.RoomName,
			Amount:    in.Amount,
			Status:    status,
			DueDate:   in.DueDate,
			CreatedAt: now,
		}
		stored, err := s.repo.Create(ctx, doc)
		if err != nil {
			return err
		}
		created = stored
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}

	s.activity.Record(ctx, &model.ActivityEvent{
		ActorUserID: in.ActorUserID,
		Action:      model.ActionCreate,
		EntityKind:  string(kind),
		EntityID:    created.ID,
		EntityName:  created.Number,
		Description: fmt.Sprintf("%s %s created for room %s", kind, created.Number, created.RoomName),
		Metadata: map[string]string{
			"amount": created.Amount.String(),
		},
		ClientIP:  in.ClientIP,
		UserAgent: in.UserAgent,
		CreatedAt: now,
	})

	s.log.Info("document created",
		zap.String("kind", string(kind)),
		zap.String("number", created.Number),
		zap.String("owner_id", created.OwnerID),
	)
	return created, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, ownerID string, kind model.DocumentKind, limit, offset int) (*DocumentListResult, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, ownerID, kind, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}
