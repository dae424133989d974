package deadline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"rentapi/internal/repository"
)

// SubjectKind discriminates the entity types a deadline can belong to.
type SubjectKind string

const (
	SubjectInvoice  SubjectKind = "invoice"
	SubjectContract SubjectKind = "contract"
)

// Subject is the scanner's view of an entity with an upcoming deadline.
// Name is the human-facing reference: the document number for invoices, the
// room name for contracts.
type Subject struct {
	Kind     SubjectKind
	ID       string
	Name     string
	OwnerID  string
	Deadline time.Time
	Amount   decimal.Decimal
}

// Candidate is a classified subject produced by one scan.
type Candidate struct {
	Subject       Subject
	DaysRemaining int
	Tier          Tier
}

// Scanner enumerates pending invoices and active contracts whose deadline
// falls inside the configured lead-time windows.
type Scanner struct {
	docs      repository.DocumentRepository
	contracts repository.ContractRepository
	th        Thresholds
}

func NewScanner(docs repository.DocumentRepository, contracts repository.ContractRepository, th Thresholds) *Scanner {
	return &Scanner{docs: docs, contracts: contracts, th: th}
}

// Scan classifies every active subject due within the widest window,
// sorted by deadline ascending. Ordering is stable within one invocation;
// it carries no semantic weight.
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]Candidate, error) {
	horizon := now.AddDate(0, 0, s.th.Upcoming)

	invoices, err := s.docs.ListPendingDueBetween(ctx, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("scan invoices: %w", err)
	}
	contracts, err := s.contracts.ListActiveEndingBetween(ctx, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("scan contracts: %w", err)
	}

	candidates := make([]Candidate, 0, len(invoices)+len(contracts))
	for _, inv := range invoices {
		if inv.DueDate == nil {
			continue
		}
		if c, ok := s.classify(Subject{
			Kind:     SubjectInvoice,
			ID:       inv.ID,
			Name:     inv.Number,
			OwnerID:  inv.OwnerID,
			Deadline: *inv.DueDate,
			Amount:   inv.Amount,
		}, now); ok {
			candidates = append(candidates, c)
		}
	}
	for _, ct := range contracts {
		if c, ok := s.classify(Subject{
			Kind:     SubjectContract,
			ID:       ct.ID,
			Name:     ct.RoomName,
			OwnerID:  ct.OwnerID,
			Deadline: ct.EndDate,
		}, now); ok {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Subject.Deadline.Before(candidates[j].Subject.Deadline)
	})

	return candidates, nil
}

func (s *Scanner) classify(subject Subject, now time.Time) (Candidate, bool) {
	days := DaysRemaining(now, subject.Deadline)
	tier, ok := Classify(days, s.th)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{Subject: subject, DaysRemaining: days, Tier: tier}, true
}
