package numbering

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rentapi/internal/model"
)

var (
	// ErrAllocationContention is returned when the retry budget is exhausted
	// without winning a sequence. The whole document-creation operation is
	// safe to retry.
	ErrAllocationContention = errors.New("sequence allocation contention")

	// ErrSequenceTaken signals that the proposed sequence lost a race to a
	// concurrent allocation. Persistence implementations translate their
	// uniqueness-violation errors into this sentinel.
	ErrSequenceTaken = errors.New("sequence already taken")
)

// maxAttempts bounds the allocate-persist retry loop.
const maxAttempts = 5

// SequenceSource reports the highest sequence already allocated in a scope.
// Scopes are implicit: the first allocation in a fresh (owner, kind, period)
// scope sees max 0 and proposes 1.
type SequenceSource interface {
	MaxSequence(ctx context.Context, ownerID string, kind model.DocumentKind, period int) (int, error)
}

// PersistFunc persists a document carrying the proposed sequence and number.
// It must return ErrSequenceTaken (possibly wrapped) when the insert loses to
// a concurrent allocation on the (owner, kind, period, sequence) constraint.
type PersistFunc func(ctx context.Context, sequence int, number string) error

// Allocator mints strictly-ordered sequence numbers per scope using
// optimistic concurrency: read the current maximum, propose max+1, and let
// the storage uniqueness constraint arbitrate races. "Read max, write max+1"
// is not atomic, so every lost race recomputes a fresh maximum before
// retrying.
type Allocator struct {
	src SequenceSource
	log *zap.Logger
}

func NewAllocator(src SequenceSource, log *zap.Logger) *Allocator {
	return &Allocator{src: src, log: log}
}

// Allocate proposes sequence numbers for the scope until persist succeeds or
// the retry budget runs out. On success it returns the winning sequence and
// its formatted document number.
func (a *Allocator) Allocate(ctx context.Context, ownerID string, kind model.DocumentKind, period int, persist PersistFunc) (int, string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		max, err := a.src.MaxSequence(ctx, ownerID, kind, period)
		if err != nil {
			return 0, "", fmt.Errorf("read max sequence: %w", err)
		}

		seq := max + 1
		number, err := Format(kind, period, seq)
		if err != nil {
			return 0, "", err
		}

		err = persist(ctx, seq, number)
		if err == nil {
			return seq, number, nil
		}
		if !errors.Is(err, ErrSequenceTaken) {
			return 0, "", err
		}

		a.log.Warn("sequence allocation lost race, retrying",
			zap.String("owner_id", ownerID),
			zap.String("kind", string(kind)),
			zap.Int("period", period),
			zap.Int("sequence", seq),
			zap.Int("attempt", attempt),
		)
	}

	return 0, "", fmt.Errorf("scope (%s, %s, %d) after %d attempts: %w",
		ownerID, kind, period, maxAttempts, ErrAllocationContention)
}
