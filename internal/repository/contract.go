package repository

import (
	"context"
	"time"

	"rentapi/internal/model"
)

// ContractRepository is the scanner's read-only view of rental contracts.
// Contract CRUD is owned by the back-office layer outside this core.
type ContractRepository interface {
	// ListActiveEndingBetween returns active contracts whose end date lies in
	// [from, to].
	ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]model.Contract, error)
}
