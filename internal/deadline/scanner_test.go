package deadline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentapi/internal/model"
	repoMocks "rentapi/internal/repository/mocks"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestScanner_ClassifiesAndSortsByDeadline(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)
	horizon := now.AddDate(0, 0, 30)

	mDocs := new(repoMocks.MockDocumentRepository)
	mContracts := new(repoMocks.MockContractRepository)

	mDocs.On("ListPendingDueBetween", ctx, now, horizon).Return([]model.Document{
		{
			ID:      "inv-1",
			OwnerID: "owner-1",
			Kind:    model.KindInvoice,
			Number:  "INV-202507-0001",
			Amount:  decimal.NewFromInt(18000),
			Status:  model.InvoiceStatusPending,
			DueDate: datePtr(now.Add(72 * time.Hour)), // 3 days -> near
		},
		{
			ID:      "inv-2",
			OwnerID: "owner-1",
			Kind:    model.KindInvoice,
			Number:  "INV-202507-0002",
			Amount:  decimal.NewFromInt(25000),
			Status:  model.InvoiceStatusPending,
			DueDate: datePtr(now.Add(20 * time.Hour)), // <=1 day -> imminent
		},
		{
			// No due date recorded; skipped.
			ID:      "inv-3",
			OwnerID: "owner-2",
			Kind:    model.KindInvoice,
			Number:  "INV-202507-0003",
			Amount:  decimal.NewFromInt(1000),
			Status:  model.InvoiceStatusPending,
		},
	}, nil)

	mContracts.On("ListActiveEndingBetween", ctx, now, horizon).Return([]model.Contract{
		{
			ID:       "ct-1",
			OwnerID:  "owner-2",
			RoomName: "A-101",
			Status:   model.ContractStatusActive,
			EndDate:  now.AddDate(0, 0, 14), // 14 days -> upcoming
		},
	}, nil)

	s := NewScanner(mDocs, mContracts, DefaultThresholds())
	got, err := s.Scan(ctx, now)

	require.NoError(t, err)
	require.Len(t, got, 3)

	// Sorted by deadline ascending.
	assert.Equal(t, "inv-2", got[0].Subject.ID)
	assert.Equal(t, TierImminent, got[0].Tier)
	assert.Equal(t, 1, got[0].DaysRemaining)

	assert.Equal(t, "inv-1", got[1].Subject.ID)
	assert.Equal(t, TierNear, got[1].Tier)
	assert.Equal(t, 3, got[1].DaysRemaining)
	assert.Equal(t, "INV-202507-0001", got[1].Subject.Name)

	assert.Equal(t, "ct-1", got[2].Subject.ID)
	assert.Equal(t, SubjectContract, got[2].Subject.Kind)
	assert.Equal(t, TierUpcoming, got[2].Tier)
	assert.Equal(t, "A-101", got[2].Subject.Name)

	mDocs.AssertExpectations(t)
	mContracts.AssertExpectations(t)
}

func TestScanner_ExactThresholdTieBreaks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	horizon := now.AddDate(0, 0, 30)

	mDocs := new(repoMocks.MockDocumentRepository)
	mContracts := new(repoMocks.MockContractRepository)

	mDocs.On("ListPendingDueBetween", ctx, now, horizon).Return([]model.Document{
		{ID: "due-1d", OwnerID: "o", Kind: model.KindInvoice, Number: "INV-202507-0001",
			Amount: decimal.NewFromInt(100), DueDate: datePtr(now.AddDate(0, 0, 1))},
		{ID: "due-7d", OwnerID: "o", Kind: model.KindInvoice, Number: "INV-202507-0002",
			Amount: decimal.NewFromInt(100), DueDate: datePtr(now.AddDate(0, 0, 7))},
	}, nil)
	mContracts.On("ListActiveEndingBetween", ctx, now, horizon).Return([]model.Contract{}, nil)

	s := NewScanner(mDocs, mContracts, DefaultThresholds())
	got, err := s.Scan(ctx, now)

	require.NoError(t, err)
	require.Len(t, got, 2)

	// Exactly 1 day remaining is IMMINENT, not NEAR.
	assert.Equal(t, "due-1d", got[0].Subject.ID)
	assert.Equal(t, TierImminent, got[0].Tier)

	// Exactly 7 days remaining is NEAR, not UPCOMING.
	assert.Equal(t, "due-7d", got[1].Subject.ID)
	assert.Equal(t, TierNear, got[1].Tier)
}

func TestScanner_PropagatesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)

	mDocs := new(repoMocks.MockDocumentRepository)
	mContracts := new(repoMocks.MockContractRepository)
	mDocs.On("ListPendingDueBetween", ctx, now, now.AddDate(0, 0, 30)).
		Return(nil, errors.New("db down"))

	s := NewScanner(mDocs, mContracts, DefaultThresholds())
	_, err := s.Scan(ctx, now)

	assert.ErrorContains(t, err, "scan invoices")
	mContracts.AssertNotCalled(t, "ListActiveEndingBetween")
}
