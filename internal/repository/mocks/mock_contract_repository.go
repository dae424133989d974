package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentapi/internal/model"
)

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]model.Contract, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contract), args.Error(1)
}
