package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Insert(ctx context.Context, ev *model.ActivityEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockActivityRepository) Query(ctx context.Context, f repository.ActivityFilter, pq repository.PageQuery) (*repository.PageResult[model.ActivityEvent], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ActivityEvent]), args.Error(1)
}

func (m *MockActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
