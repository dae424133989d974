package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rentapi/internal/model"
	"rentapi/internal/repository"
	"rentapi/internal/service"
)

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, ev *model.ActivityEvent) {
	m.Called(ctx, ev)
}

func (m *MockActivityService) Query(ctx context.Context, f repository.ActivityFilter, limit, offset int) (*service.ActivityListResult, error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActivityListResult), args.Error(1)
}

func (m *MockActivityService) Purge(ctx context.Context, now time.Time, olderThanDays int) (int64, error) {
	args := m.Called(ctx, now, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}
