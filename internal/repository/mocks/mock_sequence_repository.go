package mocks

import (
	"context"

	"docarchive/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) EnsureExists(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSequenceRepository) Reserve(ctx context.Context, userID int64, n int64) (int64, error) {
	args := m.Called(ctx, userID, n)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepository) Get(ctx context.Context, userID int64) (*model.NumberSequence, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NumberSequence), args.Error(1)
}
