package mocks

import (
	"context"

	"docarchive/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) SetTags(ctx context.Context, documentID int64, names []string) error {
	args := m.Called(ctx, documentID, names)
	return args.Error(0)
}

func (m *MockTagRepository) ForDocument(ctx context.Context, documentID int64) ([]string, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTagRepository) ForDocuments(ctx context.Context, documentIDs []int64) (map[int64][]string, error) {
	args := m.Called(ctx, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]string), args.Error(1)
}

func (m *MockTagRepository) ListForUser(ctx context.Context, userID int64) ([]model.Tag, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}
