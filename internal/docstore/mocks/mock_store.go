package mocks

import (
	"context"
	"io"
	"time"

	"docarchive/internal/docstore"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Store(ctx context.Context, r io.Reader, userName string, documentID int64, created time.Time, thumbWidth int) (docstore.StoreResult, error) {
	args := m.Called(ctx, r, userName, documentID, created, thumbWidth)
	return args.Get(0).(docstore.StoreResult), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, rel string) (io.ReadCloser, error) {
	args := m.Called(ctx, rel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStore) GetThumb(ctx context.Context, rel string, n int) (io.ReadCloser, error) {
	args := m.Called(ctx, rel, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, rel string) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *MockStore) RegenerateThumbs(ctx context.Context, rel string, thumbWidth int) (int, error) {
	args := m.Called(ctx, rel, thumbWidth)
	return args.Int(0), args.Error(1)
}
