package mocks

import (
	"context"
	"io"

	"docarchive/internal/model"
	"docarchive/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, user *model.User, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, user, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, user *model.User, page int) (*service.DocumentPage, error) {
	args := m.Called(ctx, user, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentPage), args.Error(1)
}

func (m *MockDocumentService) Search(ctx context.Context, user *model.User, tagString string, page int) (*service.DocumentPage, error) {
	args := m.Called(ctx, user, tagString, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentPage), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, user *model.User, id int64) (*model.Document, error) {
	args := m.Called(ctx, user, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) UpdateProperties(ctx context.Context, user *model.User, id int64, in service.PropertiesInput) (*model.Document, error) {
	args := m.Called(ctx, user, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, user *model.User, id int64) error {
	args := m.Called(ctx, user, id)
	return args.Error(0)
}

func (m *MockDocumentService) Download(ctx context.Context, user *model.User, id int64) (io.ReadCloser, *model.Document, error) {
	args := m.Called(ctx, user, id)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	var doc *model.Document
	if v := args.Get(1); v != nil {
		doc = v.(*model.Document)
	}
	return rc, doc, args.Error(2)
}

func (m *MockDocumentService) Thumbnail(ctx context.Context, user *model.User, id int64, n int) (io.ReadCloser, error) {
	args := m.Called(ctx, user, id, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDocumentService) ListTags(ctx context.Context, user *model.User) ([]model.Tag, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}
