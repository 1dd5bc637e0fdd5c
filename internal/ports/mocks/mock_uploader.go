package mocks

import (
	"context"

	"github.com/bnema/csvpush/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockUploader is a mock type for the Uploader type
type MockUploader struct {
	mock.Mock
}

type MockUploader_Expecter struct {
	mock *mock.Mock
}

func (_m *MockUploader) EXPECT() *MockUploader_Expecter {
	return &MockUploader_Expecter{mock: &_m.Mock}
}

// Upload provides a mock function with given fields: ctx, url, token, req
func (_m *MockUploader) Upload(ctx context.Context, url string, token string, req domain.UploadRequest) (domain.UploadResponse, error) {
	ret := _m.Called(ctx, url, token, req)

	var r0 domain.UploadResponse
	if rf, ok := ret.Get(0).(func(context.Context, string, string, domain.UploadRequest) domain.UploadResponse); ok {
		r0 = rf(ctx, url, token, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.UploadResponse)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, domain.UploadRequest) error); ok {
		r1 = rf(ctx, url, token, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

type MockUploader_Upload_Call struct {
	*mock.Call
}

func (_e *MockUploader_Expecter) Upload(ctx interface{}, url interface{}, token interface{}, req interface{}) *MockUploader_Upload_Call {
	return &MockUploader_Upload_Call{Call: _e.mock.On("Upload", ctx, url, token, req)}
}

func (_c *MockUploader_Upload_Call) Return(_a0 domain.UploadResponse, _a1 error) *MockUploader_Upload_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// NewMockUploader creates a new instance of MockUploader. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUploader(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUploader {
	m := &MockUploader{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
