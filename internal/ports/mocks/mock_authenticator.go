package mocks

import (
	"context"

	"github.com/bnema/csvpush/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockAuthenticator is a mock type for the Authenticator type
type MockAuthenticator struct {
	mock.Mock
}

type MockAuthenticator_Expecter struct {
	mock *mock.Mock
}

func (_m *MockAuthenticator) EXPECT() *MockAuthenticator_Expecter {
	return &MockAuthenticator_Expecter{mock: &_m.Mock}
}

// Authenticate provides a mock function with given fields: ctx, url, creds
func (_m *MockAuthenticator) Authenticate(ctx context.Context, url string, creds domain.Credentials) (domain.TokenResponse, error) {
	ret := _m.Called(ctx, url, creds)

	var r0 domain.TokenResponse
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.Credentials) domain.TokenResponse); ok {
		r0 = rf(ctx, url, creds)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.TokenResponse)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.Credentials) error); ok {
		r1 = rf(ctx, url, creds)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

type MockAuthenticator_Authenticate_Call struct {
	*mock.Call
}

func (_e *MockAuthenticator_Expecter) Authenticate(ctx interface{}, url interface{}, creds interface{}) *MockAuthenticator_Authenticate_Call {
	return &MockAuthenticator_Authenticate_Call{Call: _e.mock.On("Authenticate", ctx, url, creds)}
}

func (_c *MockAuthenticator_Authenticate_Call) Return(_a0 domain.TokenResponse, _a1 error) *MockAuthenticator_Authenticate_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// NewMockAuthenticator creates a new instance of MockAuthenticator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAuthenticator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthenticator {
	m := &MockAuthenticator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
