package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPortResolver is a mock implementation of port.PortResolver.
type MockPortResolver struct {
	mock.Mock
}

func (m *MockPortResolver) Resolve(ctx context.Context, description, countryCode string) (string, error) {
	args := m.Called(ctx, description, countryCode)
	return args.String(0), args.Error(1)
}
