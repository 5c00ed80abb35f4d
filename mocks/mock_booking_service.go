package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"bkcnorm/internal/pipeline"
	"bkcnorm/internal/service"
)

// MockBookingService is a mock implementation of service.BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Normalize(ctx context.Context, raw []byte) (*pipeline.Result, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func (m *MockBookingService) NormalizeBatch(ctx context.Context, raws [][]byte) ([]service.BatchItem, error) {
	args := m.Called(ctx, raws)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.BatchItem), args.Error(1)
}

func (m *MockBookingService) Export(ctx context.Context, results []*pipeline.Result, format string, w io.Writer) error {
	args := m.Called(ctx, results, format, w)
	return args.Error(0)
}

func (m *MockBookingService) Columns() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
