package api

import (
	"context"

	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/service/inquiry"
	"github.com/stretchr/testify/mock"
)

// MockInquiryUseCase is a mock implementation of inquiry.InquiryUseCase
type MockInquiryUseCase struct {
	mock.Mock
}

func (m *MockInquiryUseCase) Submit(ctx context.Context, input inquiry.SubmitInput) (*domain.Inquiry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

func (m *MockInquiryUseCase) Update(ctx context.Context, id int64, input inquiry.UpdateInput) (*domain.Inquiry, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

func (m *MockInquiryUseCase) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInquiryUseCase) List(ctx context.Context) ([]domain.Inquiry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Inquiry), args.Error(1)
}

// MockStatsUseCase is a mock implementation of stats.StatsUseCase
type MockStatsUseCase struct {
	mock.Mock
}

func (m *MockStatsUseCase) Compute(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}
