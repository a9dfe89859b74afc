package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/tourdesk/internal/apperr"
	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInquiryRepository struct {
	mock.Mock
}

func (m *MockInquiryRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockInquiryRepository) Read(ctx context.Context) (*domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockInquiryRepository) Write(ctx context.Context, doc *domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockInquiryRepository) Update(ctx context.Context, fn repository.MutateFunc) error {
	return m.Called(ctx, fn).Error(0)
}

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func inquiry(id int64, status domain.InquiryStatus, age time.Duration) domain.Inquiry {
	created := now.Add(-age)
	return domain.Inquiry{ID: id, Status: status, CreatedAt: created, UpdatedAt: created}
}

func TestCompute_CountsByStatus(t *testing.T) {
	store := new(MockInquiryRepository)
	store.On("Read", mock.Anything).Return(&domain.Document{
		Inquiries: []domain.Inquiry{
			inquiry(1, domain.InquiryStatusNew, time.Hour),
			inquiry(2, domain.InquiryStatusNew, time.Hour),
			inquiry(3, domain.InquiryStatusBooked, time.Hour),
		},
		LastID: 3,
	}, nil).Once()

	svc := NewStatsService(store, WithClock(func() time.Time { return now }))
	stats, err := svc.Compute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &domain.Stats{Total: 3, New: 2, Contacted: 0, Booked: 1, ThisWeek: 3}, stats)
	store.AssertExpectations(t)
}

func TestSummarize_ThisWeekBoundary(t *testing.T) {
	inquiries := []domain.Inquiry{
		inquiry(1, domain.InquiryStatusNew, 8*24*time.Hour),
		inquiry(2, domain.InquiryStatusContacted, 24*time.Hour),
		inquiry(3, domain.InquiryStatusNew, Week),
		inquiry(4, domain.InquiryStatusNew, Week+time.Second),
	}

	stats := Summarize(inquiries, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.New)
	assert.Equal(t, 1, stats.Contacted)
	assert.Equal(t, 2, stats.ThisWeek)
}

func TestSummarize_UnknownStatusCountsOnlyInTotal(t *testing.T) {
	stats := Summarize([]domain.Inquiry{inquiry(1, "on-hold", time.Minute)}, now)

	assert.Equal(t, &domain.Stats{Total: 1, ThisWeek: 1}, stats)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, &domain.Stats{}, Summarize(nil, now))
}

func TestCompute_StorageFailure(t *testing.T) {
	store := new(MockInquiryRepository)
	store.On("Read", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := NewStatsService(store).Compute(context.Background())

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
