package stats

import (
	"context"
	"time"

	"github.com/Domenick1991/tourdesk/internal/apperr"
	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/metrics"
	"github.com/Domenick1991/tourdesk/internal/repository"
)

// Week is the trailing window counted by Stats.ThisWeek.
const Week = 7 * 24 * time.Hour

type StatsUseCase interface {
	Compute(ctx context.Context) (*domain.Stats, error)
}

var _ StatsUseCase = (*StatsService)(nil)

type StatsService struct {
	store repository.InquiryRepository
	log   *logger.Logger
	now   func() time.Time
}

type StatsServiceOption func(*StatsService)

func WithClock(now func() time.Time) StatsServiceOption {
	return func(s *StatsService) {
		s.now = now
	}
}

func WithLogger(log *logger.Logger) StatsServiceOption {
	return func(s *StatsService) {
		if log != nil {
			s.log = log.Component("stats_service")
		}
	}
}

func NewStatsService(store repository.InquiryRepository, opts ...StatsServiceOption) *StatsService {
	service := &StatsService{
		store: store,
		log:   logger.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Compute reads the document once and counts it. Nothing is cached.
func (s *StatsService) Compute(ctx context.Context) (*domain.Stats, error) {
	start := time.Now()
	doc, err := s.store.Read(ctx)
	metrics.RecordStoreOperation("read", time.Since(start), err)
	if err != nil {
		s.log.WithContext(ctx).StorageError("read", err)
		return nil, apperr.Internal("Internal server error", err).WithOp("stats.Compute")
	}

	return Summarize(doc.Inquiries, s.now()), nil
}

func Summarize(inquiries []domain.Inquiry, now time.Time) *domain.Stats {
	since := now.Add(-Week)
	out := &domain.Stats{Total: len(inquiries)}
	for _, inq := range inquiries {
		switch inq.Status {
		case domain.InquiryStatusNew:
			out.New++
		case domain.InquiryStatusContacted:
			out.Contacted++
		case domain.InquiryStatusBooked:
			out.Booked++
		}
		if !inq.CreatedAt.Before(since) {
			out.ThisWeek++
		}
	}
	return out
}
