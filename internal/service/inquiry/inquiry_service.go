package inquiry

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/tourdesk/internal/apperr"
	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/kafka"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/metrics"
	"github.com/Domenick1991/tourdesk/internal/repository"
	"github.com/Domenick1991/tourdesk/internal/validator"
)

const (
	MsgMissingFields = "missing required fields"
	MsgInvalidPhone  = "invalid phone"
	MsgInvalidInput  = "invalid input"
	MsgNotFound      = "Inquiry not found"
	msgStorage       = "Internal server error"

	DefaultPublishTimeout = 2 * time.Second
)

type InquiryUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.Inquiry, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*domain.Inquiry, error)
	Remove(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Inquiry, error)
}

var _ InquiryUseCase = (*InquiryService)(nil)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SubmitInput struct {
	Name         string
	Phone        string
	Email        string
	Travelers    int
	Destination  string
	TravelDate   *string
	TravelerType *string
	Message      string
}

// UpdateInput carries an admin edit. Status is applied only when non-empty.
// Notes is applied whenever NotesSet is true, so an explicit null clears it.
type UpdateInput struct {
	Status   *string
	Notes    *string
	NotesSet bool
}

// submission holds the length limits checked after the required fields.
type submission struct {
	Name         string  `validate:"max=200"`
	Phone        string  `validate:"travelphone"`
	Email        string  `validate:"max=254"`
	Destination  string  `validate:"max=200"`
	TravelDate   *string `validate:"omitempty,max=64"`
	TravelerType *string `validate:"omitempty,max=64"`
	Message      string  `validate:"max=5000"`
}

type InquiryService struct {
	store    repository.InquiryRepository
	validate *validator.Validator
	producer Producer
	topic    string
	timeout  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

type InquiryServiceOption func(*InquiryService)

func WithProducer(producer Producer, topic string) InquiryServiceOption {
	return func(s *InquiryService) {
		s.producer = producer
		s.topic = topic
	}
}

// WithPublishTimeout bounds how long a request waits on the event broker.
func WithPublishTimeout(d time.Duration) InquiryServiceOption {
	return func(s *InquiryService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(log *logger.Logger) InquiryServiceOption {
	return func(s *InquiryService) {
		if log != nil {
			s.log = log.Component("inquiry_service")
		}
	}
}

func WithClock(now func() time.Time) InquiryServiceOption {
	return func(s *InquiryService) {
		s.now = now
	}
}

func NewInquiryService(store repository.InquiryRepository, opts ...InquiryServiceOption) *InquiryService {
	service := &InquiryService{
		store:    store,
		validate: validator.New(),
		timeout:  DefaultPublishTimeout,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *InquiryService) Submit(ctx context.Context, input SubmitInput) (*domain.Inquiry, error) {
	if input.Name == "" || input.Phone == "" || input.Destination == "" || input.Travelers == 0 {
		metrics.RecordInquiryRejected("missing_fields")
		return nil, apperr.Validation(MsgMissingFields).WithOp("inquiry.Submit")
	}

	phone := stripSpaces(input.Phone)
	sub := submission{
		Name:         input.Name,
		Phone:        phone,
		Email:        input.Email,
		Destination:  input.Destination,
		TravelDate:   emptyToNil(input.TravelDate),
		TravelerType: emptyToNil(input.TravelerType),
		Message:      input.Message,
	}
	if err := s.validate.Struct(sub); err != nil {
		for _, tag := range validator.FailedTags(err) {
			if tag == validator.PhoneTag {
				metrics.RecordInquiryRejected("invalid_phone")
				return nil, apperr.Validation(MsgInvalidPhone).WithOp("inquiry.Submit")
			}
		}
		metrics.RecordInquiryRejected("invalid_input")
		return nil, apperr.Validation(MsgInvalidInput).WithOp("inquiry.Submit")
	}

	now := s.now().UTC()
	var created domain.Inquiry
	err := s.mutate(ctx, "submit", func(doc *domain.Document) (bool, error) {
		created = domain.Inquiry{
			ID:           doc.NextID(),
			Name:         sub.Name,
			Phone:        sub.Phone,
			Email:        sub.Email,
			Travelers:    input.Travelers,
			Destination:  sub.Destination,
			TravelDate:   sub.TravelDate,
			TravelerType: sub.TravelerType,
			Message:      sub.Message,
			Status:       domain.InquiryStatusNew,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		doc.Inquiries = append(doc.Inquiries, created)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInquirySubmitted()
	s.log.WithContext(ctx).Info().Int64("inquiry_id", created.ID).Str("destination", created.Destination).Msg("inquiry submitted")
	s.publish(ctx, kafka.EventInquiryCreated, &created)
	return &created, nil
}

func (s *InquiryService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Inquiry, error) {
	now := s.now().UTC()
	var updated domain.Inquiry
	err := s.mutate(ctx, "update", func(doc *domain.Document) (bool, error) {
		idx := doc.IndexOf(id)
		if idx < 0 {
			return false, apperr.NotFound(MsgNotFound).WithOp("inquiry.Update")
		}
		inq := &doc.Inquiries[idx]
		if input.Status != nil && *input.Status != "" {
			inq.Status = domain.InquiryStatus(*input.Status)
		}
		if input.NotesSet {
			inq.Notes = input.Notes
		}
		inq.UpdatedAt = now
		updated = *inq
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != "" {
		metrics.RecordStatusChange(*input.Status)
	}
	s.log.WithContext(ctx).Info().Int64("inquiry_id", id).Str("status", string(updated.Status)).Msg("inquiry updated")
	s.publish(ctx, kafka.EventInquiryUpdated, &updated)
	return &updated, nil
}

func (s *InquiryService) Remove(ctx context.Context, id int64) error {
	var removed domain.Inquiry
	err := s.mutate(ctx, "remove", func(doc *domain.Document) (bool, error) {
		idx := doc.IndexOf(id)
		if idx < 0 {
			return false, apperr.NotFound(MsgNotFound).WithOp("inquiry.Remove")
		}
		removed = doc.Inquiries[idx]
		doc.Inquiries = append(doc.Inquiries[:idx], doc.Inquiries[idx+1:]...)
		return true, nil
	})
	if err != nil {
		return err
	}

	s.log.WithContext(ctx).Info().Int64("inquiry_id", id).Msg("inquiry removed")
	s.publish(ctx, kafka.EventInquiryDeleted, &removed)
	return nil
}

// List returns every inquiry, newest first. Equal timestamps keep store order.
func (s *InquiryService) List(ctx context.Context) ([]domain.Inquiry, error) {
	start := time.Now()
	doc, err := s.store.Read(ctx)
	metrics.RecordStoreOperation("read", time.Since(start), err)
	if err != nil {
		s.log.WithContext(ctx).StorageError("read", err)
		return nil, apperr.Internal(msgStorage, err).WithOp("inquiry.List")
	}

	items := make([]domain.Inquiry, len(doc.Inquiries))
	copy(items, doc.Inquiries)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *InquiryService) mutate(ctx context.Context, op string, fn repository.MutateFunc) error {
	start := time.Now()
	err := s.store.Update(ctx, fn)

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		metrics.RecordStoreOperation(op, time.Since(start), nil)
		return appErr
	}
	metrics.RecordStoreOperation(op, time.Since(start), err)
	if err != nil {
		s.log.WithContext(ctx).StorageError(op, err)
		return apperr.Internal(msgStorage, err).WithOp("inquiry." + op)
	}
	return nil
}

// publish is best effort: the store is the source of truth.
func (s *InquiryService) publish(ctx context.Context, eventType string, inq *domain.Inquiry) {
	if s.producer == nil {
		return
	}
	event := kafka.NewInquiryEvent(eventType, inq, s.now().UTC())
	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.producer.Publish(publishCtx, s.topic, strconv.FormatInt(inq.ID, 10), event); err != nil {
		s.log.WithContext(ctx).Warn().Err(err).Str("event", eventType).Int64("inquiry_id", inq.ID).Msg("failed to publish inquiry event")
	}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
