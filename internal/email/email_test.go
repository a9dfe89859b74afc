package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/tourdesk/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) MarkEventHandled(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) ForgetEvent(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func createdEvent() kafka.InquiryEvent {
	date := "2026-12-20"
	return kafka.InquiryEvent{
		EventID:     "evt-1",
		Type:        kafka.EventInquiryCreated,
		InquiryID:   4,
		Name:        "Asha",
		Phone:       "+919876543210",
		Destination: "Goa",
		Travelers:   2,
		TravelDate:  &date,
	}
}

func TestCompose(t *testing.T) {
	msg := Compose("sales@example.com", createdEvent())

	assert.Equal(t, "sales@example.com", msg.To)
	assert.Equal(t, "New travel inquiry: Goa (2)", msg.Subject)
	assert.Contains(t, msg.Body, "Inquiry #4")
	assert.Contains(t, msg.Body, "Travel date: 2026-12-20")
	assert.NotContains(t, msg.Body, "Email:")
}

func TestNotifier_SendsOncePerEvent(t *testing.T) {
	transport := new(MockTransport)
	dedupe := new(MockDeduper)
	dedupe.On("MarkEventHandled", mock.Anything, "evt-1", 24*time.Hour).Return(true, nil).Once()
	dedupe.On("MarkEventHandled", mock.Anything, "evt-1", 24*time.Hour).Return(false, nil).Once()
	transport.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	n := NewNotifier(transport, dedupe, "sales@example.com", nil)
	require.NoError(t, n.Handle(context.Background(), createdEvent()))
	require.NoError(t, n.Handle(context.Background(), createdEvent()))

	transport.AssertExpectations(t)
	dedupe.AssertExpectations(t)
}

func TestNotifier_IgnoresOtherEvents(t *testing.T) {
	transport := new(MockTransport)
	n := NewNotifier(transport, nil, "sales@example.com", nil)

	event := createdEvent()
	event.Type = kafka.EventInquiryUpdated
	require.NoError(t, n.Handle(context.Background(), event))

	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifier_SendFailureForgetsEvent(t *testing.T) {
	transport := new(MockTransport)
	dedupe := new(MockDeduper)
	dedupe.On("MarkEventHandled", mock.Anything, "evt-1", mock.Anything).Return(true, nil)
	dedupe.On("ForgetEvent", mock.Anything, "evt-1").Return(nil).Once()
	transport.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	n := NewNotifier(transport, dedupe, "sales@example.com", nil)
	err := n.Handle(context.Background(), createdEvent())

	require.Error(t, err)
	dedupe.AssertExpectations(t)
}

func TestNotifier_DedupeErrorStillSends(t *testing.T) {
	transport := new(MockTransport)
	dedupe := new(MockDeduper)
	dedupe.On("MarkEventHandled", mock.Anything, "evt-1", mock.Anything).Return(false, errors.New("redis down"))
	transport.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	n := NewNotifier(transport, dedupe, "sales@example.com", nil)
	require.NoError(t, n.Handle(context.Background(), createdEvent()))

	transport.AssertExpectations(t)
}

func TestSender_Send(t *testing.T) {
	assert.NoError(t, NewSender(nil).Send(context.Background(), Message{To: "a@b.c"}))
}
