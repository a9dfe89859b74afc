package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventInquiryCreated = "inquiry.created"
	EventInquiryUpdated = "inquiry.updated"
	EventInquiryDeleted = "inquiry.deleted"
)

type InquiryEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	InquiryID   int64     `json:"inquiry_id"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Travelers   int       `json:"travelers,omitempty"`
	TravelDate  *string   `json:"travel_date,omitempty"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewInquiryEvent(eventType string, inq *domain.Inquiry, at time.Time) InquiryEvent {
	return InquiryEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		InquiryID:   inq.ID,
		Name:        inq.Name,
		Phone:       inq.Phone,
		Email:       inq.Email,
		Destination: inq.Destination,
		Travelers:   inq.Travelers,
		TravelDate:  inq.TravelDate,
		Status:      string(inq.Status),
		OccurredAt:  at,
	}
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	log     *logger.Logger
}

func NewProducer(brokers []string, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.Nop()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		log:     log.Component("kafka_producer"),
	}
}

// Publish writes one JSON message. The key keeps events of one inquiry on
// one partition.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug().Str("topic", topic).Str("key", key).Msg("published")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.log.Info().Int("partitions", len(partitions)).Msg("connected to kafka")
	return nil
}
