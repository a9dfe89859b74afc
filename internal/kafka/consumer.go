package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.Component("kafka_consumer"),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeInquiryEvents decodes each message and hands it to handler.
// Undecodable messages are logged and skipped; a handler error stops the loop.
func (c *Consumer) ConsumeInquiryEvents(ctx context.Context, handler func(context.Context, InquiryEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeInquiryEvent(msg.Value)
		if err != nil {
			c.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping undecodable event")
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func DecodeInquiryEvent(data []byte) (InquiryEvent, error) {
	var event InquiryEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
