package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tourdesk/internal/kafka"
	"github.com/Domenick1991/tourdesk/internal/logger"
)

// Message is what the sales desk receives for a new inquiry.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. The default one only logs them; a real mail
// transport can replace it behind the Transport interface.
type Sender struct {
	log *logger.Logger
}

type Transport interface {
	Send(ctx context.Context, msg Message) error
}

var _ Transport = (*Sender)(nil)

func NewSender(log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Nop()
	}
	return &Sender{log: log.Component("email")}
}

func (s *Sender) Send(ctx context.Context, msg Message) error {
	s.log.WithContext(ctx).Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("send email")
	return nil
}

// Deduper remembers handled event ids.
type Deduper interface {
	MarkEventHandled(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ForgetEvent(ctx context.Context, eventID string) error
}

type Notifier struct {
	transport Transport
	dedupe    Deduper
	to        string
	ttl       time.Duration
	log       *logger.Logger
}

// NewNotifier sends one message to `to` per created inquiry. dedupe may be nil.
func NewNotifier(transport Transport, dedupe Deduper, to string, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		transport: transport,
		dedupe:    dedupe,
		to:        to,
		ttl:       24 * time.Hour,
		log:       log.Component("notifier"),
	}
}

func (n *Notifier) Handle(ctx context.Context, event kafka.InquiryEvent) error {
	if event.Type != kafka.EventInquiryCreated {
		return nil
	}

	if n.dedupe != nil {
		first, err := n.dedupe.MarkEventHandled(ctx, event.EventID, n.ttl)
		if err != nil {
			n.log.Warn().Err(err).Str("event_id", event.EventID).Msg("dedupe unavailable, sending anyway")
		} else if !first {
			n.log.Debug().Str("event_id", event.EventID).Msg("duplicate event skipped")
			return nil
		}
	}

	if err := n.transport.Send(ctx, Compose(n.to, event)); err != nil {
		if n.dedupe != nil {
			_ = n.dedupe.ForgetEvent(ctx, event.EventID)
		}
		return fmt.Errorf("notify inquiry %d: %w", event.InquiryID, err)
	}
	return nil
}

func Compose(to string, event kafka.InquiryEvent) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Inquiry #%d\n", event.InquiryID)
	fmt.Fprintf(&b, "Name: %s\n", event.Name)
	fmt.Fprintf(&b, "Phone: %s\n", event.Phone)
	if event.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", event.Email)
	}
	fmt.Fprintf(&b, "Destination: %s\n", event.Destination)
	fmt.Fprintf(&b, "Travelers: %d\n", event.Travelers)
	if event.TravelDate != nil {
		fmt.Fprintf(&b, "Travel date: %s\n", *event.TravelDate)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("New travel inquiry: %s (%d)", event.Destination, event.Travelers),
		Body:    b.String(),
	}
}
