package mailer

import (
	"context"
	"log/slog"

	"github.com/fatmac/marketplace/internal/events"
)

type Kind string

const (
	KindCustomerCredentials            Kind = "customer_credentials"
	KindVendorRegistrationConfirmation Kind = "vendor_registration_confirmation"
	KindVendorRegistrationNotification Kind = "vendor_registration_notification"
	KindVendorStatusChanged            Kind = "vendor_status_changed"
)

// Message is a templated mail request. The mail worker owns rendering and
// delivery; callers only name the template and its data.
type Message struct {
	Kind Kind           `json:"kind"`
	To   string         `json:"to"`
	From string         `json:"from"`
	Data map[string]any `json:"data"`
}

// Mailer enqueues mail. Every send is best-effort: callers log failures and
// never propagate them.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Queue publishes messages to the mail topic so request handling is never
// coupled to delivery latency.
type Queue struct {
	Publisher events.Publisher
	From      string
}

func NewQueue(pub events.Publisher, from string) *Queue {
	return &Queue{Publisher: pub, From: from}
}

func (q *Queue) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = q.From
	}
	return q.Publisher.PublishEvent(ctx, events.TopicMailEvents, msg.To, msg)
}

// Log writes the message to the log instead of a queue; used when no brokers
// are configured.
type Log struct {
	L *slog.Logger
}

func (m *Log) Send(ctx context.Context, msg Message) error {
	m.L.Info("mail_enqueued", "kind", string(msg.Kind), "to", msg.To)
	return nil
}
