package domain

import (
	"context"
	"time"
)

// EventBus defines the interface for event-driven communication.
// Supports Go channels (Community) or NATS (Pro).
// All methods require tenantID for strict multi-tenancy isolation.
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, tenantID string, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, tenantID string, topic string, handler MessageHandler) (Subscription, error)

	// Request sends a message and waits for a response (request-reply pattern).
	Request(ctx context.Context, tenantID string, topic string, payload []byte) ([]byte, error)

	// Reply answers a message received from Request. It is a no-op for
	// messages that carry no reply address.
	Reply(ctx context.Context, msg *Message, payload []byte) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// MetaReplyTo is the metadata key holding the reply address of a request.
const MetaReplyTo = "replyTo"

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string `yaml:"type" json:"type" env:"BCE_BUS"`

	// Channel settings (Community tier)
	ChannelBufferSize int `yaml:"channelBufferSize" json:"channelBufferSize" env:"BCE_BUS_BUFFER"`

	// NATS settings (Pro tier)
	NATSUrl           string        `yaml:"natsUrl" json:"natsUrl" env:"BCE_NATS_URL"`
	NATSToken         string        `yaml:"natsToken" json:"-" env:"BCE_NATS_TOKEN"`
	NATSMaxReconnects int           `yaml:"natsMaxReconnects" json:"natsMaxReconnects" env:"BCE_NATS_MAX_RECONNECTS"`
	NATSReconnectWait time.Duration `yaml:"natsReconnectWait" json:"natsReconnectWait" env:"BCE_NATS_RECONNECT_WAIT"`
}

// Topic names of the validation pipeline.
const (
	TopicValidateRequested = "bce.validate.requested"
	TopicVerdict           = "bce.verdict"
	TopicVerdictFailed     = "bce.verdict.failed"
)
