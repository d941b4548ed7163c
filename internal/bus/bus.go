// Package bus carries the asynchronous validation pipeline of the BCE
// service. Requests arrive on domain.TopicValidateRequested and verdicts
// leave on domain.TopicVerdict, or domain.TopicVerdictFailed when any travel
// segment failed. Every topic is scoped to a tenant.
//
// Two transports implement domain.EventBus: an in-process ChannelBus for a
// single node and a NATSBus for a cluster of validators.
package bus

import (
	"fmt"
	"strings"

	"github.com/opensource-finance/bce/internal/domain"
)

// Bus types accepted by New.
const (
	TypeChannel = "channel"
	TypeNATS    = "nats"
)

// DefaultBufferSize is the per-subscription queue of a ChannelBus when
// none is configured.
const DefaultBufferSize = 1000

// New creates the event bus named by cfg.Type. An empty type selects the
// in-process channel bus.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case TypeChannel, "":
		return NewChannelBus(cfg.ChannelBufferSize), nil
	case TypeNATS:
		return NewNATSBus(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported event bus type %q", domain.ErrInvalidInput, cfg.Type)
	}
}
