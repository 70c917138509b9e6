package messaging

import (
	"context"
	"errors"
)

var ErrBrokerClosed = errors.New("broker is closed")

// Message is one payload delivered on a channel
type Message struct {
	Channel string
	Payload []byte
}

// Broker is a fire-and-forget pub/sub transport. Channels are named after event types.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe delivers messages until ctx is done, then closes the returned channel
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)
	Close() error
}
