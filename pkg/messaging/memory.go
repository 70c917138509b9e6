package messaging

import (
	"context"
	"sync"
)

type subscriber struct {
	channels map[string]struct{}
	out      chan Message
}

// MemoryBroker delivers messages in-process. Used by tests and single-binary development runs.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[*subscriber]struct{})}
}

func (b *MemoryBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}

	for s := range b.subs {
		if _, ok := s.channels[channel]; !ok {
			continue
		}
		select {
		case s.out <- Message{Channel: channel, Payload: payload}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	s := &subscriber{channels: make(map[string]struct{}, len(channels)), out: make(chan Message, 100)}
	for _, c := range channels {
		s.channels[c] = struct{}{}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(s)
	}()
	return s.out, nil
}

func (b *MemoryBroker) remove(s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.out)
	}
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		close(s.out)
	}
	return nil
}
