package bus

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"minusauction/internal/app"
)

// Broadcast subscribes to every event regardless of its recipients.
const Broadcast = ""

var ErrClosed = errors.New("bus closed")

type subscriber struct {
	recipient string
	kinds     map[app.EventKind]bool
	ch        chan app.Event
}

func (s *subscriber) wants(ev app.Event) bool {
	if len(s.kinds) > 0 && !s.kinds[ev.Kind] {
		return false
	}
	if s.recipient == Broadcast || len(ev.Recipients) == 0 {
		return true
	}
	for _, r := range ev.Recipients {
		if r == s.recipient {
			return true
		}
	}
	return false
}

// Bus is an in-process app.Publisher fanning events out to buffered subscriber
// channels. Publish never blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

// New returns an empty bus. A nil logger discards drop warnings.
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger, subs: make(map[int]*subscriber)}
}

// Subscribe registers a listener for events addressed to recipient (or Broadcast
// for all of them), optionally filtered by kind. The returned func unsubscribes
// and closes the channel.
func (b *Bus) Subscribe(recipient string, buffer int, kinds ...app.EventKind) (<-chan app.Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{
		recipient: recipient,
		kinds:     make(map[app.EventKind]bool, len(kinds)),
		ch:        make(chan app.Event, buffer),
	}
	for _, k := range kinds {
		sub.kinds[k] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

// Publish implements app.Publisher.
func (b *Bus) Publish(ctx context.Context, ev app.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for _, sub := range b.subs {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.String("kind", string(ev.Kind)),
				zap.String("recipient", sub.recipient))
		}
	}
	return nil
}

// Close closes every subscriber channel; later publishes fail with ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
