package bus

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// DefaultQueueSize bounds each in-memory subscription's backlog.
const DefaultQueueSize = 256

// MemoryBus is an in-process MessageBus. Each subscription delivers on its
// own goroutine through a bounded queue; a full queue drops the message and
// counts it.
type MemoryBus struct {
	mu        sync.RWMutex
	subs      map[string]*memorySubscription
	queueSize int
	dropped   atomic.Uint64
	closed    atomic.Bool
}

// NewMemoryBus creates an in-memory bus with DefaultQueueSize queues.
func NewMemoryBus() *MemoryBus {
	return NewMemoryBusSize(DefaultQueueSize)
}

// NewMemoryBusSize creates an in-memory bus whose subscriptions buffer up
// to size messages.
func NewMemoryBusSize(size int) *MemoryBus {
	if size < 1 {
		size = 1
	}
	return &MemoryBus{subs: make(map[string]*memorySubscription), queueSize: size}
}

// Dropped reports how many deliveries were discarded on full queues.
func (b *MemoryBus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *MemoryBus) Publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	msg := &Message{Subject: subject, Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !matchSubject(sub.subject, subject) {
			continue
		}
		select {
		case sub.messages <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, subject string, handler MessageHandler) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	sub := &memorySubscription{
		id:       ulid.Make().String(),
		subject:  subject,
		messages: make(chan *Message, b.queueSize),
		handler:  handler,
		bus:      b,
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go sub.run(ctx)
	return sub, nil
}

func (b *MemoryBus) Close() error {
	if b.closed.Swap(true) {
		return ErrClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		close(sub.messages)
		delete(b.subs, id)
	}
	return nil
}

type memorySubscription struct {
	id       string
	subject  string
	messages chan *Message
	handler  MessageHandler
	bus      *MemoryBus
}

// Unsubscribe is idempotent; the bus lock guards the queue close.
func (s *memorySubscription) Unsubscribe() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s.id]; !ok {
		return nil
	}
	delete(s.bus.subs, s.id)
	close(s.messages)
	return nil
}

func (s *memorySubscription) Subject() string {
	return s.subject
}

func (s *memorySubscription) run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-s.messages:
			if !ok {
				return
			}
			s.handler(msg)
		case <-ctx.Done():
			return
		}
	}
}

// matchSubject reports whether subject matches a NATS-style pattern: "*"
// matches one token and a trailing ">" matches one or more.
func matchSubject(pattern, subject string) bool {
	for {
		p, prest, pmore := strings.Cut(pattern, ".")
		s, srest, smore := strings.Cut(subject, ".")
		switch {
		case p == ">":
			return s != ""
		case p != "*" && p != s:
			return false
		case !pmore || !smore:
			return pmore == smore
		}
		pattern, subject = prest, srest
	}
}
