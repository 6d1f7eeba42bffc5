// Package broker is an in-process observable store keyed by entity type.
// Subscribers get the changed records with every event instead of a bare
// "something changed" signal.
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"go.uber.org/zap"
)

type Topic string

const (
	TopicBorrowRecords Topic = "borrow_records"
)

type Event struct {
	Topic     Topic  `json:"topic"`
	AttemptID string `json:"attemptId,omitempty"`
	// UserID is the user whose action published the event.
	UserID  string               `json:"userId,omitempty"`
	At      time.Time            `json:"at"`
	Records []model.BorrowRecord `json:"records,omitempty"`
}

// For narrows ev to what userID may see. Unless all is set only the user's
// own records are kept; records without a user id count as the publisher's.
// An event with nothing left still tells the subscriber to refresh.
func (ev Event) For(userID string, all bool) Event {
	if all {
		return ev
	}
	out := ev
	out.Records = nil
	if userID == "" || ev.UserID != userID {
		out.UserID = ""
	}
	for _, rec := range ev.Records {
		owner := rec.UserID
		if owner == "" {
			owner = ev.UserID
		}
		if userID != "" && owner == userID {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// Sink receives every published event, e.g. to forward it off-process.
type Sink interface {
	Consume(ctx context.Context, ev Event) error
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type Broker struct {
	mu     sync.RWMutex
	subs   map[Topic]map[uint64]chan Event
	nextID uint64
	sinks  []Sink
	last   map[Topic]Event
	log    *zap.Logger
	closed bool
}

func New(log *zap.Logger, sinks ...Sink) *Broker {
	return &Broker{
		subs:  make(map[Topic]map[uint64]chan Event),
		last:  make(map[Topic]Event),
		sinks: sinks,
		log:   log.Named("broker"),
	}
}

// Subscribe registers a listener with a buffer of size buf. The returned
// cancel func unsubscribes and closes the channel.
func (b *Broker) Subscribe(topic Topic, buf int) (<-chan Event, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]chan Event)
	}
	b.subs[topic][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[topic][id]; ok {
				delete(b.subs[topic], id)
				close(sub)
			}
		})
	}
}

// Publish never blocks on slow subscribers: a full buffer drops the event for
// that subscriber only.
func (b *Broker) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.last[ev.Topic] = ev
	for id, ch := range b.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
			b.log.Warn("subscriber lagging, event dropped",
				zap.String("topic", string(ev.Topic)), zap.Uint64("subscriber", id))
		}
	}
	sinks := b.sinks
	b.mu.Unlock()

	for _, s := range sinks {
		if err := s.Consume(ctx, ev); err != nil {
			b.log.Warn("sink", zap.String("topic", string(ev.Topic)), zap.Error(err))
		}
	}
}

// Last returns the most recent event of a topic.
func (b *Broker) Last(topic Topic) (Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ev, ok := b.last[topic]
	return ev, ok
}

func (b *Broker) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close unsubscribes everyone. Later publishes are dropped.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subs, topic)
	}
}
