package broker

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Astemirdum/bookhub/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// EventLogSink forwards every event to a kafka topic. The attempt id is the
// message key so redeliveries of one return land in the same partition.
type EventLogSink struct {
	log *kafka.EventLog
}

func NewEventLogSink(log *kafka.EventLog) *EventLogSink {
	return &EventLogSink{log: log}
}

func (s *EventLogSink) Consume(_ context.Context, ev Event) error {
	key := ev.AttemptID
	if key == "" {
		key = string(ev.Topic)
	}
	return s.log.Log(key, ev)
}

// Source feeds events read from kafka back into a local publisher, so a
// process can watch changes made by another one.
type Source struct {
	pub   Publisher
	log   *zap.Logger
	once  sync.Once
	ready chan struct{}
}

var _ sarama.ConsumerGroupHandler = (*Source)(nil)

func NewSource(pub Publisher, log *zap.Logger) *Source {
	return &Source{
		pub:   pub,
		log:   log.Named("source"),
		ready: make(chan struct{}),
	}
}

// Ready is closed once the first session has been set up.
func (s *Source) Ready() <-chan struct{} {
	return s.ready
}

func (s *Source) Setup(sarama.ConsumerGroupSession) error {
	s.once.Do(func() { close(s.ready) })
	return nil
}

func (s *Source) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (s *Source) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal(message.Value, &ev); err != nil {
				s.log.Error("decode event", zap.Error(err), zap.String("topic", message.Topic))
				session.MarkMessage(message, "")
				continue
			}
			if ev.Topic == "" {
				ev.Topic = TopicBorrowRecords
			}
			s.pub.Publish(session.Context(), ev)
			s.log.Debug("event claimed", zap.String("attempt", ev.AttemptID), zap.Time("timestamp", message.Timestamp))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
