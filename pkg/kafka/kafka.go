package kafka

import (
	"encoding/json"

	"github.com/IBM/sarama"
)

const (
	BorrowRecordsTopic = "bookhub.borrow-records"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_TOPIC" default:"bookhub.borrow-records"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewAsyncProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Successes = false
	defaultCfg.Producer.Return.Errors = true

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}

type EventLog struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewEventLog(producer sarama.AsyncProducer, topic string) *EventLog {
	if topic == "" {
		topic = BorrowRecordsTopic
	}
	return &EventLog{
		producer: producer,
		topic:    topic,
	}
}

// Log enqueues v as JSON keyed by key. A nil EventLog drops the event.
func (l *EventLog) Log(key string, v any) error {
	if l == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: l.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	l.producer.Input() <- msg
	return nil
}

// Errors exposes delivery failures reported by the producer.
func (l *EventLog) Errors() <-chan *sarama.ProducerError {
	return l.producer.Errors()
}
