package kafka_test

import (
	"encoding/json"
	"testing"

	"github.com/Astemirdum/bookhub/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestEventLog_Log(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewAsyncProducer(t, cfg)
	producer.ExpectInputWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got map[string]string
		return json.Unmarshal(val, &got)
	})

	l := kafka.NewEventLog(producer, "")
	require.NoError(t, l.Log("attempt-1", map[string]string{"topic": "borrow_records"}))

	msg := <-producer.Successes()
	require.Equal(t, kafka.BorrowRecordsTopic, msg.Topic)
	key, err := msg.Key.Encode()
	require.NoError(t, err)
	require.Equal(t, "attempt-1", string(key))
	require.NoError(t, producer.Close())
}

func TestEventLog_NilDrops(t *testing.T) {
	var l *kafka.EventLog
	require.NoError(t, l.Log("k", struct{}{}))
}

func TestConfig_Enabled(t *testing.T) {
	require.False(t, kafka.Config{}.Enabled())
	require.True(t, kafka.Config{Addrs: []string{"localhost:9092"}}.Enabled())
}
