package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/stretchr/testify/require"
)

func TestPrintEvent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	a := &App{term: NewTerminal(&buf)}

	a.printEvent(&buf, broker.Event{
		Topic: broker.TopicBorrowRecords,
		At:    time.Now(),
		Records: []model.BorrowRecord{
			{ID: "r1", Title: "Dune"},
			{ID: "r2", ReturnedAt: model.ParseTimestamp("2024-03-05T12:00:00Z")},
		},
	})

	out := buf.String()
	require.Contains(t, out, "borrow_records changed (2 records)")
	require.Contains(t, out, "Dune")
	require.Contains(t, out, "borrowed")
	require.Contains(t, out, "returned 2024-03-0")
}

func TestWatch_NeedsKafka(t *testing.T) {
	if os.Getenv("KAFKA_ADDRS") != "" {
		t.Skip("KAFKA_ADDRS is set")
	}
	cmd := NewRootCmd(WithPersister(&session.MemoryPersister{}))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch"})
	require.ErrorContains(t, cmd.Execute(), "KAFKA_ADDRS")
}
