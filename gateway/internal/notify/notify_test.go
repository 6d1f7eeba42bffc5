package notify_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatch(t *testing.T) {
	t.Parallel()
	base := &notify.Recorder{}
	perRequest := &notify.Recorder{}
	ctx := notify.WithNotifier(context.Background(), perRequest)

	notify.Dispatch(ctx, base, notify.Success("Returned"))
	notify.Dispatch(context.Background(), base, notify.Error("boom"))

	require.Equal(t, []notify.Notification{notify.Success("Returned"), notify.Error("boom")}, base.All())
	last, ok := perRequest.Last()
	require.True(t, ok)
	require.Equal(t, notify.LevelSuccess, last.Level)
	require.Len(t, perRequest.All(), 1)
}

func TestLog_Notify(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	l := notify.NewLog(zap.New(core))

	l.Notify(context.Background(), notify.Warning("Return succeeded but was not confirmed"))
	l.Notify(context.Background(), notify.Info("Book already returned"))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.Equal(t, zap.InfoLevel, entries[1].Level)
}

func TestRecorder_Empty(t *testing.T) {
	t.Parallel()
	var r notify.Recorder
	_, ok := r.Last()
	require.False(t, ok)
	require.Empty(t, r.All())
}
