package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad(t *testing.T) {
	t.Setenv("LIBRARY_API_URL", "http://library:5000/api")
	t.Setenv("GATEWAY_HTTP_PORT", "9090")
	t.Setenv("KAFKA_ADDRS", "kafka:9092,kafka2:9092")
	t.Setenv("HTTP_WRITE", "30s")

	cfg, err := Load(WithLogLevel(zapcore.DebugLevel), WithWriteTimeout(0))
	require.NoError(t, err)

	require.Equal(t, "http://library:5000/api", cfg.LibraryAPI.BaseURL)
	require.Equal(t, 10*time.Second, cfg.LibraryAPI.Timeout)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	require.Equal(t, zapcore.DebugLevel, cfg.Log.LogLevel)
	require.True(t, cfg.Kafka.Enabled())
	require.Equal(t, []string{"kafka:9092", "kafka2:9092"}, cfg.Kafka.Addrs)
	require.Equal(t, "bookhub.borrow-records", cfg.Kafka.Topic)
	require.Equal(t, 100, cfg.CB.RecordLength)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_ADDRS", "")
	cfg, err := Load(WithLibraryAPI("http://127.0.0.1:1"))
	require.NoError(t, err)
	require.False(t, cfg.Kafka.Enabled())
	require.Equal(t, "http://127.0.0.1:1", cfg.LibraryAPI.BaseURL)
	require.Equal(t, "8080", cfg.Server.Port)
}
