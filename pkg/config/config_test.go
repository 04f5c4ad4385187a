package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Second, c.Server.ShutdownTimeout)
	assert.True(t, c.Server.CORS)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, 20.0, c.RateLimit.RPS)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, "nftpredict.requests", c.Kafka.RequestTopic)
	assert.Equal(t, int64(0), c.Predictor.Seed)
}

func TestParse_ExplicitZeroesSurvive(t *testing.T) {
	c, err := Parse([]byte(`
environment: test
server:
  cors: false
rate_limit:
  enabled: false
kafka:
  required_acks: 0
`))
	require.NoError(t, err)
	assert.False(t, c.Server.CORS)
	assert.False(t, c.RateLimit.Enabled)
	assert.Equal(t, 0, c.Kafka.RequiredAcks)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown environment", "environment: moon\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n  brokers: []\n"},
		{"same topics", "kafka:\n  enabled: true\n  brokers: [b:9092]\n  request_topic: t\n  result_topic: t\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"malformed", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: development\n"), 0o600))

	t.Setenv("APP_ENV", "staging")
	t.Setenv("PREDICTOR_SEED", "42")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, int64(42), c.Predictor.Seed)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
}

func TestLoadWithEnv_BadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o600))
	t.Setenv("PREDICTOR_SEED", "abc")

	_, err := LoadWithEnv(path)
	assert.Error(t, err)
}

func TestLoad_SampleFile(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, "nftpredict.reports", c.Kafka.ResultTopic)
}
