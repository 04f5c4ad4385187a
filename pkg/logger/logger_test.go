package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).With(String("component", "predictor"))

	l.Warn("timeframe degraded",
		String("timeframe", "7d"),
		Float64("base_price", 12.5),
		Int("confidence", 50),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "timeframe degraded", entry["message"])
	assert.Equal(t, "predictor", entry["component"])
	assert.Equal(t, "7d", entry["timeframe"])
	assert.Equal(t, 12.5, entry["base_price"])
	assert.Equal(t, float64(50), entry["confidence"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]DigestEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]DigestEntry))
	return nil
}

func TestDigest_CollapsesRepeats(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	d := l.AttachDigest(&DigestConfig{Interval: time.Hour, MaxUnique: 10, Topic: "nftpredict.logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Warn("timeframe degraded", String("timeframe", "30d"))
	}
	l.With(String("component", "usecase")).Error("publish failed")
	l.Info("not collected")

	assert.Equal(t, 2, d.Pending())
	l.DetachDigest()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "nftpredict.logs", pub.topic)

	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, map[string]int{"timeframe degraded": 3, "publish failed": 1}, counts)
}

func TestDigest_FlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	d := NewDigest(&DigestConfig{Interval: time.Hour, MaxUnique: 2, Publisher: pub})

	d.Add("error", "a", nil, "x.go:1")
	d.Add("error", "b", nil, "x.go:2")
	assert.Equal(t, 0, d.Pending())

	d.Close()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Len(t, pub.batches[0], 2)
}
