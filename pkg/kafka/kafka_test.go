package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NFTPredict/pkg/logger"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type countingHandler struct {
	topic string
	calls int
	errs  []error
	seen  []string
}

func (h *countingHandler) Topic() string { return h.topic }

func (h *countingHandler) Handle(ctx context.Context, data []byte) error {
	h.calls++
	h.seen = append(h.seen, TraceID(ctx))
	if len(h.errs) == 0 {
		return nil
	}
	err := h.errs[0]
	h.errs = h.errs[1:]
	return err
}

func newTestConsumer(dlq bool) (*Consumer, *fakeReader, *fakeWriter) {
	cfg := &ConsumerConfig{WorkerCount: 1, BufferSize: 1, RetryMax: 2, BackoffMin: time.Millisecond, BackoffMax: time.Millisecond}
	c := newConsumer(logger.Nop(), cfg)
	r := &fakeReader{}
	c.readers["requests"] = r
	w := &fakeWriter{}
	if dlq {
		cfg.DLQTopic = "requests.dlq"
		c.dlq = w
	}
	return c, r, w
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")

	require.NoError(t, p.Publish(context.Background(), "reports", []byte("azuki"), map[string]int{"n": 1}))
	require.NoError(t, p.PublishMessage(context.Background(), "logs", "raw"))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "reports", w.msgs[0].Topic)
	assert.Equal(t, []byte("azuki"), w.msgs[0].Key)
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))

	w.err = errors.New("leader not available")
	assert.Error(t, p.Publish(context.Background(), "reports", nil, []byte("x")))

	assert.Error(t, p.Publish(context.Background(), "reports", nil, func() {}))
}

func TestConsumer_ProcessSuccessAfterRetry(t *testing.T) {
	c, r, w := newTestConsumer(true)
	h := &countingHandler{topic: "requests", errs: []error{errors.New("transient")}}
	c.RegisterHandler(h)
	c.WithConsumerHook(TraceHook())

	c.process(kafka.Message{
		Topic:   "requests",
		Value:   []byte("{}"),
		Headers: []kafka.Header{{Key: "trace_id", Value: []byte("t-1")}},
	})

	assert.Equal(t, 2, h.calls)
	assert.Equal(t, []string{"t-1", "t-1"}, h.seen)
	assert.Len(t, r.committed, 1)
	assert.Empty(t, w.msgs)
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	c, r, w := newTestConsumer(true)
	h := &countingHandler{topic: "requests", errs: []error{ErrPermanent}}
	c.RegisterHandler(h)

	var hookErr error
	c.WithConsumerHook(HookFuncs{Err: func(_ context.Context, _ string, _ kafka.Message, _ []byte, err error) { hookErr = err }})

	c.process(kafka.Message{Topic: "requests", Value: []byte("garbage")})

	assert.Equal(t, 1, h.calls, "permanent errors are not retried")
	assert.ErrorIs(t, hookErr, ErrPermanent)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "requests.dlq", w.msgs[0].Topic)
	assert.Equal(t, "garbage", string(w.msgs[0].Value))
	assert.Len(t, r.committed, 1)
}

func TestConsumer_NoDLQLeavesOffset(t *testing.T) {
	c, r, _ := newTestConsumer(false)
	h := &countingHandler{topic: "requests", errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	c.RegisterHandler(h)

	c.process(kafka.Message{Topic: "requests"})

	assert.Equal(t, 3, h.calls)
	assert.Empty(t, r.committed)
}

func TestConsumer_ExhaustedRetriesGoToDLQWithAttempts(t *testing.T) {
	c, r, w := newTestConsumer(true)
	h := &countingHandler{topic: "requests", errs: []error{errors.New("a"), errors.New("b"), errors.New("broker down")}}
	c.RegisterHandler(h)

	c.process(kafka.Message{Topic: "requests", Value: []byte("{}")})

	assert.Equal(t, 3, h.calls)
	require.Len(t, w.msgs, 1)
	headers := map[string]string{}
	for _, hd := range w.msgs[0].Headers {
		headers[hd.Key] = string(hd.Value)
	}
	assert.Equal(t, "requests", headers["source_topic"])
	assert.Equal(t, "broker down", headers["error"])
	assert.Equal(t, "3", headers["attempts"])
	assert.Len(t, r.committed, 1)
}

func TestConsumer_FailedDLQWriteLeavesOffset(t *testing.T) {
	c, r, w := newTestConsumer(true)
	w.err = errors.New("dlq unavailable")
	c.RegisterHandler(&countingHandler{topic: "requests", errs: []error{ErrPermanent}})

	c.process(kafka.Message{Topic: "requests"})

	assert.Empty(t, w.msgs)
	assert.Empty(t, r.committed)
}

func TestConsumer_ShutdownLeavesMessageForRedelivery(t *testing.T) {
	c, r, w := newTestConsumer(true)
	h := &countingHandler{topic: "requests", errs: []error{context.Canceled, context.Canceled}}
	c.RegisterHandler(h)

	var hookErr error
	c.WithConsumerHook(HookFuncs{Err: func(_ context.Context, _ string, _ kafka.Message, _ []byte, err error) { hookErr = err }})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))

	c.process(kafka.Message{Topic: "requests", Value: []byte("{}")})

	assert.Equal(t, 1, h.calls, "no retries after Stop")
	assert.NoError(t, hookErr)
	assert.Empty(t, w.msgs)
	assert.Empty(t, r.committed)
}

func TestConsumer_HandlerContextCancelledByStop(t *testing.T) {
	c, _, _ := newTestConsumer(false)
	ctx, _, _, err := c.hook.BeforeHandle(c.ctx, "requests", kafka.Message{}, nil)
	require.NoError(t, err)
	require.NoError(t, ctx.Err())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(stopCtx))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestConsumer_StartStop(t *testing.T) {
	c, _, _ := newTestConsumer(false)
	c.RegisterHandler(&countingHandler{topic: "requests"})
	c.run()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Stop(ctx))
	assert.NoError(t, c.Stop(ctx))
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}
