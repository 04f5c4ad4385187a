package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NFTPredict/internal/domain/models"
)

type fakeProducer struct {
	topic  string
	key    string
	value  interface{}
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, string(key), value
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaReportPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaReportPublisher(fp, "nftpredict.reports")

	r := &models.ForecastReport{ID: "id-1", Collection: "azuki"}
	require.NoError(t, p.PublishReport(context.Background(), r))
	assert.Equal(t, "nftpredict.reports", fp.topic)
	assert.Equal(t, "azuki", fp.key)
	assert.Same(t, r, fp.value)

	require.NoError(t, p.PublishReport(context.Background(), &models.ForecastReport{ID: "id-2"}))
	assert.Equal(t, "id-2", fp.key, "falls back to report id")

	fp.err = errors.New("broker down")
	err := p.PublishReport(context.Background(), r)
	assert.ErrorIs(t, err, fp.err)

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}
