package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	in, err := Normalize(MarketData{}, AIAnalysis{})
	require.NoError(t, err)

	assert.False(t, in.HasFloorPrice)
	assert.Equal(t, 0.0, in.Volume24h)
	assert.Equal(t, 0.0, in.MarketCap)
	assert.Equal(t, SentimentNeutral, in.Sentiment)
	assert.Equal(t, DefaultConfidenceScore, in.ConfidenceScore)
	assert.Equal(t, DefaultDataQuality, in.DataQuality)
	assert.InDelta(t, 0.7, in.SentimentScore, 1e-9)
}

func TestNormalize_ReadsFirstReasoningStep(t *testing.T) {
	ai := AIAnalysis{
		MarketSentiment: String("bullish"),
		ReasoningSteps: []ReasoningStep{
			{Confidence: Float64(90)},
			{Confidence: Float64(10)},
		},
	}
	in, err := Normalize(MarketData{FloorPrice: Float64(2.5)}, ai)
	require.NoError(t, err)

	assert.True(t, in.HasFloorPrice)
	assert.Equal(t, 2.5, in.FloorPrice)
	assert.Equal(t, SentimentBullish, in.Sentiment)
	assert.InDelta(t, 0.9, in.SentimentScore, 1e-9)

	in, err = Normalize(MarketData{}, AIAnalysis{ReasoningSteps: []ReasoningStep{{}}})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, in.SentimentScore, 1e-9)
}

func TestNormalize_DoesNotMutate(t *testing.T) {
	md := MarketData{FloorPrice: Float64(1)}
	ai := AIAnalysis{ReasoningSteps: []ReasoningStep{{}}}

	_, err := Normalize(md, ai)
	require.NoError(t, err)

	assert.Nil(t, md.Volume24h)
	assert.Nil(t, md.MarketCap)
	assert.Nil(t, ai.MarketSentiment)
	assert.Nil(t, ai.ConfidenceScore)
	assert.Nil(t, ai.DataQuality)
	assert.Nil(t, ai.ReasoningSteps[0].Confidence)
}

func TestInputs_BasePrice(t *testing.T) {
	tests := []struct {
		name  string
		price *float64
		ok    bool
	}{
		{"missing", nil, false},
		{"zero", Float64(0), false},
		{"negative", Float64(-3), false},
		{"nan", Float64(math.NaN()), false},
		{"inf", Float64(math.Inf(1)), false},
		{"valid", Float64(0.42), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Normalize(MarketData{FloorPrice: tt.price}, AIAnalysis{})
			require.NoError(t, err)
			_, ok := in.BasePrice()
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestTimeframeOutcome_Result(t *testing.T) {
	o := TimeframeOutcome{Timeframe: TF24h, Prediction: PredictionResult{Direction: DirectionUp}}
	assert.Empty(t, o.Result().Error)

	o.Err = assert.AnError
	assert.Equal(t, assert.AnError.Error(), o.Result().Error)
}
