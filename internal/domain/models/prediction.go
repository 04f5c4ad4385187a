package models

import "time"

// Timeframe is a prediction horizon.
type Timeframe string

const (
	TF24h Timeframe = "24h"
	TF7d  Timeframe = "7d"
	TF30d Timeframe = "30d"
)

// Timeframes returns the fixed set of horizons every bundle covers.
func Timeframes() []Timeframe { return []Timeframe{TF24h, TF7d, TF30d} }

// Direction is the predicted price movement.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// ErrInvalidBasePrice is the fixed message of the hard, bundle-level failure.
const ErrInvalidBasePrice = "Invalid or missing base price for prediction. No fallback allowed."

// PredictionResult is the wire form of a single timeframe prediction.
type PredictionResult struct {
	Direction        Direction `json:"direction"`
	PercentageChange float64   `json:"percentage_change"`
	Confidence       int       `json:"confidence"`
	PriceTarget      float64   `json:"price_target"`
	Error            string    `json:"error,omitempty"`
}

// TimeframeOutcome carries either a real prediction or a degraded placeholder.
// Err is non-nil exactly when Prediction is a safe default.
type TimeframeOutcome struct {
	Timeframe  Timeframe
	Prediction PredictionResult
	Err        error
}

// Result returns the wire form, with the degradation reason in Error.
func (o TimeframeOutcome) Result() PredictionResult {
	r := o.Prediction
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	return r
}

// PredictionBundle is the result of a multi-timeframe prediction.
// On failure only Success and Error are set.
type PredictionBundle struct {
	Success           bool                            `json:"success"`
	Predictions       map[Timeframe]PredictionResult `json:"predictions,omitempty"`
	OverallConfidence int                             `json:"overall_confidence,omitempty"`
	BasePrice         float64                         `json:"base_price,omitempty"`
	Error             string                          `json:"error,omitempty"`
}

// FailedBundle builds the hard-failure bundle.
func FailedBundle(msg string) PredictionBundle {
	return PredictionBundle{Success: false, Error: msg}
}

// TimeframeFactors is one row of the static timeframe table.
// Only NoiseAmplitude feeds the scoring; the other columns are published configuration.
type TimeframeFactors struct {
	Timeframe       Timeframe `json:"timeframe"`
	Volatility      float64   `json:"volatility"`
	SentimentWeight float64   `json:"sentiment_weight"`
	VolumeWeight    float64   `json:"volume_weight"`
	NoiseAmplitude  float64   `json:"noise_amplitude"`
}

// ForecastRequest is the transport envelope for both HTTP and Kafka.
type ForecastRequest struct {
	Collection string     `json:"collection" validate:"omitempty,max=128"`
	MarketData MarketData `json:"market_data"`
	AIAnalysis AIAnalysis `json:"ai_analysis"`
}

// ForecastReport combines the prediction bundle and the risk list for one request.
type ForecastReport struct {
	ID          string           `json:"id"`
	Collection  string           `json:"collection,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Prediction  PredictionBundle `json:"prediction"`
	Risks       []string         `json:"risks"`
}

// BatchForecastRequest carries several snapshots forecast in one call.
type BatchForecastRequest struct {
	Requests []ForecastRequest `json:"requests" validate:"required,min=1,max=100,dive"`
}

// RisksResponse is the body of the risks endpoint.
type RisksResponse struct {
	Risks []string `json:"risks"`
}
