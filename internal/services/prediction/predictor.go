package prediction

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"NFTPredict/internal/domain/models"
	domsvc "NFTPredict/internal/domain/service"
)

const (
	maxChangePercent = 30.0
	minTargetRatio   = 0.5
	maxTargetRatio   = 2.0
	directionBand    = 1.0

	minConfidence        = 30
	maxConfidence        = 95
	minOverallConfidence = 40
	maxOverallConfidence = 90
	degradedConfidence   = 50
)

var errNonFinite = errors.New("non-finite value")

// RandomSource generates uniform floats in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithRandomSource sets the noise source.
func WithRandomSource(src RandomSource) Option {
	return func(p *Predictor) {
		if src != nil {
			p.rnd = src
		}
	}
}

// WithSeed uses a deterministic math/rand source seeded with seed.
func WithSeed(seed int64) Option {
	return WithRandomSource(rand.New(rand.NewSource(seed)))
}

// Predictor blends market data and AI sentiment into 24h/7d/30d forecasts.
// It is safe for concurrent use.
type Predictor struct {
	mu  sync.Mutex
	rnd RandomSource
}

// New creates a Predictor. Without options the noise source is time-seeded.
func New(opts ...Option) *Predictor {
	p := &Predictor{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PredictPrices validates the floor price and predicts every horizon.
// An invalid floor price fails the whole bundle; failures inside a single
// horizon only degrade that horizon.
func (p *Predictor) PredictPrices(md models.MarketData, ai models.AIAnalysis) (bundle models.PredictionBundle) {
	defer func() {
		if r := recover(); r != nil {
			bundle = models.FailedBundle(fmt.Sprintf("prediction failed: %v", r))
		}
	}()

	in, err := models.Normalize(md, ai)
	if err != nil {
		return models.FailedBundle(err.Error())
	}
	base, ok := in.BasePrice()
	if !ok {
		return models.FailedBundle(models.ErrInvalidBasePrice)
	}

	preds := make(map[models.Timeframe]models.PredictionResult, len(models.Timeframes()))
	for _, tf := range models.Timeframes() {
		preds[tf] = p.predict(base, in, tf).Result()
	}

	overall, err := OverallConfidence(in)
	if err != nil {
		return models.FailedBundle(err.Error())
	}

	return models.PredictionBundle{
		Success:           true,
		Predictions:       preds,
		OverallConfidence: overall,
		BasePrice:         base,
	}
}

// PredictTimeframe predicts a single horizon. It never fails: problems yield
// a degraded outcome carrying the reason.
func (p *Predictor) PredictTimeframe(basePrice float64, md models.MarketData, ai models.AIAnalysis, tf models.Timeframe) models.TimeframeOutcome {
	if !models.ValidBasePrice(basePrice) {
		return degraded(tf, 0, fmt.Errorf("invalid base price %v for %s prediction", basePrice, tf))
	}
	in, err := models.Normalize(md, ai)
	if err != nil {
		return degraded(tf, basePrice, err)
	}
	return p.predict(basePrice, in, tf)
}

func (p *Predictor) predict(base float64, in models.Inputs, tf models.Timeframe) (out models.TimeframeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = degraded(tf, base, fmt.Errorf("%s prediction: %v", tf, r))
		}
	}()

	factors := FactorsFor(tf)
	change := BaseChange(in.Sentiment, tf) * VolumeFactor(in.Volume24h) * SentimentFactor(in.SentimentScore, tf)
	change += p.noise(factors.NoiseAmplitude)
	if !finite(change) {
		return degraded(tf, base, fmt.Errorf("%s percentage change: %w", tf, errNonFinite))
	}
	change = clamp(change, -maxChangePercent, maxChangePercent)

	target := clamp(base*(1+change/100), minTargetRatio*base, maxTargetRatio*base)

	confidence, err := timeframeConfidence(in, tf)
	if err != nil {
		return degraded(tf, base, err)
	}

	// direction follows the published (rounded) change
	pct := round(change, 1)
	return models.TimeframeOutcome{
		Timeframe: tf,
		Prediction: models.PredictionResult{
			Direction:        directionOf(pct),
			PercentageChange: pct,
			Confidence:       confidence,
			PriceTarget:      round(target, 2),
		},
	}
}

// OverallConfidence blends data quality, AI confidence and a volume score into [40,90].
func OverallConfidence(in models.Inputs) (int, error) {
	raw := in.DataQuality*0.3 + in.ConfidenceScore*0.4 + VolumeScore(in.Volume24h)*0.3
	if !finite(raw) {
		return 0, fmt.Errorf("overall confidence: %w", errNonFinite)
	}
	return int(clamp(math.Round(raw), minOverallConfidence, maxOverallConfidence)), nil
}

func timeframeConfidence(in models.Inputs, tf models.Timeframe) (int, error) {
	if !finite(in.ConfidenceScore) {
		return 0, fmt.Errorf("%s confidence score: %w", tf, errNonFinite)
	}
	c := math.Round(in.ConfidenceScore + TimeframePenalty(tf) + VolumeBonus(in.Volume24h))
	return int(clamp(c, minConfidence, maxConfidence)), nil
}

func (p *Predictor) noise(amplitude float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return (p.rnd.Float64() - 0.5) * amplitude
}

func degraded(tf models.Timeframe, target float64, err error) models.TimeframeOutcome {
	return models.TimeframeOutcome{
		Timeframe: tf,
		Prediction: models.PredictionResult{
			Direction:   models.DirectionStable,
			Confidence:  degradedConfidence,
			PriceTarget: target,
		},
		Err: err,
	}
}

func directionOf(pct float64) models.Direction {
	switch {
	case pct > directionBand:
		return models.DirectionUp
	case pct < -directionBand:
		return models.DirectionDown
	default:
		return models.DirectionStable
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var _ domsvc.PricePredictor = (*Predictor)(nil)
