package models

import (
	"fmt"
	"math"

	"github.com/creasty/defaults"
)

// Sentiment is the upstream AI judgment of market mood.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

const (
	DefaultConfidenceScore = 70.0
	DefaultDataQuality     = 75.0
	DefaultStepConfidence  = 70.0
)

// MarketData is the numeric market snapshot of a collection.
// FloorPrice has no default: a prediction without it is a hard failure.
type MarketData struct {
	FloorPrice *float64 `json:"floor_price"`
	Volume24h  *float64 `json:"volume_24h" default:"0"`
	MarketCap  *float64 `json:"market_cap" default:"0"`
}

// ReasoningStep is one step of the upstream AI reasoning chain.
type ReasoningStep struct {
	Confidence *float64 `json:"confidence" default:"70"`
}

// AIAnalysis is the pre-computed sentiment analysis for a collection.
type AIAnalysis struct {
	MarketSentiment *string         `json:"market_sentiment" default:"neutral" validate:"omitempty,oneof=bullish bearish neutral"`
	ConfidenceScore *float64        `json:"confidence_score" default:"70" validate:"omitempty,gte=0,lte=100"`
	DataQuality     *float64        `json:"data_quality" default:"75" validate:"omitempty,gte=0,lte=100"`
	ReasoningSteps  []ReasoningStep `json:"reasoning_steps"`
}

// Inputs is the normalized, fully defaulted view of MarketData and AIAnalysis.
// It is the only thing the scoring code reads.
type Inputs struct {
	FloorPrice      float64
	HasFloorPrice   bool
	Volume24h       float64
	MarketCap       float64
	Sentiment       Sentiment
	ConfidenceScore float64
	DataQuality     float64
	// SentimentScore is the first reasoning step confidence scaled to [0,1].
	SentimentScore float64
}

// Normalize applies the field defaults to copies of md and ai.
// The caller's records are never modified.
func Normalize(md MarketData, ai AIAnalysis) (Inputs, error) {
	mdc := md
	aic := ai
	if len(ai.ReasoningSteps) > 0 {
		aic.ReasoningSteps = make([]ReasoningStep, len(ai.ReasoningSteps))
		copy(aic.ReasoningSteps, ai.ReasoningSteps)
	}

	if err := defaults.Set(&mdc); err != nil {
		return Inputs{}, fmt.Errorf("market data defaults: %w", err)
	}
	if err := defaults.Set(&aic); err != nil {
		return Inputs{}, fmt.Errorf("ai analysis defaults: %w", err)
	}

	in := Inputs{
		Volume24h:       deref(mdc.Volume24h, 0),
		MarketCap:       deref(mdc.MarketCap, 0),
		Sentiment:       SentimentNeutral,
		ConfidenceScore: deref(aic.ConfidenceScore, DefaultConfidenceScore),
		DataQuality:     deref(aic.DataQuality, DefaultDataQuality),
		SentimentScore:  DefaultStepConfidence / 100,
	}
	if mdc.FloorPrice != nil {
		in.FloorPrice = *mdc.FloorPrice
		in.HasFloorPrice = true
	}
	if aic.MarketSentiment != nil {
		in.Sentiment = Sentiment(*aic.MarketSentiment)
	}
	if len(aic.ReasoningSteps) > 0 {
		in.SentimentScore = deref(aic.ReasoningSteps[0].Confidence, DefaultStepConfidence) / 100
	}
	return in, nil
}

// BasePrice returns the floor price and whether it can anchor a prediction.
func (in Inputs) BasePrice() (float64, bool) {
	if !in.HasFloorPrice || !ValidBasePrice(in.FloorPrice) {
		return 0, false
	}
	return in.FloorPrice, true
}

// ValidBasePrice reports whether p is a finite, strictly positive price.
func ValidBasePrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Float64 returns a pointer to v. Handy for building MarketData and AIAnalysis literals.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
