package service

import "NFTPredict/internal/domain/models"

// PricePredictor computes multi-timeframe price predictions.
type PricePredictor interface {
	PredictPrices(md models.MarketData, ai models.AIAnalysis) models.PredictionBundle
	PredictTimeframe(basePrice float64, md models.MarketData, ai models.AIAnalysis, tf models.Timeframe) models.TimeframeOutcome
}

// RiskAssessor derives qualitative risk statements.
type RiskAssessor interface {
	Assess(md models.MarketData, ai models.AIAnalysis) []string
}
