package prediction

import "NFTPredict/internal/domain/models"

var timeframeTable = map[models.Timeframe]models.TimeframeFactors{
	models.TF24h: {Timeframe: models.TF24h, Volatility: 1.5, SentimentWeight: 0.8, VolumeWeight: 0.9, NoiseAmplitude: 3.0},
	models.TF7d:  {Timeframe: models.TF7d, Volatility: 1.2, SentimentWeight: 0.6, VolumeWeight: 0.7, NoiseAmplitude: 5.0},
	models.TF30d: {Timeframe: models.TF30d, Volatility: 1.0, SentimentWeight: 0.4, VolumeWeight: 0.5, NoiseAmplitude: 8.0},
}

// base percentage change by sentiment and horizon
var baseChangeTable = map[models.Sentiment]map[models.Timeframe]float64{
	models.SentimentBullish: {models.TF24h: 3.0, models.TF7d: 5.0, models.TF30d: 8.0},
	models.SentimentBearish: {models.TF24h: -2.5, models.TF7d: -6.0, models.TF30d: -12.0},
	models.SentimentNeutral: {models.TF24h: 0.0, models.TF7d: -1.0, models.TF30d: -2.0},
}

// FactorsFor returns the factor row for tf. Unknown horizons use the 7d row.
func FactorsFor(tf models.Timeframe) models.TimeframeFactors {
	if f, ok := timeframeTable[tf]; ok {
		return f
	}
	return timeframeTable[models.TF7d]
}

// TimeframeTable returns the static factor table in horizon order.
func TimeframeTable() []models.TimeframeFactors {
	out := make([]models.TimeframeFactors, 0, len(timeframeTable))
	for _, tf := range models.Timeframes() {
		out = append(out, timeframeTable[tf])
	}
	return out
}

// BaseChange returns the sentiment-driven base percentage change for tf.
// Unknown sentiments use the neutral row; unknown horizons yield 0.
func BaseChange(s models.Sentiment, tf models.Timeframe) float64 {
	row, ok := baseChangeTable[s]
	if !ok {
		row = baseChangeTable[models.SentimentNeutral]
	}
	return row[tf]
}

// VolumeFactor scales the base change by 24h trading volume.
func VolumeFactor(volume float64) float64 {
	switch {
	case volume > 500:
		return 1.3
	case volume > 100:
		return 1.1
	case volume > 50:
		return 1.0
	case volume > 10:
		return 0.9
	default:
		return 0.7
	}
}

// SentimentFactor scales the base change by the reasoning confidence score (0-1),
// amplified for short horizons and damped for long ones.
func SentimentFactor(score float64, tf models.Timeframe) float64 {
	multiplier := 0.8
	switch tf {
	case models.TF24h:
		multiplier = 1.2
	case models.TF7d:
		multiplier = 1.0
	}

	switch {
	case score > 0.8:
		return 1.2 * multiplier
	case score > 0.6:
		return 1.1 * multiplier
	case score > 0.4:
		return 1.0 * multiplier
	case score > 0.2:
		return 0.9 * multiplier
	default:
		return 0.8 * multiplier
	}
}

// TimeframePenalty lowers confidence for longer horizons.
func TimeframePenalty(tf models.Timeframe) float64 {
	switch tf {
	case models.TF24h:
		return 0
	case models.TF7d:
		return -10
	case models.TF30d:
		return -20
	default:
		return -15
	}
}

// VolumeBonus adjusts per-timeframe confidence by 24h volume.
func VolumeBonus(volume float64) float64 {
	switch {
	case volume > 100:
		return 5
	case volume > 50:
		return 0
	default:
		return -5
	}
}

// VolumeScore is the volume component of the overall confidence.
func VolumeScore(volume float64) float64 {
	switch {
	case volume > 200:
		return 85
	case volume > 100:
		return 75
	case volume > 50:
		return 65
	case volume > 10:
		return 55
	default:
		return 45
	}
}
