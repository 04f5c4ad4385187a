package risk

import (
	"NFTPredict/internal/domain/models"
	domsvc "NFTPredict/internal/domain/service"
)

const (
	RiskLowVolume         = "Low trading volume increases volatility risk"
	RiskSmallMarketCap    = "Small market cap vulnerable to manipulation"
	RiskNegativeSentiment = "Negative market sentiment could accelerate decline"

	RiskMarketVolatility = "High market volatility"
	RiskMacroeconomic    = "Macroeconomic uncertainty"
	RiskRegulatory       = "Regulatory changes"
)

const (
	lowVolumeThreshold    = 50.0
	smallMarketCapCeiling = 1000.0
)

// generalRisks always close the list, in this order.
var generalRisks = []string{RiskMarketVolatility, RiskMacroeconomic, RiskRegulatory}

// Assessor derives qualitative risk statements from the market snapshot and sentiment.
type Assessor struct{}

func NewAssessor() *Assessor { return &Assessor{} }

// Assess returns contextual risks followed by the general ones, without duplicates,
// keeping first-occurrence order.
func (a *Assessor) Assess(md models.MarketData, ai models.AIAnalysis) []string {
	in, err := models.Normalize(md, ai)
	if err != nil {
		return dedupe(generalRisks)
	}

	risks := make([]string, 0, 6)
	if in.Volume24h < lowVolumeThreshold {
		risks = append(risks, RiskLowVolume)
	}
	if in.MarketCap < smallMarketCapCeiling {
		risks = append(risks, RiskSmallMarketCap)
	}
	if in.Sentiment == models.SentimentBearish {
		risks = append(risks, RiskNegativeSentiment)
	}
	risks = append(risks, generalRisks...)

	return dedupe(risks)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var _ domsvc.RiskAssessor = (*Assessor)(nil)
