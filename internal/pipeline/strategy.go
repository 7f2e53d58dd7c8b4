package pipeline

import (
	"math"
	"strings"

	"github.com/polyscout/polyscout/internal/domain"
)

// Strategy rule thresholds. Prices are fractional probabilities, volumes and
// liquidity are USD notionals.
const (
	tailProbLow       = 0.05
	tailProbHigh      = 0.95
	tailMinLiquidity  = 5000
	trendMinVol24     = 10000
	trendMinDayChange = 0.05
	certainMinVolume  = 50000
	certainMaxSpread  = 0.01
	leverageMinVolume = 20000
)

// strategyRule is one named heuristic over a normalized contract. Each rule
// returns its label when it fires and "" otherwise; rules are independent, so
// one contract can carry several labels.
type strategyRule func(m domain.Market, prices []float64, category string) string

var strategyRules = []strategyRule{tailRisk, reflexivityTrend, highCertainty, techLeverage}

// tailRisk: a liquid market priced near certainty in either direction. The
// cheap side is a mispriced-tail candidate.
func tailRisk(m domain.Market, prices []float64, _ string) string {
	if m.Liquidity <= tailMinLiquidity {
		return ""
	}
	for _, p := range prices {
		if p < tailProbLow || p > tailProbHigh {
			return domain.TagTailRisk
		}
	}
	return ""
}

// reflexivityTrend: heavy 24h volume riding a large one-day move, in either
// direction.
func reflexivityTrend(m domain.Market, _ []float64, _ string) string {
	if m.Volume24h > trendMinVol24 && math.Abs(m.DayChange) > trendMinDayChange {
		return domain.TagReflexivity
	}
	return ""
}

// highCertainty: deep lifetime volume with a tight spread. A zero spread
// means the endpoint did not report one and is treated as wide.
func highCertainty(m domain.Market, _ []float64, _ string) string {
	spread := m.Spread
	if spread == 0 {
		spread = 1
	}
	if m.Volume > certainMinVolume && spread < certainMaxSpread {
		return domain.TagHighCertainty
	}
	return ""
}

// techLeverage: any TECH-categorized contract with meaningful volume.
func techLeverage(m domain.Market, _ []float64, category string) string {
	if strings.Contains(category, "TECH") && m.Volume > leverageMinVolume {
		return domain.TagTechLeverage
	}
	return ""
}

// StrategyTags runs every rule and collects the labels that fire. A contract
// matching no rule gets the RAW_MARKET fallback so the tag list is never
// empty.
func StrategyTags(m domain.Market, prices []float64, category string) []string {
	var tags []string
	for _, rule := range strategyRules {
		if tag := rule(m, prices, category); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = []string{domain.TagRawMarket}
	}
	return tags
}
