package pipeline

import (
	"strings"

	"github.com/polyscout/polyscout/internal/config"
)

// NormalizeText canonicalizes a title for matching: lowercase, question and
// exclamation marks stripped, whitespace collapsed to single spaces.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("?", "", "!", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// SectorTable classifies events into the configured sector vocabulary by
// matching sector names against event tag slugs.
type SectorTable struct {
	rules []config.SectorRule
}

func NewSectorTable(rules []config.SectorRule) *SectorTable {
	return &SectorTable{rules: rules}
}

// Rules returns the table in priority order.
func (t *SectorTable) Rules() []config.SectorRule { return t.rules }

// Classify matches the event tags against the sector table. The first
// matching rule (table order) is the primary sector and supplies the sort key
// and volume floor; the display category joins every matched sector name with
// " | ". ok is false when no sector matches.
func (t *SectorTable) Classify(tags []string) (primary config.SectorRule, category string, ok bool) {
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[strings.ToLower(tag)] = struct{}{}
	}
	var matched []string
	for _, r := range t.rules {
		if _, hit := tagSet[strings.ToLower(r.Name)]; !hit {
			continue
		}
		if len(matched) == 0 {
			primary = r
		}
		matched = append(matched, r.Name)
	}
	if len(matched) == 0 {
		return config.SectorRule{}, "", false
	}
	return primary, strings.Join(matched, " | "), true
}

// TitleEligible applies the sector's keyword filters to a normalized event
// title: any noise keyword rejects it, and non-loose sectors additionally
// require at least one signal keyword.
func TitleEligible(rule config.SectorRule, normTitle string) bool {
	for _, kw := range rule.Noise {
		if strings.Contains(normTitle, kw) {
			return false
		}
	}
	if rule.Loose {
		return true
	}
	for _, kw := range rule.Signals {
		if strings.Contains(normTitle, kw) {
			return true
		}
	}
	return false
}

// sortMetric returns the market metric the sector ranks and gates on.
func sortMetric(rule config.SectorRule, c Candidate) float64 {
	if rule.SortKey == "liquidity" {
		return c.Market.Liquidity
	}
	return c.Market.Volume24h
}

// topicCategories maps directive keywords to a category label; first match
// wins. The Targeter has no event tags to go on at classification time, so it
// reads the category off the directive text itself.
var topicCategories = []struct {
	keywords []string
	label    string
}{
	{[]string{"fed", "rate", "inflation", "gdp", "cpi"}, "ECONOMY"},
	{[]string{"gold", "oil", "s&p", "nasdaq", "silver"}, "FINANCE"},
	{[]string{"bitcoin", "ethereum", "solana", "crypto", "btc", "eth"}, "CRYPTO"},
	{[]string{"election", "president", "senate", "congress"}, "POLITICS"},
	{[]string{"war", "ceasefire", "strike", "nuclear"}, "GEOPOLITICS"},
	{[]string{"ai", "gpt", "nvidia", "openai"}, "TECH"},
	{[]string{"spacex", "nasa", "temperature"}, "SCIENCE"},
}

// CategoryForTopic classifies a directive text by keyword lookup, defaulting
// to WORLD.
func CategoryForTopic(topic string) string {
	t := strings.ToLower(topic)
	for _, rule := range topicCategories {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.label
			}
		}
	}
	return "WORLD"
}
