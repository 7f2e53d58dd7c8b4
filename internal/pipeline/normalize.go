package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/polyscout/polyscout/internal/domain"
)

// Candidate is a normalized, eligible contract before ranking. Prices and the
// raw market ride along for the strategy tagger and per-sector sorting.
type Candidate struct {
	Signal domain.Signal
	Prices []float64
	Market domain.Market
}

// parseOutcomeArrays decodes the outcome label and price arrays a market
// carries as embedded JSON strings. Prices arrive either as numbers or as
// numeric strings depending on the endpoint. A decode failure or a length
// mismatch makes the market unusable.
func parseOutcomeArrays(m domain.Market) ([]string, []float64, error) {
	var labels []string
	if err := json.Unmarshal([]byte(m.Outcomes), &labels); err != nil {
		return nil, nil, fmt.Errorf("pipeline: outcomes %q: %w", m.Ticker, err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(m.OutcomePrices), &raw); err != nil {
		return nil, nil, fmt.Errorf("pipeline: outcome prices %q: %w", m.Ticker, err)
	}
	prices := make([]float64, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("pipeline: outcome price %q: %w", m.Ticker, err)
			}
			prices[i] = f
			continue
		}
		var f float64
		if err := json.Unmarshal(r, &f); err != nil {
			return nil, nil, fmt.Errorf("pipeline: outcome price %q: %w", m.Ticker, err)
		}
		prices[i] = f
	}
	if len(labels) != len(prices) {
		return nil, nil, fmt.Errorf("pipeline: outcome arrays of %q differ in length", m.Ticker)
	}
	return labels, prices, nil
}

// FormatPrices renders the outcome ladder as "Yes: 67.2% | No: 32.8%".
func FormatPrices(labels []string, prices []float64) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s: %.1f%%", l, prices[i]*100)
	}
	return strings.Join(parts, " | ")
}

// FormatDayChange renders a fractional 24h move as a percentage.
func FormatDayChange(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatSpread renders the bid/ask spread as a percentage, "N/A" when the
// endpoint did not report one.
func FormatSpread(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// tradable reports whether a market is live: active, not closed and not
// archived.
func tradable(m domain.Market) bool {
	return m.Active && !m.Closed && !m.Archived
}

// newSignal builds the snapshot fields shared by both agents. It fails when
// the market is not tradable or its outcome arrays do not parse.
func newSignal(ev domain.Event, m domain.Market, category string) (Candidate, error) {
	if !tradable(m) {
		return Candidate{}, fmt.Errorf("pipeline: market %q not tradable", m.Ticker)
	}
	labels, prices, err := parseOutcomeArrays(m)
	if err != nil {
		return Candidate{}, err
	}
	sig := domain.Signal{
		Slug:         ev.Slug,
		Ticker:       m.Ticker,
		Question:     m.Question,
		EventTitle:   ev.Title,
		Prices:       FormatPrices(labels, prices),
		Volume:       int64(math.Round(m.Volume)),
		Liquidity:    int64(math.Round(m.Liquidity)),
		EndDate:      m.EndDate,
		DayChange:    FormatDayChange(m.DayChange),
		Vol24h:       int64(math.Round(m.Volume24h)),
		Category:     category,
		StrategyTags: StrategyTags(m, prices, category),
	}
	return Candidate{Signal: sig, Prices: prices, Market: m}, nil
}
