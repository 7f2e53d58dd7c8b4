package polymarket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"1"`, true},
		{`"false"`, false},
		{`"no"`, false},
	}
	for _, tt := range tests {
		var f flexBool
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f), "input %s", tt.in)
		assert.Equal(t, tt.want, bool(f), "input %s", tt.in)
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`123.45`, 123.45},
		{`"123.45"`, 123.45},
		{`"0"`, 0},
		{`""`, 0},
		{`"garbage"`, 0},
	}
	for _, tt := range tests {
		var f flexFloat
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f), "input %s", tt.in)
		assert.Equal(t, tt.want, float64(f), "input %s", tt.in)
	}
}

func TestToDomainEvent(t *testing.T) {
	raw := `{
		"id": "123",
		"title": "Fed decision in March?",
		"slug": "fed-decision-march",
		"active": "true",
		"tags": [
			{"id": "1", "label": "Economy", "slug": "Economy"},
			{"id": "2", "label": "", "slug": ""}
		],
		"markets": [{
			"question": "Will the Fed cut rates in March?",
			"groupItemTitle": "25 bps cut",
			"groupItemThreshold": "2",
			"slug": "fed-march-25bps",
			"active": true,
			"outcomes": "[\"Yes\",\"No\"]",
			"outcomePrices": "[\"0.672\",\"0.328\"]",
			"volume": "40000.5",
			"volume24hr": 12000,
			"liquidity": "8000",
			"spread": 0.015,
			"oneDayPriceChange": -0.03,
			"endDate": "2026-03-18T12:00:00Z",
			"updatedAt": "2026-03-10T09:00:00Z"
		}]
	}`

	var ev APIEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	got := ev.ToDomainEvent()
	assert.Equal(t, "fed-decision-march", got.Slug)
	assert.Equal(t, []string{"economy"}, got.Tags, "tags lowercased, empty slugs dropped")
	require.Len(t, got.Markets, 1)

	m := got.Markets[0]
	assert.Equal(t, "fed-march-25bps", m.Ticker)
	assert.Equal(t, "25 bps cut", m.Question, "group item title preferred")
	assert.True(t, m.Active)
	assert.Equal(t, `["Yes","No"]`, m.Outcomes)
	assert.Equal(t, 40000.5, m.Volume)
	assert.Equal(t, float64(12000), m.Volume24h)
	assert.Equal(t, float64(8000), m.Liquidity)
	assert.Equal(t, -0.03, m.DayChange)
	assert.Equal(t, float64(2), m.SortOrder)
	assert.Equal(t, "2026-03-18", m.EndDate, "end date truncated to the day")
}

func TestToDomainMarketDefaults(t *testing.T) {
	m := APIMarket{Question: "Will it happen?", Slug: "q"}
	got := m.ToDomainMarket()
	assert.Equal(t, "Will it happen?", got.Question, "falls back to full question")
	assert.Equal(t, "N/A", got.EndDate)
}
