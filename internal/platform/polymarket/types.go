package polymarket

import (
	"encoding/json"
	"strings"

	"github.com/polyscout/polyscout/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. The Gamma API
// sends volume and liquidity as strings on some endpoints and numbers on
// others. Missing or unparseable values decode to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var parsed float64
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		*f = flexFloat(parsed)
	} else {
		*f = 0
	}
	return nil
}

// APITag is a category tag attached to a Gamma event.
type APITag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// APIEvent represents an event as returned by the Polymarket Gamma API.
// An event groups one or more related markets.
type APIEvent struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Slug    string      `json:"slug"`
	Active  flexBool    `json:"active"`
	Closed  bool        `json:"closed"`
	Tags    []APITag    `json:"tags"`
	Markets []APIMarket `json:"markets"`
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// The outcome name and price arrays are JSON-encoded strings and are kept
// that way; the pipeline normalizer parses them.
type APIMarket struct {
	ID                 string    `json:"id"`
	Question           string    `json:"question"`
	GroupItemTitle     string    `json:"groupItemTitle"`
	GroupItemThreshold flexFloat `json:"groupItemThreshold"`
	Slug               string    `json:"slug"`
	Active             flexBool  `json:"active"`
	Closed             bool      `json:"closed"`
	Archived           bool      `json:"archived"`
	Outcomes           string    `json:"outcomes"`      // e.g. "[\"Yes\",\"No\"]"
	OutcomePrices      string    `json:"outcomePrices"` // e.g. "[\"0.5\",\"0.5\"]"
	Volume             flexFloat `json:"volume"`
	Volume24hr         flexFloat `json:"volume24hr"`
	Liquidity          flexFloat `json:"liquidity"`
	Spread             flexFloat `json:"spread"`
	OneDayPriceChange  flexFloat `json:"oneDayPriceChange"`
	EndDate            string    `json:"endDate"`
	UpdatedAt          string    `json:"updatedAt"`
}

// ToDomainEvent converts an APIEvent to a domain.Event. Tag slugs are
// lowercased; market conversion is lossless (eligibility is decided by the
// pipeline, not here).
func (e *APIEvent) ToDomainEvent() domain.Event {
	ev := domain.Event{
		Slug:  e.Slug,
		Title: e.Title,
	}
	for _, t := range e.Tags {
		if t.Slug != "" {
			ev.Tags = append(ev.Tags, strings.ToLower(t.Slug))
		}
	}
	for i := range e.Markets {
		ev.Markets = append(ev.Markets, e.Markets[i].ToDomainMarket())
	}
	return ev
}

// ToDomainMarket converts an APIMarket to a domain.Market. The display
// question prefers the group item title (e.g. "$100k" inside a multi-strike
// event) over the full question text.
func (m *APIMarket) ToDomainMarket() domain.Market {
	question := m.GroupItemTitle
	if question == "" {
		question = m.Question
	}

	endDate := "N/A"
	if m.EndDate != "" {
		endDate, _, _ = strings.Cut(m.EndDate, "T")
	}

	return domain.Market{
		Ticker:        m.Slug,
		Question:      question,
		Active:        bool(m.Active),
		Closed:        m.Closed,
		Archived:      m.Archived,
		Outcomes:      m.Outcomes,
		OutcomePrices: m.OutcomePrices,
		Volume:        float64(m.Volume),
		Volume24h:     float64(m.Volume24hr),
		Liquidity:     float64(m.Liquidity),
		Spread:        float64(m.Spread),
		DayChange:     float64(m.OneDayPriceChange),
		SortOrder:     float64(m.GroupItemThreshold),
		EndDate:       endDate,
		UpdatedAt:     m.UpdatedAt,
	}
}
