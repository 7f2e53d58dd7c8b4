// Package domain defines the core types and interfaces shared by every layer
// of polyscout: events and markets as fetched from the exchange, classified
// signals as written to snapshots, and the external-collaborator interfaces
// (resolver backends, document store, directive source).
package domain

// Event is a contract group: a named real-world question with one or more
// tradable markets (time horizons or mutually exclusive outcomes).
type Event struct {
	Slug    string // canonical identifier
	Title   string
	Tags    []string // free-form category tag slugs, lowercase
	Markets []Market
}

// Market is one tradable contract inside an Event. The outcome name and
// price arrays arrive JSON-encoded from the Gamma API and are kept raw here;
// the normalizer parses them and discards the market on failure.
type Market struct {
	Ticker        string // market slug
	Question      string
	Active        bool
	Closed        bool
	Archived      bool
	Outcomes      string // JSON-encoded, e.g. `["Yes","No"]`
	OutcomePrices string // JSON-encoded, e.g. `["0.672","0.328"]`
	Volume        float64
	Volume24h     float64
	Liquidity     float64
	Spread        float64
	DayChange     float64 // one-day price change, signed
	SortOrder     float64 // group item threshold
	EndDate       string  // YYYY-MM-DD, "N/A" when unknown
	UpdatedAt     string
}
