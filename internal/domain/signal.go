package domain

// Strategy labels produced by the tagger rule table.
const (
	TagTailRisk      = "TAIL_RISK"
	TagReflexivity   = "REFLEXIVITY_TREND"
	TagHighCertainty = "HIGH_CERTAINTY"
	TagTechLeverage  = "TECH_LEVERAGE"
	TagRawMarket     = "RAW_MARKET" // fallback when no rule fires
)

// Signal is a classified contract as it appears in a snapshot file. The JSON
// field names are the wire format consumed by downstream dashboards and by
// the Scanner's exclusion lookup, so they are part of the contract.
type Signal struct {
	Slug         string   `json:"slug"`   // event identifier
	Ticker       string   `json:"ticker"` // market identifier
	Question     string   `json:"question"`
	EventTitle   string   `json:"eventTitle"`
	Prices       string   `json:"prices"` // "Yes: 67.2% | No: 32.8%"
	Volume       int64    `json:"volume"`
	Liquidity    int64    `json:"liquidity"`
	EndDate      string   `json:"endDate"`
	DayChange    string   `json:"dayChange"` // signed percentage with two decimals
	Vol24h       int64    `json:"vol24h"`
	Spread       string   `json:"spread,omitempty"`
	SortOrder    float64  `json:"sortOrder,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
	Engine       string   `json:"engine,omitempty"`     // producing agent
	CoreTopic    string   `json:"core_topic,omitempty"` // originating directive text
	Category     string   `json:"category"`             // "CRYPTO | FINANCE"
	URL          string   `json:"url,omitempty"`
	StrategyTags []string `json:"strategy_tags"`
}

// DiagnosticRecord is written in place of signals when a run produced no
// results, so empty runs remain observable without a separate log pipeline.
type DiagnosticRecord struct {
	Info  string   `json:"info"`
	RunID string   `json:"run_id,omitempty"`
	Debug []string `json:"debug"`
}
