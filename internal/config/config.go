// Package config defines the top-level configuration for polyscout and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYSCOUT_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Search     SearchConfig     `toml:"search"`
	Store      StoreConfig      `toml:"store"`
	Directives DirectivesConfig `toml:"directives"`
	Redis      RedisConfig      `toml:"redis"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Targeter   TargeterConfig   `toml:"targeter"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Gamma API endpoints and client limits.
type PolymarketConfig struct {
	GammaHost    string   `toml:"gamma_host"`
	SiteHost     string   `toml:"site_host"` // used only to build event URLs
	UserAgent    string   `toml:"user_agent"`
	RateLimitRPS float64  `toml:"rate_limit_rps"`
	FetchTimeout duration `toml:"fetch_timeout"`
}

// SearchConfig holds the resolver backend chain parameters: the Algolia
// index mirrors tried first, and the public keyword-search fallback.
type SearchConfig struct {
	AlgoliaAppID    string   `toml:"algolia_app_id"`
	AlgoliaAPIKey   string   `toml:"algolia_api_key"`
	AlgoliaIndex    string   `toml:"algolia_index"`
	AlgoliaHosts    []string `toml:"algolia_hosts"` // derived from app id when empty
	SearchTimeout   duration `toml:"search_timeout"`
	FallbackTimeout duration `toml:"fallback_timeout"`
}

// AlgoliaHostList returns the configured mirror hosts, or the standard three
// derived from the application ID when none are configured. Order is the
// fallback order.
func (s *SearchConfig) AlgoliaHostList() []string {
	if len(s.AlgoliaHosts) > 0 {
		return s.AlgoliaHosts
	}
	id := strings.ToLower(s.AlgoliaAppID)
	if id == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("https://%s.algolia.net", id),
		fmt.Sprintf("https://%s-1.algolianet.com", id),
		fmt.Sprintf("https://%s-dsn.algolia.net", id),
	}
}

// StoreConfig selects and configures the document store backend used for
// snapshot persistence and the Scanner's exclusion lookup.
type StoreConfig struct {
	Backend        string       `toml:"backend"` // "github" or "s3"
	ScannerPrefix  string       `toml:"scanner_prefix"`
	TargeterPrefix string       `toml:"targeter_prefix"`
	GitHub         GitHubConfig `toml:"github"`
	S3             S3Config     `toml:"s3"`
}

// GitHubConfig holds GitHub contents-API store parameters.
type GitHubConfig struct {
	APIHost string `toml:"api_host"`
	Owner   string `toml:"owner"`
	Repo    string `toml:"repo"`
	Token   string `toml:"token"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// DirectivesConfig holds the operator-directive source parameters (a GitHub
// issues queue by default).
type DirectivesConfig struct {
	APIHost string `toml:"api_host"`
	Owner   string `toml:"owner"`
	Repo    string `toml:"repo"`
	Token   string `toml:"token"`
	// Tag marks issues in the Targeter's scope, matched case-insensitively
	// against the issue title, e.g. "[poly]".
	Tag string `toml:"tag"`
}

// RedisConfig holds the optional resolver-cache connection parameters.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	ResolveTTL duration `toml:"resolve_ttl"`
}

// SectorRule is one entry of the sector classification table. The rule order
// in ScannerConfig.Sectors is the priority order: the first matching sector
// selects SortKey and MinVol; the full match set forms the display category.
type SectorRule struct {
	Name    string  `toml:"name"`
	SortKey string  `toml:"sort_key"` // "vol24h" or "liquidity"
	MinVol  float64 `toml:"min_vol"`
	// Loose sectors need no signal-keyword match in the title.
	Loose   bool     `toml:"loose"`
	Signals []string `toml:"signals"`
	Noise   []string `toml:"noise"`
}

// ScannerConfig holds the broad-sweep agent parameters.
type ScannerConfig struct {
	SweepLimit    int          `toml:"sweep_limit"`
	BaselineSize  int          `toml:"baseline_size"`
	GemsPerSector int          `toml:"gems_per_sector"`
	Sectors       []SectorRule `toml:"sectors"`
}

// TargeterConfig holds the directive-driven agent parameters.
type TargeterConfig struct {
	// UseBuiltinTopics switches the query source from operator directives to
	// the hand-authored topic list (gold settlement, Fed decisions, Bitcoin).
	UseBuiltinTopics bool    `toml:"use_builtin_topics"`
	MinVolume        float64 `toml:"min_volume"`
	MinLiquidity     float64 `toml:"min_liquidity"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "2.5s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "2.5s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. The
// sector table and its thresholds are hand-tuned operational constants; they
// live here precisely so operators can retune them without a code change.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost:    "https://gamma-api.polymarket.com",
			SiteHost:     "https://polymarket.com",
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RateLimitRPS: 4,
			FetchTimeout: duration{5 * time.Second},
		},
		Search: SearchConfig{
			AlgoliaIndex:    "polymarket_events_production",
			SearchTimeout:   duration{2500 * time.Millisecond},
			FallbackTimeout: duration{3 * time.Second},
		},
		Store: StoreConfig{
			Backend:        "github",
			ScannerPrefix:  "data/trends",
			TargeterPrefix: "data/strategy",
			GitHub: GitHubConfig{
				APIHost: "https://api.github.com",
			},
			S3: S3Config{
				Endpoint:       "http://localhost:9000",
				Region:         "us-east-1",
				Bucket:         "polyscout-data",
				UseSSL:         false,
				ForcePathStyle: true,
			},
		},
		Directives: DirectivesConfig{
			APIHost: "https://api.github.com",
			Tag:     "[poly]",
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			ResolveTTL: duration{30 * time.Minute},
		},
		Scanner: ScannerConfig{
			SweepLimit:    1000,
			BaselineSize:  30,
			GemsPerSector: 3,
			Sectors:       defaultSectors(),
		},
		Targeter: TargeterConfig{
			UseBuiltinTopics: false,
			MinVolume:        10,
			MinLiquidity:     10,
		},
		Notify: NotifyConfig{
			Events: []string{"run_complete", "error"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// defaultSectors is the ordered sector vocabulary. The first six sort by 24h
// volume with high floors; FINANCE and CLIMATE-SCIENCE are naturally thinner
// and sort by liquidity with very low floors so they can surface from the
// top-1000 sweep at all.
func defaultSectors() []SectorRule {
	return []SectorRule{
		{Name: "POLITICS", SortKey: "vol24h", MinVol: 10000, Loose: true,
			Signals: []string{"election", "nominate", "strike", "shutdown", "fed", "president", "war", "cabinet"},
			Noise:   []string{"poll", "approval"}},
		{Name: "ECONOMY", SortKey: "vol24h", MinVol: 10000,
			Signals: []string{"fed", "rate", "inflation", "gdp"},
			Noise:   []string{"ranking"}},
		{Name: "CRYPTO", SortKey: "vol24h", MinVol: 10000,
			Signals: []string{"bitcoin", "ethereum", "solana", "etf"},
			Noise:   []string{"nft", "meme"}},
		{Name: "TECH", SortKey: "vol24h", MinVol: 5000,
			Signals: []string{"ai", "gpt", "nvidia", "apple", "semiconductor"},
			Noise:   []string{"game"}},
		{Name: "GEOPOLITICS", SortKey: "vol24h", MinVol: 5000, Loose: true,
			Signals: []string{"strike", "ceasefire", "invasion", "nuclear", "war", "border"},
			Noise:   []string{"local"}},
		{Name: "WORLD", SortKey: "vol24h", MinVol: 5000, Loose: true,
			Signals: []string{"prime minister", "eu", "nato", "trade"},
			Noise:   nil},
		{Name: "FINANCE", SortKey: "liquidity", MinVol: 1000,
			Signals: []string{"gold", "oil", "s&p", "nasdaq", "stock", "revenue"},
			Noise:   []string{"dividend"}},
		{Name: "CLIMATE-SCIENCE", SortKey: "liquidity", MinVol: 500,
			Signals: []string{"temperature", "spacex", "virus", "hurricane", "earthquake"},
			Noise:   []string{"weather"}},
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"target": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, target, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.RateLimitRPS <= 0 {
		errs = append(errs, "polymarket: rate_limit_rps must be > 0")
	}
	if c.Polymarket.FetchTimeout.Duration <= 0 {
		errs = append(errs, "polymarket: fetch_timeout must be > 0")
	}

	if c.Search.SearchTimeout.Duration <= 0 {
		errs = append(errs, "search: search_timeout must be > 0")
	}
	if c.Search.FallbackTimeout.Duration <= 0 {
		errs = append(errs, "search: fallback_timeout must be > 0")
	}

	switch strings.ToLower(c.Store.Backend) {
	case "github":
		if c.Store.GitHub.Owner == "" || c.Store.GitHub.Repo == "" {
			errs = append(errs, "store.github: owner and repo must not be empty")
		}
		if c.Store.GitHub.Token == "" {
			errs = append(errs, "store.github: token is required (writes are authenticated)")
		}
	case "s3":
		if c.Store.S3.Endpoint == "" {
			errs = append(errs, "store.s3: endpoint must not be empty")
		}
		if c.Store.S3.Bucket == "" {
			errs = append(errs, "store.s3: bucket must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("store: unknown backend %q (valid: github, s3)", c.Store.Backend))
	}
	if c.Store.ScannerPrefix == "" || c.Store.TargeterPrefix == "" {
		errs = append(errs, "store: scanner_prefix and targeter_prefix must not be empty")
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.Scanner.SweepLimit < 1 {
		errs = append(errs, "scanner: sweep_limit must be >= 1")
	}
	if c.Scanner.BaselineSize < 1 {
		errs = append(errs, "scanner: baseline_size must be >= 1")
	}
	if c.Scanner.GemsPerSector < 0 {
		errs = append(errs, "scanner: gems_per_sector must be >= 0")
	}
	if len(c.Scanner.Sectors) == 0 {
		errs = append(errs, "scanner: at least one sector rule is required")
	}
	for i, s := range c.Scanner.Sectors {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("scanner.sectors[%d]: name must not be empty", i))
		}
		if s.SortKey != "vol24h" && s.SortKey != "liquidity" {
			errs = append(errs, fmt.Sprintf("scanner.sectors[%d]: sort_key must be vol24h or liquidity, got %q", i, s.SortKey))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
