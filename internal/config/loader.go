package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYSCOUT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYSCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "POLYSCOUT_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.SiteHost, "POLYSCOUT_POLYMARKET_SITE_HOST")
	setStr(&cfg.Polymarket.UserAgent, "POLYSCOUT_POLYMARKET_USER_AGENT")
	setFloat64(&cfg.Polymarket.RateLimitRPS, "POLYSCOUT_POLYMARKET_RATE_LIMIT_RPS")
	setDuration(&cfg.Polymarket.FetchTimeout, "POLYSCOUT_POLYMARKET_FETCH_TIMEOUT")

	// ── Search ──
	setStr(&cfg.Search.AlgoliaAppID, "POLYSCOUT_SEARCH_ALGOLIA_APP_ID")
	setStr(&cfg.Search.AlgoliaAPIKey, "POLYSCOUT_SEARCH_ALGOLIA_API_KEY")
	setStr(&cfg.Search.AlgoliaIndex, "POLYSCOUT_SEARCH_ALGOLIA_INDEX")
	setStringSlice(&cfg.Search.AlgoliaHosts, "POLYSCOUT_SEARCH_ALGOLIA_HOSTS")
	setDuration(&cfg.Search.SearchTimeout, "POLYSCOUT_SEARCH_TIMEOUT")
	setDuration(&cfg.Search.FallbackTimeout, "POLYSCOUT_SEARCH_FALLBACK_TIMEOUT")

	// ── Store ──
	setStr(&cfg.Store.Backend, "POLYSCOUT_STORE_BACKEND")
	setStr(&cfg.Store.ScannerPrefix, "POLYSCOUT_STORE_SCANNER_PREFIX")
	setStr(&cfg.Store.TargeterPrefix, "POLYSCOUT_STORE_TARGETER_PREFIX")
	setStr(&cfg.Store.GitHub.APIHost, "POLYSCOUT_STORE_GITHUB_API_HOST")
	setStr(&cfg.Store.GitHub.Owner, "GITHUB_REPOSITORY_OWNER") // CI compatibility alias
	setStr(&cfg.Store.GitHub.Owner, "POLYSCOUT_STORE_GITHUB_OWNER")
	setStr(&cfg.Store.GitHub.Repo, "POLYSCOUT_STORE_GITHUB_REPO")
	setStr(&cfg.Store.GitHub.Token, "GITHUB_TOKEN") // CI compatibility alias
	setStr(&cfg.Store.GitHub.Token, "POLYSCOUT_STORE_GITHUB_TOKEN")
	setStr(&cfg.Store.S3.Endpoint, "POLYSCOUT_STORE_S3_ENDPOINT")
	setStr(&cfg.Store.S3.Region, "POLYSCOUT_STORE_S3_REGION")
	setStr(&cfg.Store.S3.Bucket, "POLYSCOUT_STORE_S3_BUCKET")
	setStr(&cfg.Store.S3.AccessKey, "POLYSCOUT_STORE_S3_ACCESS_KEY")
	setStr(&cfg.Store.S3.SecretKey, "POLYSCOUT_STORE_S3_SECRET_KEY")
	setBool(&cfg.Store.S3.UseSSL, "POLYSCOUT_STORE_S3_USE_SSL")
	setBool(&cfg.Store.S3.ForcePathStyle, "POLYSCOUT_STORE_S3_FORCE_PATH_STYLE")

	// When running under GitHub Actions the repository is "owner/repo".
	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" && cfg.Store.GitHub.Repo == "" {
		if _, name, ok := strings.Cut(repo, "/"); ok {
			cfg.Store.GitHub.Repo = name
		}
	}

	// ── Directives ──
	setStr(&cfg.Directives.APIHost, "POLYSCOUT_DIRECTIVES_API_HOST")
	setStr(&cfg.Directives.Owner, "POLYSCOUT_DIRECTIVES_OWNER")
	setStr(&cfg.Directives.Repo, "POLYSCOUT_DIRECTIVES_REPO")
	setStr(&cfg.Directives.Token, "POLYSCOUT_DIRECTIVES_TOKEN")
	setStr(&cfg.Directives.Tag, "POLYSCOUT_DIRECTIVES_TAG")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYSCOUT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYSCOUT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYSCOUT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYSCOUT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYSCOUT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYSCOUT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYSCOUT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.ResolveTTL, "POLYSCOUT_REDIS_RESOLVE_TTL")

	// ── Scanner / Targeter ──
	setInt(&cfg.Scanner.SweepLimit, "POLYSCOUT_SCANNER_SWEEP_LIMIT")
	setInt(&cfg.Scanner.BaselineSize, "POLYSCOUT_SCANNER_BASELINE_SIZE")
	setInt(&cfg.Scanner.GemsPerSector, "POLYSCOUT_SCANNER_GEMS_PER_SECTOR")
	setBool(&cfg.Targeter.UseBuiltinTopics, "POLYSCOUT_TARGETER_USE_BUILTIN_TOPICS")
	setFloat64(&cfg.Targeter.MinVolume, "POLYSCOUT_TARGETER_MIN_VOLUME")
	setFloat64(&cfg.Targeter.MinLiquidity, "POLYSCOUT_TARGETER_MIN_LIQUIDITY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYSCOUT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYSCOUT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYSCOUT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYSCOUT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYSCOUT_MODE")
	setStr(&cfg.LogLevel, "POLYSCOUT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
