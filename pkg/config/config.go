package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Providers (sentiment / market data)
	Providers ProvidersConfig

	// Notification channels
	Notify NotifyConfig

	// Analytical collaborator
	Gemini GeminiConfig

	// Scan
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ProviderConfig holds transport settings for one upstream provider.
// Every provider gets its own limiter built from these values.
type ProviderConfig struct {
	BaseURL       string
	MaxConcurrent int
	MinDelay      time.Duration
	MaxAttempts   int
	RetryDelay    time.Duration
	Timeout       time.Duration
}

// ProvidersConfig groups the upstream providers
type ProvidersConfig struct {
	ApeWisdom  ProviderConfig
	Stocktwits ProviderConfig
	Yahoo      ProviderConfig
	Finviz     ProviderConfig
	SEC        ProviderConfig

	// SEC EDGAR 요청에는 연락처가 포함된 User-Agent 필수
	SECUserAgent string

	FundamentalsCacheTTL time.Duration
}

// NotifyConfig holds notification channel credentials.
// A channel with an empty endpoint/token is not registered.
type NotifyConfig struct {
	DiscordWebhookURL string
	SlackWebhookURL   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTo       []string

	TelegramBotToken string
	TelegramChatID   int64
}

// GeminiConfig holds the LLM analyst configuration
type GeminiConfig struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Enabled reports whether the analyst should be wired
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// ScanConfig holds scan-run settings
type ScanConfig struct {
	StrategyFile  string
	TickersFile   string
	CandleDays    int
	ScanSchedule  string
	TrackSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	cfg, err := LoadWithoutDB()
	if err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("config validation failed: DATABASE_URL is required")
	}

	return cfg, nil
}

// LoadWithoutDB reads configuration for commands that never touch the database
// (analyze, dry-run scans).
func LoadWithoutDB() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Providers: ProvidersConfig{
			ApeWisdom:            loadProvider("APEWISDOM", "https://apewisdom.io/api/v1.0", 2, "1s"),
			Stocktwits:           loadProvider("STOCKTWITS", "https://api.stocktwits.com/api/2", 1, "2s"),
			Yahoo:                loadProvider("YAHOO", "https://query1.finance.yahoo.com", 2, "500ms"),
			Finviz:               loadProvider("FINVIZ", "https://finviz.com", 1, "1500ms"),
			SEC:                  loadProvider("SEC", "https://data.sec.gov", 4, "150ms"),
			SECUserAgent:         getEnv("SEC_USER_AGENT", "tickerscope admin@example.com"),
			FundamentalsCacheTTL: getEnvAsDuration("FUNDAMENTALS_CACHE_TTL", "24h"),
		},

		Notify: NotifyConfig{
			DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
			SlackWebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
			SMTPHost:          getEnv("SMTP_HOST", ""),
			SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername:      getEnv("SMTP_USERNAME", ""),
			SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:          getEnv("SMTP_FROM", ""),
			SMTPTo:            getEnvAsList("SMTP_TO"),
			TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:    int64(getEnvAsInt("TELEGRAM_CHAT_ID", 0)),
		},

		Gemini: GeminiConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			RequestsPerMinute: getEnvAsInt("GEMINI_REQUESTS_PER_MINUTE", 10),
			Timeout:           getEnvAsDuration("GEMINI_TIMEOUT", "60s"),
		},

		Scan: ScanConfig{
			StrategyFile:  getEnv("STRATEGY_FILE", ""),
			TickersFile:   getEnv("TICKERS_FILE", ""),
			CandleDays:    getEnvAsInt("SCAN_CANDLE_DAYS", 60),
			ScanSchedule:  getEnv("SCAN_SCHEDULE", "0 30 16 * * 1-5"),
			TrackSchedule: getEnv("TRACK_SCHEDULE", "0 0 18 * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	for name, p := range map[string]ProviderConfig{
		"APEWISDOM":  c.Providers.ApeWisdom,
		"STOCKTWITS": c.Providers.Stocktwits,
		"YAHOO":      c.Providers.Yahoo,
		"FINVIZ":     c.Providers.Finviz,
		"SEC":        c.Providers.SEC,
	} {
		if p.MaxConcurrent < 1 {
			return fmt.Errorf("%s_MAX_CONCURRENT must be >= 1", name)
		}
		if p.MaxAttempts < 1 {
			return fmt.Errorf("%s_MAX_ATTEMPTS must be >= 1", name)
		}
	}

	if c.Scan.CandleDays < 7 {
		return fmt.Errorf("SCAN_CANDLE_DAYS must be >= 7")
	}

	return nil
}

// Helper functions (private, only used within this file)

func loadProvider(prefix, baseURL string, maxConcurrent int, minDelay string) ProviderConfig {
	return ProviderConfig{
		BaseURL:       getEnv(prefix+"_BASE_URL", baseURL),
		MaxConcurrent: getEnvAsInt(prefix+"_MAX_CONCURRENT", maxConcurrent),
		MinDelay:      getEnvAsDuration(prefix+"_MIN_DELAY", minDelay),
		MaxAttempts:   getEnvAsInt(prefix+"_MAX_ATTEMPTS", 3),
		RetryDelay:    getEnvAsDuration(prefix+"_RETRY_DELAY", "1s"),
		Timeout:       getEnvAsDuration(prefix+"_TIMEOUT", "15s"),
	}
}

// envFile overrides the .env search when set (CLI --config)
var envFile string

// SetEnvFile makes Load read this env file instead of searching for .env
func SetEnvFile(path string) {
	envFile = path
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	if envFile != "" {
		_ = godotenv.Load(envFile)
		return
	}

	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
