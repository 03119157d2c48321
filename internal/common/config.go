package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	LLM          LLMConfig          `toml:"llm"`
	MarketData   MarketDataConfig   `toml:"market_data"`
	Analysis     AnalysisConfig     `toml:"analysis"`
	Conversation ConversationConfig `toml:"conversation"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // "badger" (default) or "memory"
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	Provider LLMProvider  `toml:"provider"` // "gemini" or "claude"
	Gemini   GeminiConfig `toml:"gemini"`
	Claude   ClaudeConfig `toml:"claude"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model name (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model name (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// MarketDataConfig contains configuration for external data clients
type MarketDataConfig struct {
	CoinGeckoBaseURL string `toml:"coingecko_base_url"` // Override for testing (default: public API)
	CoinGeckoAPIKey  string `toml:"coingecko_api_key"`  // Optional pro API key
	DefiLlamaBaseURL string `toml:"defillama_base_url"` // Override for testing
	FredBaseURL      string `toml:"fred_base_url"`      // Override for testing
	FredAPIKey       string `toml:"fred_api_key"`       // FRED economic data API key
	NewsBaseURL      string `toml:"news_base_url"`      // Override for testing
	RequestTimeout   string `toml:"request_timeout"`    // HTTP timeout as duration string (default: "15s")
	RateLimit        int    `toml:"rate_limit"`         // Requests per second per client (default: 5)
}

// AnalysisConfig contains orchestration tuning
type AnalysisConfig struct {
	SpecialistTimeout string `toml:"specialist_timeout"` // Per-specialist deadline (default: "90s")
	CacheTTLSeconds   int    `toml:"cache_ttl_seconds"`  // Result cache TTL (default: 1800)
}

// ConversationConfig contains session lifecycle tuning
type ConversationConfig struct {
	SessionTTLDays    int    `toml:"session_ttl_days"`   // Session expiry after inactivity (default: 7)
	HistoryLimit      int    `toml:"history_limit"`      // Default message window for history reads (default: 50)
	InjectionMessages int    `toml:"injection_messages"` // Recent messages rendered into context injection (default: 5)
	SweepSchedule     string `toml:"sweep_schedule"`     // Cron schedule for the expiry sweep (default: "0 3 * * *")
}

// NewDefaultConfig returns a Config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/verdict",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		LLM: LLMConfig{
			Provider: LLMProviderGemini,
			Gemini: GeminiConfig{
				Model:       "gemini-2.0-flash",
				Timeout:     "2m",
				Temperature: 0.2,
			},
			Claude: ClaudeConfig{
				Model:       "claude-haiku-3-5-20241022",
				MaxTokens:   4096,
				Timeout:     "2m",
				Temperature: 0.2,
			},
		},
		MarketData: MarketDataConfig{
			RequestTimeout: "15s",
			RateLimit:      5,
		},
		Analysis: AnalysisConfig{
			SpecialistTimeout: "90s",
			CacheTTLSeconds:   1800,
		},
		Conversation: ConversationConfig{
			SessionTTLDays:    7,
			HistoryLimit:      50,
			InjectionMessages: 5,
			SweepSchedule:     "0 3 * * *",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2
// -> ... -> env. Later files override earlier files; environment variables
// override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VERDICT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VERDICT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VERDICT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("VERDICT_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("VERDICT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("VERDICT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("VERDICT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// LLM configuration
	if provider := os.Getenv("VERDICT_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("VERDICT_GEMINI_API_KEY"); key != "" {
		config.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Claude.APIKey = key
	}
	if key := os.Getenv("VERDICT_CLAUDE_API_KEY"); key != "" {
		config.LLM.Claude.APIKey = key
	}

	// Market data configuration
	if key := os.Getenv("VERDICT_COINGECKO_API_KEY"); key != "" {
		config.MarketData.CoinGeckoAPIKey = key
	}
	if key := os.Getenv("VERDICT_FRED_API_KEY"); key != "" {
		config.MarketData.FredAPIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running with a production environment setting
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
