package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/piratarr/piratarr/internal/pathmap"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults.
//
// Environment Variables:
//
// Provider Configuration:
// - RADARR_URL: Radarr base URL (optional; provider skipped when empty)
// - RADARR_API_KEY: Radarr API key
// - SONARR_URL: Sonarr base URL (optional; provider skipped when empty)
// - SONARR_API_KEY: Sonarr API key
//
// Scan Configuration:
// - SCAN_INTERVAL: seconds between library scans (default: 3600)
// - AUTO_TRANSLATE: queue translations automatically during scans (default: true)
// - PATH_MAPPINGS: ordered "remote=local" pairs, comma separated,
//   e.g. "/tv=/data/tv,/movies=/data/movies"
//
// Translation Configuration:
// - DICTIONARY_PATH: JSON dictionary overriding the built-in table (optional)
// - EXCLAMATION_CHANCE: probability of injecting a pirate exclamation after
//   a sentence (default: 0.12; 0 disables injection)
//
// System Configuration:
// - DATA_DIR: directory for the sqlite database (default: /config)
// - HTTP_ADDR: listen address for the API (default: :8585)
// - LOG_LEVEL: debug|info|warn|error (default: info)
// - LOG_FILE: log to this file instead of stdout (optional)

type Config struct {
	Providers ProvidersConfig `json:"providers"`
	Scan      ScanConfig      `json:"scan"`
	Translate TranslateConfig `json:"translate"`
	System    SystemConfig    `json:"system"`
}

// ProviderConfig holds connection settings for one external library manager.
type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// Enabled reports whether the provider is configured enough to be queried.
func (p ProviderConfig) Enabled() bool {
	return p.BaseURL != "" && p.APIKey != ""
}

type ProvidersConfig struct {
	Radarr ProviderConfig `json:"radarr"`
	Sonarr ProviderConfig `json:"sonarr"`
}

type ScanConfig struct {
	IntervalSeconds int               `json:"interval_seconds"`
	AutoTranslate   bool              `json:"auto_translate"`
	PathMappings    []pathmap.Mapping `json:"path_mappings"`
}

// CronExpr returns the robfig/cron spec driving the periodic scan.
func (s ScanConfig) CronExpr() string {
	interval := s.IntervalSeconds
	if interval <= 0 {
		interval = 3600
	}
	return fmt.Sprintf("@every %ds", interval)
}

type TranslateConfig struct {
	DictionaryPath    string  `json:"dictionary_path"`
	ExclamationChance float64 `json:"exclamation_chance"`
}

type SystemConfig struct {
	DataDir  string `json:"data_dir"`
	HTTPAddr string `json:"http_addr"`
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

// DBPath returns the sqlite database location under the data directory.
func (s SystemConfig) DBPath() string {
	return s.DataDir + "/piratarr.db"
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	mappings, err := ParsePathMappings(getEnvString("PATH_MAPPINGS", ""))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Providers: ProvidersConfig{
			Radarr: ProviderConfig{
				BaseURL: getEnvString("RADARR_URL", ""),
				APIKey:  getEnvString("RADARR_API_KEY", ""),
			},
			Sonarr: ProviderConfig{
				BaseURL: getEnvString("SONARR_URL", ""),
				APIKey:  getEnvString("SONARR_API_KEY", ""),
			},
		},
		Scan: ScanConfig{
			IntervalSeconds: getEnvInt("SCAN_INTERVAL", 3600),
			AutoTranslate:   getEnvBool("AUTO_TRANSLATE", true),
			PathMappings:    mappings,
		},
		Translate: TranslateConfig{
			DictionaryPath:    getEnvString("DICTIONARY_PATH", ""),
			ExclamationChance: getEnvFloat("EXCLAMATION_CHANCE", 0.12),
		},
		System: SystemConfig{
			DataDir:  getEnvString("DATA_DIR", "/config"),
			HTTPAddr: getEnvString("HTTP_ADDR", ":8585"),
			LogLevel: getEnvString("LOG_LEVEL", "info"),
			LogFile:  getEnvString("LOG_FILE", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Scan.IntervalSeconds <= 0 {
		return fmt.Errorf("SCAN_INTERVAL must be positive, got %d", c.Scan.IntervalSeconds)
	}
	if c.Translate.ExclamationChance < 0 || c.Translate.ExclamationChance > 1 {
		return fmt.Errorf("EXCLAMATION_CHANCE must be in [0,1], got %v", c.Translate.ExclamationChance)
	}
	return nil
}

// ParsePathMappings parses the PATH_MAPPINGS env format: ordered
// "remote=local" pairs separated by commas. Order is preserved because
// mapping precedence is longest-prefix but configuration order breaks ties.
func ParsePathMappings(raw string) ([]pathmap.Mapping, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	pairs := strings.Split(raw, ",")
	ret := make([]pathmap.Mapping, 0, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		remote, local, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(remote) == "" || strings.TrimSpace(local) == "" {
			return nil, fmt.Errorf("invalid path mapping %q, expected remote=local", pair)
		}
		ret = append(ret, pathmap.Mapping{
			RemotePrefix: strings.TrimSpace(remote),
			LocalPrefix:  strings.TrimSpace(local),
		})
	}
	return ret, nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
