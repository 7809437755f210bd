package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLMConfig holds the connection settings for one reasoning-service role.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// EvidenceSourceConfig describes one configured HTTP evidence source.
type EvidenceSourceConfig struct {
	Name    string
	BaseURL string
}

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Reasoning services, one per role. The two advocates must be backed by
	// different models so the debate stays adversarial.
	AdvocateYes LLMConfig
	AdvocateNo  LLMConfig
	Judge       LLMConfig

	// Evidence gathering
	EvidenceSources  []EvidenceSourceConfig
	EvidenceTimeout  time.Duration
	EvidenceMaxItems int

	// Settlement authority
	AuthorityPrivateKey string // Hex-encoded secp256k1 key; signs transcript hashes

	// Trial
	TrialTimeout    time.Duration
	PendingTrialTTL time.Duration

	// Circuit breaker for automated settlement runs
	BreakerEnabled          bool
	BreakerTripThreshold    int
	BreakerSuccessThreshold int
	BreakerCooldown         time.Duration

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Reasoning services
		AdvocateYes: loadLLMConfig("ADVOCATE_YES"),
		AdvocateNo:  loadLLMConfig("ADVOCATE_NO"),
		Judge:       loadLLMConfig("JUDGE"),

		// Evidence defaults
		EvidenceSources:  parseEvidenceSources(os.Getenv("EVIDENCE_SOURCES")),
		EvidenceTimeout:  getDurationOrDefault("EVIDENCE_TIMEOUT", 20*time.Second),
		EvidenceMaxItems: getIntOrDefault("EVIDENCE_MAX_ITEMS", 10),

		// Settlement authority
		AuthorityPrivateKey: os.Getenv("AUTHORITY_PRIVATE_KEY"),

		// Trial defaults
		TrialTimeout:    getDurationOrDefault("TRIAL_TIMEOUT", 5*time.Minute),
		PendingTrialTTL: getDurationOrDefault("PENDING_TRIAL_TTL", 24*time.Hour),

		// Circuit breaker defaults
		BreakerEnabled:          getBoolOrDefault("BREAKER_ENABLED", true),
		BreakerTripThreshold:    getIntOrDefault("BREAKER_TRIP_THRESHOLD", 3),
		BreakerSuccessThreshold: getIntOrDefault("BREAKER_SUCCESS_THRESHOLD", 2),
		BreakerCooldown:         getDurationOrDefault("BREAKER_COOLDOWN", 10*time.Minute),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "tribunal"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "tribunal123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "tribunal"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// loadLLMConfig loads one role's reasoning-service settings from
// <PREFIX>_BASE_URL, <PREFIX>_API_KEY, <PREFIX>_MODEL, etc.
func loadLLMConfig(prefix string) LLMConfig {
	return LLMConfig{
		BaseURL:     getEnvOrDefault(prefix+"_BASE_URL", "https://api.openai.com/v1"),
		APIKey:      os.Getenv(prefix + "_API_KEY"),
		Model:       os.Getenv(prefix + "_MODEL"),
		MaxTokens:   getIntOrDefault(prefix+"_MAX_TOKENS", 2048),
		Temperature: getFloat64OrDefault(prefix+"_TEMPERATURE", 0.3),
		Timeout:     getDurationOrDefault(prefix+"_TIMEOUT", 90*time.Second),
	}
}

// parseEvidenceSources parses "name=url,name=url" into source configs.
func parseEvidenceSources(raw string) []EvidenceSourceConfig {
	if raw == "" {
		return nil
	}

	var sources []EvidenceSourceConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		sources = append(sources, EvidenceSourceConfig{
			Name:    strings.TrimSpace(name),
			BaseURL: strings.TrimSpace(url),
		})
	}
	return sources
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.AdvocateYes.Model == "" || c.AdvocateNo.Model == "" || c.Judge.Model == "" {
		return fmt.Errorf("ADVOCATE_YES_MODEL, ADVOCATE_NO_MODEL and JUDGE_MODEL must all be set")
	}

	// A single shared model for both advocates collapses the adversarial
	// guarantee the pipeline depends on.
	if c.AdvocateYes.Model == c.AdvocateNo.Model && c.AdvocateYes.BaseURL == c.AdvocateNo.BaseURL {
		return fmt.Errorf("ADVOCATE_YES_MODEL and ADVOCATE_NO_MODEL must be backed by different models or providers")
	}

	if c.BreakerEnabled && c.BreakerTripThreshold <= 0 {
		return fmt.Errorf("BREAKER_TRIP_THRESHOLD must be positive, got %d", c.BreakerTripThreshold)
	}
	if c.BreakerEnabled && c.BreakerSuccessThreshold <= 0 {
		return fmt.Errorf("BREAKER_SUCCESS_THRESHOLD must be positive, got %d", c.BreakerSuccessThreshold)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
