package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data sources
const (
	SourceMemory = "memory"
	SourceRemote = "remote"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	Env            string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Data source: "memory" (seeded) or "remote" (finance API)
	DataSource       string
	SeedFile         string
	TransactionLimit int

	// Remote finance API
	APIBaseURL string
	APITimeout time.Duration

	// Redis read cache (disabled when RedisURL is empty)
	RedisURL      string
	RedisPassword string
	CacheTTL      time.Duration

	// Display
	CurrencySymbol string

	// Mock finance API server
	MockAPIPort string
}

// Load loads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// A missing .env file is fine; real environment variables win over it
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		AllowedOrigins:   getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RateLimitRPS:     getEnvAsFloat("RATE_LIMIT_RPS", 100),
		RateLimitBurst:   getEnvAsInt("RATE_LIMIT_BURST", 20),
		DataSource:       getEnv("DATA_SOURCE", SourceMemory),
		SeedFile:         getEnv("SEED_FILE", ""),
		TransactionLimit: getEnvAsInt("TRANSACTION_LIMIT", 10),
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8000/api"),
		APITimeout:       getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		CacheTTL:         getEnvAsDuration("CACHE_TTL", 60*time.Second),
		CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "₹"),
		MockAPIPort:      getEnv("MOCK_API_PORT", "8000"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var problems []string

	for name, port := range map[string]string{"PORT": c.Port, "MOCK_API_PORT": c.MockAPIPort} {
		if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
			problems = append(problems, fmt.Sprintf("invalid %s '%s': must be a number between 1 and 65535", name, port))
		}
	}

	switch c.DataSource {
	case SourceMemory:
	case SourceRemote:
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid API_BASE_URL '%s': must be an http(s) URL", c.APIBaseURL))
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DATA_SOURCE '%s': must be one of [%s %s]", c.DataSource, SourceMemory, SourceRemote))
	}

	if c.TransactionLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid TRANSACTION_LIMIT %d: must be at least 1", c.TransactionLimit))
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "API_TIMEOUT must be positive")
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL must be positive when REDIS_URL is set")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		problems = append(problems, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CacheEnabled reports whether remote reads go through Redis
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
