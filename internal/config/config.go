package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration shared by the api server and the agent
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Allowed CORS origin for the browser client
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:5173"`

	// MongoDB document store
	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGO_DB" default:"health_agent"`

	// Optional Redis session cache; empty disables caching
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	// Agent: base URL of the api server
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`

	// Agent: optional websocket recognition bridge; empty means speech capture
	// is unavailable and the agent runs in manual-select mode
	SpeechBridgeURL string `envconfig:"SPEECH_BRIDGE_URL" default:""`

	// Agent: questionnaire locale sent on session start
	Locale string `envconfig:"LOCALE" default:"en-US"`

	// Idle seconds before the empathy prompter speaks
	IdlePromptSeconds int `envconfig:"IDLE_PROMPT_SECONDS" default:"10"`

	// External call deadlines (seconds)
	PersistTimeout int `envconfig:"PERSIST_TIMEOUT" default:"7"`
	HealthTimeout  int `envconfig:"HEALTH_TIMEOUT" default:"4"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.IdlePromptSeconds <= 0 {
		return nil, fmt.Errorf("IDLE_PROMPT_SECONDS must be positive, got %d", cfg.IdlePromptSeconds)
	}

	return &cfg, nil
}

// PersistDeadline returns the bounded timeout for answer and session persistence calls.
func (c *Config) PersistDeadline() time.Duration {
	return time.Duration(c.PersistTimeout) * time.Second
}

// HealthDeadline returns the bounded timeout for liveness probes.
func (c *Config) HealthDeadline() time.Duration {
	return time.Duration(c.HealthTimeout) * time.Second
}

// IdlePromptDelay returns how long capture may stay idle before a supportive prompt.
func (c *Config) IdlePromptDelay() time.Duration {
	return time.Duration(c.IdlePromptSeconds) * time.Second
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
