// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort   string `yaml:"server_port"`
	JWTSecretKey string `yaml:"jwt_secret_key"`
	Environment  string `yaml:"environment"`
	LogLevel     string `yaml:"log_level"`

	// Storage
	DatabasePath string `yaml:"database_path"`
	KVBackend    string `yaml:"kv_backend"` // sqlite, pebble, redis, memory
	PebblePath   string `yaml:"pebble_path"`
	RedisURL     string `yaml:"redis_url"`

	// Responder
	ResponderProvider   string        `yaml:"responder_provider"` // openai, agent
	LLMAPIKey           string        `yaml:"llm_api_key"`
	LLMBaseURL          string        `yaml:"llm_base_url"`
	LLMModel            string        `yaml:"llm_model"`
	SystemPrompt        string        `yaml:"system_prompt"`
	AgentAPIURL         string        `yaml:"agent_api_url"`
	AgentAPIKey         string        `yaml:"agent_api_key"`
	ResponderTimeout    time.Duration `yaml:"responder_timeout"` // whole send, retries included; 0 disables the bound
	ResponderMaxRetries int           `yaml:"responder_max_retries"`
	// ResponderAttemptTimeout bounds one provider call so a hung attempt
	// leaves room for a retry; 0 means attempts share the whole budget.
	ResponderAttemptTimeout time.Duration `yaml:"responder_attempt_timeout"`

	// Conversations
	MaxConversations   int    `yaml:"max_conversations"`
	TrashRetentionCron string `yaml:"trash_retention_cron"` // empty disables purging
	TrashRetentionDays int    `yaml:"trash_retention_days"`

	// Login throttling
	LoginMaxAttempts int           `yaml:"login_max_attempts"`
	LoginWindow      time.Duration `yaml:"login_window"`
	LoginBan         time.Duration `yaml:"login_ban"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerPort:              "8080",
		Environment:             "development",
		LogLevel:                "info",
		DatabasePath:            "agentdesk.db",
		KVBackend:               "sqlite",
		PebblePath:              "data/kv",
		ResponderProvider:       "openai",
		LLMModel:                "gpt-4o-mini",
		ResponderTimeout:        120 * time.Second,
		ResponderMaxRetries:     2,
		ResponderAttemptTimeout: 55 * time.Second,
		MaxConversations:        30,
		TrashRetentionDays:      30,
		LoginMaxAttempts:        5,
		LoginWindow:             15 * time.Minute,
		LoginBan:                30 * time.Minute,
	}
}

// Load reads configuration from environment variables or .env file and
// exits on invalid production settings.
func Load() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// LoadFromEnv layers defaults, the optional CONFIG_FILE yaml and the
// environment, in that order.
func LoadFromEnv() (*Config, error) {
	if !strings.EqualFold(os.Getenv("ENV"), "production") {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.JWTSecretKey = getEnv("JWT_SECRET_KEY", c.JWTSecretKey)
	c.Environment = strings.ToLower(getEnv("ENV", c.Environment))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.KVBackend = strings.ToLower(getEnv("KV_BACKEND", c.KVBackend))
	c.PebblePath = getEnv("PEBBLE_PATH", c.PebblePath)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)

	c.ResponderProvider = strings.ToLower(getEnv("RESPONDER_PROVIDER", c.ResponderProvider))
	c.LLMAPIKey = getEnv("LLM_API_KEY", c.LLMAPIKey)
	c.LLMBaseURL = getEnv("LLM_BASE_URL", c.LLMBaseURL)
	c.LLMModel = getEnv("LLM_MODEL", c.LLMModel)
	c.SystemPrompt = getEnv("SYSTEM_PROMPT", c.SystemPrompt)
	c.AgentAPIURL = getEnv("AGENT_API_URL", c.AgentAPIURL)
	c.AgentAPIKey = getEnv("AGENT_API_KEY", c.AgentAPIKey)
	c.TrashRetentionCron = getEnv("TRASH_RETENTION_CRON", c.TrashRetentionCron)

	var err error
	if c.ResponderTimeout, err = getEnvAsDuration("RESPONDER_TIMEOUT", c.ResponderTimeout); err != nil {
		return err
	}
	if c.ResponderAttemptTimeout, err = getEnvAsDuration("RESPONDER_ATTEMPT_TIMEOUT", c.ResponderAttemptTimeout); err != nil {
		return err
	}
	if c.LoginWindow, err = getEnvAsDuration("LOGIN_WINDOW", c.LoginWindow); err != nil {
		return err
	}
	if c.LoginBan, err = getEnvAsDuration("LOGIN_BAN", c.LoginBan); err != nil {
		return err
	}
	if c.ResponderMaxRetries, err = getEnvAsInt("RESPONDER_MAX_RETRIES", c.ResponderMaxRetries); err != nil {
		return err
	}
	if c.MaxConversations, err = getEnvAsInt("MAX_CONVERSATIONS", c.MaxConversations); err != nil {
		return err
	}
	if c.TrashRetentionDays, err = getEnvAsInt("TRASH_RETENTION_DAYS", c.TrashRetentionDays); err != nil {
		return err
	}
	if c.LoginMaxAttempts, err = getEnvAsInt("LOGIN_MAX_ATTEMPTS", c.LoginMaxAttempts); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

// Validate checks ranges always and required secrets in production.
func (c *Config) Validate() error {
	if c.MaxConversations <= 0 {
		return fmt.Errorf("MAX_CONVERSATIONS must be positive")
	}
	if c.ResponderTimeout < 0 {
		return fmt.Errorf("RESPONDER_TIMEOUT cannot be negative")
	}
	if c.ResponderAttemptTimeout < 0 {
		return fmt.Errorf("RESPONDER_ATTEMPT_TIMEOUT cannot be negative")
	}
	if c.ResponderTimeout > 0 && c.ResponderAttemptTimeout > c.ResponderTimeout {
		return fmt.Errorf("RESPONDER_ATTEMPT_TIMEOUT cannot exceed RESPONDER_TIMEOUT")
	}
	if c.TrashRetentionCron != "" && c.TrashRetentionDays <= 0 {
		return fmt.Errorf("TRASH_RETENTION_DAYS must be positive when TRASH_RETENTION_CRON is set")
	}
	switch c.KVBackend {
	case "sqlite", "pebble", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown KV_BACKEND %q", c.KVBackend)
	}

	if !c.IsProduction() {
		return nil
	}
	missing := []string{}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	switch c.ResponderProvider {
	case "agent":
		if c.AgentAPIURL == "" {
			missing = append(missing, "AGENT_API_URL")
		}
	default:
		if c.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
	}
	if c.KVBackend == "memory" {
		return fmt.Errorf("KV_BACKEND=memory is not durable and cannot be used in production")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required production environment variables: %v", missing)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return intValue, nil
}

// getEnvAsDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
