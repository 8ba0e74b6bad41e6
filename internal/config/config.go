package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Redis     RedisConfig     `json:"redis"`
	Database  DatabaseConfig  `json:"database"`
	Auth      AuthConfig      `json:"auth"`
	AI        AIConfig        `json:"ai"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type DatabaseConfig struct {
	DSN string `json:"-"`
}

type AuthConfig struct {
	JWTSecret   string `json:"-"`
	ExpiryHours int    `json:"expiry_hours"`
}

type AIConfig struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKey    string `json:"-"`
	MaxTokens int    `json:"max_tokens"`
}

// RouteRule is one (route, tier) quota. Limits are fixed at deploy time and
// never user-mutable.
type RouteRule struct {
	RouteKey      string `json:"route_key"`
	Tier          string `json:"tier"`
	Limit         int    `json:"limit"`
	WindowSeconds int    `json:"window_seconds"`
}

type RateLimitConfig struct {
	Rules []RouteRule `json:"rules"`
}

// Load reads the JSON config file and overlays secrets and connection
// details from the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envOr("PORT", c.Server.Port)
	c.Server.Environment = envOr("ENVIRONMENT", c.Server.Environment)

	c.Redis.Host = envOr("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = envOr("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = envOr("REDIS_PASSWORD", c.Redis.Password)
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}

	c.Database.DSN = envOr("DATABASE_URL", c.Database.DSN)

	c.Auth.JWTSecret = envOr("JWT_SECRET", c.Auth.JWTSecret)

	c.AI.BaseURL = envOr("AI_BASE_URL", c.AI.BaseURL)
	c.AI.Model = envOr("AI_MODEL", c.AI.Model)
	c.AI.APIKey = envOr("AI_API_KEY", c.AI.APIKey)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}
	if c.Auth.ExpiryHours <= 0 {
		c.Auth.ExpiryHours = 24 * 7
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.anthropic.com"
	}
	if c.AI.Model == "" {
		c.AI.Model = "claude-sonnet-4-20250514"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 2048
	}
	if len(c.RateLimit.Rules) == 0 {
		c.RateLimit.Rules = DefaultRules()
	}
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	for _, r := range c.RateLimit.Rules {
		if r.Limit <= 0 || r.WindowSeconds <= 0 {
			return fmt.Errorf("rate limit rule %s/%s: limit and window must be positive", r.RouteKey, r.Tier)
		}
	}
	return nil
}

// DefaultRules covers every throttled route for every tier. Admin gets its
// own quota rather than a bypass.
func DefaultRules() []RouteRule {
	return []RouteRule{
		{RouteKey: "api/generate", Tier: "anonymous", Limit: 3, WindowSeconds: 60},
		{RouteKey: "api/generate", Tier: "free", Limit: 10, WindowSeconds: 60},
		{RouteKey: "api/generate", Tier: "pro", Limit: 30, WindowSeconds: 60},
		{RouteKey: "api/generate", Tier: "admin", Limit: 60, WindowSeconds: 60},

		{RouteKey: "api/analyze", Tier: "anonymous", Limit: 2, WindowSeconds: 60},
		{RouteKey: "api/analyze", Tier: "free", Limit: 5, WindowSeconds: 60},
		{RouteKey: "api/analyze", Tier: "pro", Limit: 15, WindowSeconds: 60},
		{RouteKey: "api/analyze", Tier: "admin", Limit: 30, WindowSeconds: 60},

		{RouteKey: "api/waitlist", Tier: "anonymous", Limit: 5, WindowSeconds: 3600},

		{RouteKey: "api/auth", Tier: "anonymous", Limit: 10, WindowSeconds: 300},

		{RouteKey: "api", Tier: "anonymous", Limit: 60, WindowSeconds: 60},
		{RouteKey: "api", Tier: "free", Limit: 120, WindowSeconds: 60},
		{RouteKey: "api", Tier: "pro", Limit: 300, WindowSeconds: 60},
		{RouteKey: "api", Tier: "admin", Limit: 600, WindowSeconds: 60},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
