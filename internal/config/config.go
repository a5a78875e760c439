package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Redis      RedisConfig      `json:"redis"`
	Postgres   PostgresConfig   `json:"postgres"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	Auth       AuthConfig       `json:"auth"`
	Classifier ClassifierConfig `json:"classifier"`
	Artwork    ArtworkConfig    `json:"artwork"`
}

type ServerConfig struct {
	Port           string `json:"port"`
	Environment    string `json:"environment"`
	LogLevel       string `json:"log_level"`
	RequestTimeout int    `json:"request_timeout_seconds"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type RateLimitConfig struct {
	MaxRequests   int    `json:"max_requests"`
	WindowSeconds int    `json:"window_seconds"`
	Algorithm     string `json:"algorithm"` // "fixed_window" or "sliding_window"
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type AuthConfig struct {
	// DeviceToken is the shared bearer secret presented by exhibit devices.
	// Loaded from NFC_AUTH_TOKEN; the plain value never lives in the file.
	DeviceToken string `json:"-"`

	// DeviceTokenHash optionally holds a bcrypt hash of the device token.
	// When set it takes precedence over DeviceToken.
	DeviceTokenHash string `json:"device_token_hash"`

	MachineTokenSecret string `json:"-"`
	MachineTokenTTL    int    `json:"machine_token_ttl_seconds"`
}

type ClassifierConfig struct {
	BotSignatures        []string `json:"bot_signatures"`
	SuspiciousSignatures []string `json:"suspicious_signatures"`
	DeviceSignatures     []string `json:"device_signatures"`
	DeviceHeaderValues   []string `json:"device_header_values"`
}

type ArtworkConfig struct {
	PublicBaseURL   string `json:"public_base_url"`
	APIBaseURL      string `json:"api_base_url"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`

	// Seed records served by the in-memory store when no postgres DSN is
	// configured. Keyed by slug.
	Seed []SeedArtwork `json:"seed"`
}

type SeedArtwork struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	ImageURL        string `json:"image_url"`
	Description     string `json:"description"`
	Exclusive       bool   `json:"exclusive"`
	DisplayDuration int    `json:"display_duration"`
	OwnerAuth       bool   `json:"owner_auth"`
}

func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(file, config); err != nil {
		return nil, err
	}

	config.applyEnv()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a Config with working defaults for everything that is not
// a secret. Tests build on top of it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Environment:    "development",
			LogLevel:       "info",
			RequestTimeout: 5,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   10,
			WindowSeconds: 60,
			Algorithm:     "fixed_window",
		},
		Auth: AuthConfig{
			MachineTokenTTL: 300,
		},
		Classifier: ClassifierConfig{
			BotSignatures: []string{
				"bot", "crawler", "spider", "crawl", "slurp",
				"facebookexternalhit", "headlesschrome",
			},
			SuspiciousSignatures: []string{
				"curl", "wget", "python-requests", "go-http-client", "scrapy",
			},
			DeviceSignatures: []string{
				"arduinocalendar", "artcalendar", "esp32",
			},
			DeviceHeaderValues: []string{"arduino", "esp32"},
		},
		Artwork: ArtworkConfig{
			PublicBaseURL:   "https://dogame.art",
			APIBaseURL:      "https://nfc.dogame.art",
			CacheTTLSeconds: 3600,
		},
	}
}

// Secrets and deploy-time overrides come from the environment, on top of
// whatever the file provided.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("NFC_AUTH_TOKEN"); v != "" {
		c.Auth.DeviceToken = v
	}
	if v := os.Getenv("MACHINE_TOKEN_SECRET"); v != "" {
		c.Auth.MachineTokenSecret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimit.MaxRequests = n
		}
	}
}

func (c *Config) validate() error {
	if c.Auth.DeviceToken == "" && c.Auth.DeviceTokenHash == "" {
		return fmt.Errorf("device token not configured: set NFC_AUTH_TOKEN or auth.device_token_hash")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive, got %d", c.RateLimit.WindowSeconds)
	}
	return nil
}
