// Package config loads the service configuration from the environment.
//
// The Config struct is built once in main and passed down by constructor.
// Nothing below cmd/ reads environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// OAuthClient is the credential triple every provider needs.
type OAuthClient struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// Enabled reports whether the provider has credentials configured.
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type S3 struct {
	Bucket          string        `env:"BUCKET"`
	Region          string        `env:"REGION" envDefault:"ap-northeast-2"`
	AccessKeyID     string        `env:"ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"SECRET_ACCESS_KEY"`
	Endpoint        string        `env:"ENDPOINT"`
	CDNURL          string        `env:"CDN_URL"`
	PresignTTL      time.Duration `env:"PRESIGN_TTL" envDefault:"5m"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`
	DBPath   string `env:"DB_PATH" envDefault:"data/lounge.db"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`

	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Global request-count window applied to every route.
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"300"`

	YouTube   OAuthClient `envPrefix:"YOUTUBE_"`
	TikTok    OAuthClient `envPrefix:"TIKTOK_"`
	Twitch    OAuthClient `envPrefix:"TWITCH_"`
	Soop      OAuthClient `envPrefix:"SOOP_"`
	Instagram OAuthClient `envPrefix:"INSTAGRAM_"`
	Chzzk     OAuthClient `envPrefix:"CHZZK_"`

	S3 S3 `envPrefix:"S3_"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("config: JWT_EXPIRES_IN must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.S3.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: S3_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsProduction selects the JSON log handler and secure cookies.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
