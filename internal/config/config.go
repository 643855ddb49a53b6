package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`

	CORSOrigins  []string `env:"CORS_ORIGIN" envSeparator:","`
	CookieSecure bool     `env:"COOKIE_SECURE" envDefault:"true"`
	CSRFEnabled  bool     `env:"CSRF_ENABLED"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"user_events"`

	ES struct {
		URL      string `env:"ES_URL"`
		User     string `env:"ES_USER"`
		Password string `env:"ES_PASSWORD"`
		Index    string `env:"ES_INDEX" envDefault:"channels"`
	}

	Media struct {
		Endpoint        string `env:"MEDIA_ENDPOINT"`
		AccessKeyID     string `env:"MEDIA_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"MEDIA_SECRET_ACCESS_KEY"`
		Bucket          string `env:"MEDIA_BUCKET" envDefault:"videotube"`
		Region          string `env:"MEDIA_REGION" envDefault:"us-east-1"`
		UseSSL          bool   `env:"MEDIA_USE_SSL"`
		PublicURL       string `env:"MEDIA_PUBLIC_URL"`
	}
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func trimAll(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.AccessTokenSecret) == "" || strings.TrimSpace(c.RefreshTokenSecret) == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return errors.New("token expiry must be positive")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	return nil
}

func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func (c *Config) SearchEnabled() bool { return c.ES.URL != "" }

func (c *Config) MediaEnabled() bool { return c.Media.Endpoint != "" }
