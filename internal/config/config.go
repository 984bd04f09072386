// Package config loads the runtime settings of the storefront API from .env
// files and the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFiles are tried in order; later files override earlier ones.
// Running from cmd/server still finds the repository .env.
var DefaultEnvFiles = []string{".env", "../.env", "../../.env"}

type Config struct {
	Port          string
	DatabaseDSN   string
	JWTSecret     string
	JWTTTL        time.Duration
	SessionSecret string
	CORSOrigins   []string

	UploadDir     string
	PublicBaseURL string
	StorageDriver string
	S3            S3Config
	MaxUploadSize int64

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	OrderWebhookURL string
	WebhookSecret   string
	OrderTables     []string

	LoginRatePerMinute int
	LoginBurst         int
	CacheTTL           time.Duration

	// TrustedProxies may set X-Forwarded-For; empty trusts none.
	TrustedProxies []string

	LogLevel  string
	LogFormat string
}

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SESSION_SECRET", "dev_fallback_secret")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("KAFKA_TOPIC", "ravic-orders")
	v.SetDefault("ORDER_TABLES", "orders,pedidos")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)
	v.SetDefault("LOGIN_BURST", 5)
	v.SetDefault("CACHE_TTL", "2m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads the given .env files (missing ones are ignored) and builds a
// Config from the environment. With no files DefaultEnvFiles are used.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	for _, f := range files {
		// godotenv fails the whole batch on the first missing file
		_ = godotenv.Overload(f)
	}

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	jwtTTL, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	cacheTTL, err := time.ParseDuration(v.GetString("CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}

	return &Config{
		Port:          v.GetString("APP_PORT"),
		DatabaseDSN:   v.GetString("DB_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTTTL:        jwtTTL,
		SessionSecret: v.GetString("SESSION_SECRET"),
		CORSOrigins:   SplitList(v.GetString("CORS_ORIGINS")),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		S3: S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			Bucket:    v.GetString("S3_BUCKET"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			PublicURL: strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		MaxUploadSize:      v.GetInt64("MAX_UPLOAD_BYTES"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		KafkaBrokers:       SplitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:         v.GetString("KAFKA_TOPIC"),
		OrderWebhookURL:    v.GetString("ORDER_WEBHOOK_URL"),
		WebhookSecret:      v.GetString("WEBHOOK_SECRET"),
		OrderTables:        SplitList(v.GetString("ORDER_TABLES")),
		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		LoginBurst:         v.GetInt("LOGIN_BURST"),
		CacheTTL:           cacheTTL,
		TrustedProxies:     SplitList(v.GetString("TRUSTED_PROXIES")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}, nil
}

// Validate reports every missing or inconsistent setting the HTTP server
// needs. Commands that only touch the database check DatabaseDSN themselves.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DB_DSN is empty (check your .env)"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	}
	if len(c.OrderTables) == 0 {
		errs = append(errs, errors.New("ORDER_TABLES must name at least one table"))
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.LoginRatePerMinute <= 0 || c.LoginBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE and LOGIN_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
