package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

// Publisher holds the credentials of the third-party publishing API.
type Publisher struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Webhook configures the public endpoints consumed by the automation platform.
// An empty Secret leaves them unauthenticated.
type Webhook struct {
	Secret       string
	MaxBodyBytes int
}

type Config struct {
	Port         string
	PostgresURI  string
	RedisURI     string
	FrontendURL  string
	SecretKey    string
	CookieName   string
	DueSweepSpec string
	Publisher    Publisher
	Webhook      Webhook
	R2           R2
}

func LoadConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		PostgresURI:  getEnv("POSTGRES_URI", ""),
		RedisURI:     getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:    getEnv("SECRET_KEY", ""),
		CookieName:   getEnv("COOKIE_NAME", "postsync_session"),
		DueSweepSpec: getEnv("DUE_SWEEP_SPEC", "@every 1m"),
		Publisher: Publisher{
			BaseURL: getEnv("PUBLISHER_BASE_URL", "https://app.ayrshare.com/api"),
			APIKey:  getEnv("PUBLISHER_API_KEY", ""),
			Timeout: getDuration("PUBLISHER_TIMEOUT", 30*time.Second),
		},
		Webhook: Webhook{
			Secret:       getEnv("WEBHOOK_SECRET", ""),
			MaxBodyBytes: getInt("WEBHOOK_MAX_BODY_BYTES", 1<<20),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Info("invalid duration, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Info("invalid integer, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}
