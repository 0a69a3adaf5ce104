package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	TelegramToken   string
	TelegramBaseURL string

	UnifyToken     string
	UnifyBaseURL   string
	UnifyUploadURL string

	YooKassaShopID string
	YooKassaSecret string
	YooKassaBase   string

	OxaAPIKey string
	OxaBase   string

	PaymentInterval time.Duration
	PaymentDeadline time.Duration
	ImagePoll       time.Duration
	VideoPoll       time.Duration

	BroadcastPerSecond int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramBaseURL: getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),

		UnifyToken:     os.Getenv("UNIFY_API_TOKEN"),
		UnifyBaseURL:   getEnv("UNIFY_BASE_URL", "https://api.unifically.com"),
		UnifyUploadURL: getEnv("UNIFY_UPLOAD_URL", "https://files.storagecdn.online"),

		YooKassaShopID: os.Getenv("YOOKASSA_SHOP_ID"),
		YooKassaSecret: os.Getenv("YOOKASSA_SECRET_KEY"),
		YooKassaBase:   getEnv("YOOKASSA_BASE_URL", "https://api.yookassa.ru/v3"),

		OxaAPIKey: os.Getenv("OXA_API_KEY"),
		OxaBase:   getEnv("OXA_BASE_URL", "https://api.oxapay.com"),

		PaymentInterval: time.Second * time.Duration(getEnvInt("PAYMENT_POLL_SECONDS", 6)),
		PaymentDeadline: time.Minute * time.Duration(getEnvInt("PAYMENT_DEADLINE_MINUTES", 15)),
		ImagePoll:       time.Second * time.Duration(getEnvInt("IMAGE_POLL_SECONDS", 6)),
		VideoPoll:       time.Second * time.Duration(getEnvInt("VIDEO_POLL_SECONDS", 14)),

		BroadcastPerSecond: getEnvInt("BROADCAST_PER_SECOND", 25),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if cfg.UnifyToken == "" {
		return nil, fmt.Errorf("UNIFY_API_TOKEN is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
