package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	PostgresURL string
	JWTSecret   string
	LogLevel    string

	Webhook  WebhookConfig
	Bank     BankConfig
	Provider ProviderConfig

	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

// WebhookConfig holds the credentials the payment notifier presents on every callback.
type WebhookConfig struct {
	Secret        string // x-webhook-key
	MallID        string // x-mall-id
	SigningSecret string // optional HMAC over the raw body
	StrictAmount  bool   // reject deposits whose amount differs from the order
}

// BankConfig is the fixed transfer destination shown to the depositor.
type BankConfig struct {
	Name          string
	AccountNumber string
	AccountHolder string
}

type ProviderConfig struct {
	BaseURL  string // empty means use BankConfig verbatim
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration // zero asks the provider on every order
}

var (
	ErrPostgresURLEmpty   = errors.New("POSTGRES_URL is an empty string")
	ErrJWTSecretEmpty     = errors.New("JWT_SECRET is an empty string")
	ErrWebhookSecretEmpty = errors.New("WEBHOOK_SECRET is an empty string")
	ErrWebhookMallIDEmpty = errors.New("WEBHOOK_MALL_ID is an empty string")
	ErrBankIncomplete     = errors.New("BANK_NAME, BANK_ACCOUNT_NUMBER and BANK_ACCOUNT_HOLDER are required without a payment provider")
	ErrProviderKeyEmpty   = errors.New("PAYMENT_PROVIDER_API_KEY is required with PAYMENT_PROVIDER_BASE_URL")
)

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error

	strict, err := strconv.ParseBool(get("WEBHOOK_STRICT_AMOUNT", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("WEBHOOK_STRICT_AMOUNT: %w", err))
	}
	timeout, err := time.ParseDuration(get("PAYMENT_PROVIDER_TIMEOUT", "5s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PAYMENT_PROVIDER_TIMEOUT: %w", err))
	}
	cacheTTL, err := time.ParseDuration(get("PAYMENT_PROVIDER_CACHE_TTL", "1m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PAYMENT_PROVIDER_CACHE_TTL: %w", err))
	}
	perMinute, err := strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err))
	}

	cfg := &Config{
		Port:        get("PORT", "8080"),
		PostgresURL: get("POSTGRES_URL", ""),
		JWTSecret:   get("JWT_SECRET", ""),
		LogLevel:    get("LOG_LEVEL", "info"),
		Webhook: WebhookConfig{
			Secret:        get("WEBHOOK_SECRET", ""),
			MallID:        get("WEBHOOK_MALL_ID", ""),
			SigningSecret: get("WEBHOOK_SIGNING_SECRET", ""),
			StrictAmount:  strict,
		},
		Bank: BankConfig{
			Name:          get("BANK_NAME", ""),
			AccountNumber: get("BANK_ACCOUNT_NUMBER", ""),
			AccountHolder: get("BANK_ACCOUNT_HOLDER", ""),
		},
		Provider: ProviderConfig{
			BaseURL:  strings.TrimRight(get("PAYMENT_PROVIDER_BASE_URL", ""), "/"),
			APIKey:   get("PAYMENT_PROVIDER_API_KEY", ""),
			Timeout:  timeout,
			CacheTTL: cacheTTL,
		},
		RateLimitPerMinute: perMinute,
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "*")),
	}

	errs = append(errs, cfg.Validate())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []error

	if cfg.PostgresURL == "" {
		errs = append(errs, ErrPostgresURLEmpty)
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ErrJWTSecretEmpty)
	}
	if cfg.Webhook.Secret == "" {
		errs = append(errs, ErrWebhookSecretEmpty)
	}
	if cfg.Webhook.MallID == "" {
		errs = append(errs, ErrWebhookMallIDEmpty)
	}
	if cfg.Provider.BaseURL == "" {
		if cfg.Bank.Name == "" || cfg.Bank.AccountNumber == "" || cfg.Bank.AccountHolder == "" {
			errs = append(errs, ErrBankIncomplete)
		}
	} else if cfg.Provider.APIKey == "" {
		errs = append(errs, ErrProviderKeyEmpty)
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
