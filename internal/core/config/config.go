package config

import (
	"fmt"
	"log/slog" // Use the new structured logger
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	DataDir     string

	AdminEmail    string
	AdminPassword string

	Rates    domain.RateTable
	Shipping domain.ShippingRules

	SessionBackend string // memory|pebble
	SessionDir     string
	SessionTTL     time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string
	WebhookURL      string
	WebhookSecret   string
	CloudinaryURL   string
}

const defaultRates = "AUD:1,USD:0.67,NZD:1.09,EUR:0.61"

// LoadConfig reads .env file and returns a Config struct
func LoadConfig() (*Config, error) {
	// Try loading .env file (it might not exist in Production, which is fine)
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on System Env Variables")
	}

	base := domain.ParseCurrency(getEnv("BASE_CURRENCY", "AUD"), domain.AUD)
	rates, err := ParseRates(getEnv("CURRENCY_RATES", defaultRates))
	if err != nil {
		return nil, err
	}
	if _, ok := rates[base]; !ok {
		rates[base] = decimal.NewFromInt(1)
	}

	shipping := domain.ShippingRules{}
	if shipping.Base, err = getDecimal("SHIPPING_BASE", "9.95"); err != nil {
		return nil, err
	}
	if shipping.PerItem, err = getDecimal("SHIPPING_PER_ITEM", "1.5"); err != nil {
		return nil, err
	}
	if shipping.FreeOver, err = getDecimal("SHIPPING_FREE_OVER", "150"); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	return &Config{
		Port:            getEnv("PORT", "3000"),
		Env:             getEnv("ENV", "development"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DataDir:         getEnv("DATA_DIR", "./data"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "secret"),
		Rates:           domain.RateTable{Base: base, Rates: rates},
		Shipping:        shipping,
		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionDir:      getEnv("SESSION_DIR", "./data/sessions"),
		SessionTTL:      ttl,
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "storefront.orders"),
		WebhookURL:      getEnv("WEBHOOK_URL", ""),
		WebhookSecret:   getEnv("WEBHOOK_SECRET", ""),
		CloudinaryURL:   getEnv("CLOUDINARY_URL", ""),
	}, nil
}

// ParseRates parses "AUD:1,USD:0.67" into a rate table.
func ParseRates(raw string) (map[domain.Currency]decimal.Decimal, error) {
	rates := make(map[domain.Currency]decimal.Decimal)
	for _, pair := range splitList(raw) {
		code, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid rate %q: want CODE:RATE", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		rates[domain.ParseCurrency(code, "")] = rate
	}
	return rates, nil
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	raw := getEnv(key, fallback)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
