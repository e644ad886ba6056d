package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithLookup(lookupFrom(nil)), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("expected default backend memory, got %s", cfg.Store.Backend)
	}
	if cfg.Pricing.Currency != "INR" {
		t.Fatalf("expected default currency INR, got %s", cfg.Pricing.Currency)
	}
	if cfg.Pricing.FreeDeliveryThreshold.String() != "249" {
		t.Fatalf("expected default threshold 249, got %s", cfg.Pricing.FreeDeliveryThreshold.String())
	}
	if cfg.Pricing.DeliveryFee.String() != "25" {
		t.Fatalf("expected default fee 25, got %s", cfg.Pricing.DeliveryFee.String())
	}
	if cfg.Checkout.ConfirmDelay != 2*time.Second {
		t.Fatalf("expected default confirm delay 2s, got %s", cfg.Checkout.ConfirmDelay)
	}
	if !cfg.Features.SeedDemoNotifications {
		t.Fatal("expected demo seeding enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(WithLookup(lookupFrom(map[string]string{
		"API_SERVER_PORT":                      "9000",
		"API_STORE_BACKEND":                    "redis",
		"API_STORE_REDIS_ADDR":                 "redis:6379",
		"API_PRICING_CURRENCY":                 "usd",
		"API_PRICING_FREE_DELIVERY_THRESHOLD":  "500",
		"API_PRICING_DELIVERY_FEE":             "49.50",
		"API_SESSION_TTL":                      "1h",
		"API_CHECKOUT_CONFIRM_DELAY":           "0s",
		"API_FEATURES_SEED_DEMO_NOTIFICATIONS": "false",
	})), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port 9000, got %s", cfg.Server.Port)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Pricing.Currency != "USD" {
		t.Fatalf("expected currency upper-cased to USD, got %s", cfg.Pricing.Currency)
	}
	if cfg.Pricing.DeliveryFee.String() != "49.5" {
		t.Fatalf("expected fee 49.5, got %s", cfg.Pricing.DeliveryFee.String())
	}
	if cfg.Session.TTL != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", cfg.Session.TTL)
	}
	if cfg.Checkout.ConfirmDelay != 0 {
		t.Fatalf("expected zero confirm delay, got %s", cfg.Checkout.ConfirmDelay)
	}
	if cfg.Features.SeedDemoNotifications {
		t.Fatal("expected demo seeding disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
	}{
		{name: "bad backend", values: map[string]string{"API_STORE_BACKEND": "cassandra"}},
		{name: "bad currency", values: map[string]string{"API_PRICING_CURRENCY": "rupees"}},
		{name: "negative fee", values: map[string]string{"API_PRICING_DELIVERY_FEE": "-5"}},
		{name: "bad threshold", values: map[string]string{"API_PRICING_FREE_DELIVERY_THRESHOLD": "lots"}},
		{name: "negative ttl", values: map[string]string{"API_SESSION_TTL": "-1h"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(WithLookup(lookupFrom(tc.values)), WithEnvFile("")); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nAPI_SERVER_PORT=7777\nAPI_PRICING_DELIVERY_FEE=\"15\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithLookup(lookupFrom(nil)), WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Fatalf("expected port from env file, got %s", cfg.Server.Port)
	}
	if cfg.Pricing.DeliveryFee.String() != "15" {
		t.Fatalf("expected quoted fee parsed, got %s", cfg.Pricing.DeliveryFee.String())
	}
}

func TestLoadProcessEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("API_SERVER_PORT=7777\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(
		WithLookup(lookupFrom(map[string]string{"API_SERVER_PORT": "8888"})),
		WithEnvFile(path),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8888" {
		t.Fatalf("expected process env to win, got %s", cfg.Server.Port)
	}
}
