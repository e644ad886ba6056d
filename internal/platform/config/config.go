package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	defaultStoreBackend = "memory"
	defaultStoreDir     = ".sacchabazaar-data"
	defaultRedisAddr    = "localhost:6379"
	defaultRedisPrefix  = "sacchabazaar"

	defaultCurrency      = "INR"
	defaultFreeThreshold = "249"
	defaultDeliveryFee   = "25"

	defaultSessionSecret = "local-dev-session-secret"
	defaultSessionTTL    = 30 * 24 * time.Hour

	defaultConfirmDelay = 2 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Pricing  PricingConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Features FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects and parameterises the key-value persistence backend.
type StoreConfig struct {
	// Backend is one of "memory", "file", or "redis".
	Backend        string
	Directory      string
	RedisAddr      string
	RedisKeyPrefix string
}

// PricingConfig carries the currency-unit-agnostic delivery fee policy.
type PricingConfig struct {
	Currency              string
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
}

// SessionConfig configures the fabricated-session token signer.
type SessionConfig struct {
	SigningSecret string
	TTL           time.Duration
}

// CheckoutConfig parameterises the simulated commerce backend.
type CheckoutConfig struct {
	ConfirmDelay time.Duration
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	SeedDemoNotifications bool
}

// Option customises configuration loading.
type Option func(*loader)

type loader struct {
	lookup  func(string) (string, bool)
	envFile string
}

// WithLookup overrides the environment lookup function, primarily for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// WithEnvFile overrides the dotenv file consulted before the process environment.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = strings.TrimSpace(path)
	}
}

// Load assembles the configuration from the environment, applying defaults
// and validating values that must parse.
func Load(opts ...Option) (Config, error) {
	l := &loader{
		lookup:  os.LookupEnv,
		envFile: defaultEnvFile,
	}
	for _, opt := range opts {
		opt(l)
	}

	fileValues := readEnvFile(l.envFile)
	get := func(key string) string {
		if value, ok := l.lookup(key); ok {
			return strings.TrimSpace(value)
		}
		return strings.TrimSpace(fileValues[key])
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringOr(get("API_SERVER_PORT"), defaultPort),
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Store: StoreConfig{
			Backend:        strings.ToLower(stringOr(get("API_STORE_BACKEND"), defaultStoreBackend)),
			Directory:      stringOr(get("API_STORE_DIRECTORY"), defaultStoreDir),
			RedisAddr:      stringOr(get("API_STORE_REDIS_ADDR"), defaultRedisAddr),
			RedisKeyPrefix: stringOr(get("API_STORE_REDIS_PREFIX"), defaultRedisPrefix),
		},
		Pricing: PricingConfig{
			Currency: strings.ToUpper(stringOr(get("API_PRICING_CURRENCY"), defaultCurrency)),
		},
		Session: SessionConfig{
			SigningSecret: stringOr(get("API_SESSION_SECRET"), defaultSessionSecret),
			TTL:           defaultSessionTTL,
		},
		Checkout: CheckoutConfig{
			ConfirmDelay: defaultConfirmDelay,
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = durationOr(get("API_SERVER_READ_TIMEOUT"), defaultReadTimeout); err != nil {
		return Config{}, fmt.Errorf("config: API_SERVER_READ_TIMEOUT: %w", err)
	}
	if cfg.Server.WriteTimeout, err = durationOr(get("API_SERVER_WRITE_TIMEOUT"), defaultWriteTimeout); err != nil {
		return Config{}, fmt.Errorf("config: API_SERVER_WRITE_TIMEOUT: %w", err)
	}
	if cfg.Server.IdleTimeout, err = durationOr(get("API_SERVER_IDLE_TIMEOUT"), defaultIdleTimeout); err != nil {
		return Config{}, fmt.Errorf("config: API_SERVER_IDLE_TIMEOUT: %w", err)
	}
	if cfg.Session.TTL, err = durationOr(get("API_SESSION_TTL"), defaultSessionTTL); err != nil {
		return Config{}, fmt.Errorf("config: API_SESSION_TTL: %w", err)
	}
	if cfg.Checkout.ConfirmDelay, err = durationOr(get("API_CHECKOUT_CONFIRM_DELAY"), defaultConfirmDelay); err != nil {
		return Config{}, fmt.Errorf("config: API_CHECKOUT_CONFIRM_DELAY: %w", err)
	}

	if cfg.Pricing.FreeDeliveryThreshold, err = decimalOr(get("API_PRICING_FREE_DELIVERY_THRESHOLD"), defaultFreeThreshold); err != nil {
		return Config{}, fmt.Errorf("config: API_PRICING_FREE_DELIVERY_THRESHOLD: %w", err)
	}
	if cfg.Pricing.DeliveryFee, err = decimalOr(get("API_PRICING_DELIVERY_FEE"), defaultDeliveryFee); err != nil {
		return Config{}, fmt.Errorf("config: API_PRICING_DELIVERY_FEE: %w", err)
	}
	if _, err := currency.ParseISO(cfg.Pricing.Currency); err != nil {
		return Config{}, fmt.Errorf("config: API_PRICING_CURRENCY: %w", err)
	}

	switch cfg.Store.Backend {
	case "memory", "file", "redis":
	default:
		return Config{}, fmt.Errorf("config: API_STORE_BACKEND must be memory, file, or redis, got %q", cfg.Store.Backend)
	}

	if cfg.Features.SeedDemoNotifications, err = boolOr(get("API_FEATURES_SEED_DEMO_NOTIFICATIONS"), true); err != nil {
		return Config{}, fmt.Errorf("config: API_FEATURES_SEED_DEMO_NOTIFICATIONS: %w", err)
	}

	return cfg, nil
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func durationOr(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}

func decimalOr(value, fallback string) (decimal.Decimal, error) {
	if value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("must not be negative")
	}
	return d, nil
}

func boolOr(value string, fallback bool) (bool, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

// readEnvFile parses a minimal KEY=VALUE dotenv file. Missing files and
// malformed lines are skipped silently.
func readEnvFile(path string) map[string]string {
	values := make(map[string]string)
	if path == "" {
		return values
	}

	file, err := os.Open(path)
	if err != nil {
		return values
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		values[key] = value
	}
	return values
}
