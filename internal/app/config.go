package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ECOM_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (ECOM_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (ECOM_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Payment      PaymentConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// PaymentConfig points at the payment provider.
type PaymentConfig struct {
	BaseURL   string        `usage:"Payment provider base URL" flag:"payment-base-url"`
	SecretKey string        `usage:"Payment provider secret key (ECOM_PAYMENT_SECRETKEY)" flag:"payment-secret-key"`
	Timeout   time.Duration `default:"30s" usage:"Payment provider HTTP client timeout"`
}

// CheckoutConfig controls the orchestrator's per-step deadlines and the
// order-commit retry policy.
type CheckoutConfig struct {
	Currency       string        `default:"usd" usage:"Checkout currency code"`
	IntentTimeout  time.Duration `default:"10s" usage:"Payment intent request deadline"`
	ConfirmTimeout time.Duration `default:"2m"  usage:"Payment authorization deadline"`
	SubmitTimeout  time.Duration `default:"10s" usage:"Order commit deadline per attempt"`
	SubmitAttempts uint          `default:"3"   usage:"Order commit attempts on transient store errors"`
	SubmitDelay    time.Duration `default:"200ms" usage:"Delay between order commit attempts"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ECOM",
		Files:     []string{"config.yaml", "/etc/ecom/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ECOM_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Payment.BaseURL == "" {
		return nil, errors.New("payment provider URL is required: set ECOM_PAYMENT_BASEURL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's ECOM_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
