package config

import (
	"fmt"
	"math"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/infigaming-com/go-currency/cache"
	"github.com/infigaming-com/go-currency/currency"
	"go.uber.org/zap/zapcore"
)

const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Env     string                 `yaml:"env" env:"ENV" env-default:"local"`
	Log     LogConfig              `yaml:"log"`
	HTTP    HTTPConfig             `yaml:"http"`
	Rates   RatesConfig            `yaml:"rates"`
	Redis   cache.RedisCacheConfig `yaml:"redis"`
	Metrics MetricsConfig          `yaml:"metrics"`
}

type LogConfig struct {
	Level        string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	DebugEnabled bool   `yaml:"debug_enabled" env:"LOG_DEBUG_ENABLED" env-default:"false"`
}

type HTTPConfig struct {
	Port            int64         `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Mode            string        `yaml:"mode" env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" env:"HTTP_SLOW_THRESHOLD" env-default:"1s"`
}

type RatesConfig struct {
	ProviderURL           string        `yaml:"provider_url" env:"RATES_PROVIDER_URL" env-default:"https://api.exchangerate-api.com/v4/latest"`
	APIKeyHeader          string        `yaml:"api_key_header" env:"RATES_API_KEY_HEADER" env-default:"apikey"`
	APIKey                string        `yaml:"api_key" env:"RATES_API_KEY"`
	BaseCurrency          string        `yaml:"base_currency" env:"RATES_BASE_CURRENCY" env-default:"KES"`
	RefreshInterval       time.Duration `yaml:"refresh_interval" env:"RATES_REFRESH_INTERVAL" env-default:"1h"`
	FallbackRetryInterval time.Duration `yaml:"fallback_retry_interval" env:"RATES_FALLBACK_RETRY_INTERVAL" env-default:"0s"`
	FetchTimeout          time.Duration `yaml:"fetch_timeout" env:"RATES_FETCH_TIMEOUT" env-default:"5s"`
	Retries               int           `yaml:"retries" env:"RATES_RETRIES" env-default:"1"`
	MetadataFile          string        `yaml:"metadata_file" env:"RATES_METADATA_FILE"`
	Store                 string        `yaml:"store" env:"RATES_STORE" env-default:"memory"`
	RefreshLock           bool          `yaml:"refresh_lock" env:"RATES_REFRESH_LOCK" env-default:"false"`
	MemoryStoreSize       int           `yaml:"memory_store_size" env:"RATES_MEMORY_STORE_SIZE" env-default:"1048576"`

	// FallbackRates replaces the built-in KES table, e.g. RATES_FALLBACK_RATES="USD:1,KES:130".
	FallbackRates map[string]float64 `yaml:"fallback_rates" env:"RATES_FALLBACK_RATES"`
}

type MetricsConfig struct {
	Enabled          bool          `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
	ServiceName      string        `yaml:"service_name" env:"METRICS_SERVICE_NAME" env-default:"currencyd"`
	ServiceNamespace string        `yaml:"service_namespace" env:"METRICS_SERVICE_NAMESPACE"`
	OTLPEndpoint     string        `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPGRPCEndpoint string        `yaml:"otlp_grpc_endpoint" env:"OTEL_EXPORTER_OTLP_GRPC_ENDPOINT"`
	ExportInterval   time.Duration `yaml:"export_interval" env:"METRICS_EXPORT_INTERVAL" env-default:"60s"`
}

// Load reads the YAML file at path, with environment variables taking precedence.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Rates.Store {
	case StoreNone, StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when rates.store is %q", StoreRedis)
		}
	default:
		return fmt.Errorf("unknown rates.store %q", c.Rates.Store)
	}
	if c.Rates.RefreshInterval <= 0 {
		return fmt.Errorf("rates.refresh_interval must be positive")
	}
	if c.Rates.BaseCurrency == "" {
		return fmt.Errorf("rates.base_currency is required")
	}
	return c.validateFallbackRates()
}

// validateFallbackRates requires a fallback table of the configured base whenever the base
// differs from the built-in one.
func (c *Config) validateFallbackRates() error {
	base := c.Rates.BaseCurrency
	if len(c.Rates.FallbackRates) == 0 {
		if base != currency.DefaultBaseCurrency {
			return fmt.Errorf("rates.fallback_rates is required when rates.base_currency is %q", base)
		}
		return nil
	}
	if r, ok := c.Rates.FallbackRates[base]; !ok || r != 1 {
		return fmt.Errorf("rates.fallback_rates must hold %s at 1", base)
	}
	for code, r := range c.Rates.FallbackRates {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("rates.fallback_rates has invalid rate for %s: %v", code, r)
		}
	}
	return nil
}

func (c *Config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return level, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// Usage describes every environment variable, for --help output.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
