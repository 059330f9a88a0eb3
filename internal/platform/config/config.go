package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	LogLevel       string
	StorageDriver  string
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string

	// Ledger
	BaseCurrency        string
	SupportedCurrencies []string
	ChartOfAccountsPath string

	// Event delivery
	EventWorkerPoolSize int
	EventMaxAttempts    int
	EventRetryDelay     time.Duration
	EventQueueSize      int

	// Kafka event publisher, optional
	KafkaEnabled     bool
	KafkaBrokers     string
	KafkaEventsTopic string

	// MongoDB activity archive, optional
	MongoEnabled  bool
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// HTTP
	RateLimit          string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	if cfg.StorageDriver == StorageMemory && cfg.DatabaseURL != "" {
		log.Println("Warning: PGSQL_URL is set but STORAGE_DRIVER is memory; the database will not be used.")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		StorageDriver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:         v.GetString("PGSQL_URL"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:      v.GetString("MIGRATIONS_PATH"),
		BaseCurrency:        strings.ToUpper(v.GetString("BASE_CURRENCY")),
		SupportedCurrencies: splitList(v.GetString("SUPPORTED_CURRENCIES"), strings.ToUpper),
		ChartOfAccountsPath: v.GetString("CHART_OF_ACCOUNTS_PATH"),
		EventWorkerPoolSize: v.GetInt("EVENT_WORKER_POOL_SIZE"),
		EventMaxAttempts:    v.GetInt("EVENT_MAX_ATTEMPTS"),
		EventRetryDelay:     v.GetDuration("EVENT_RETRY_DELAY"),
		EventQueueSize:      v.GetInt("EVENT_QUEUE_SIZE"),
		KafkaEnabled:        v.GetBool("KAFKA_ENABLED"),
		KafkaBrokers:        v.GetString("KAFKA_BROKERS"),
		KafkaEventsTopic:    v.GetString("KAFKA_EVENTS_TOPIC"),
		MongoEnabled:        v.GetBool("MONGO_ENABLED"),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDatabase:       v.GetString("MONGO_DATABASE"),
		MongoTimeout:        v.GetDuration("MONGO_TIMEOUT"),
		RateLimit:           v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS"), nil),
		ShutdownTimeout:     v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("BASE_CURRENCY", "YER")
	v.SetDefault("SUPPORTED_CURRENCIES", "YER,USD,SAR")
	v.SetDefault("CHART_OF_ACCOUNTS_PATH", "configs/chart_of_accounts.yaml")

	v.SetDefault("EVENT_WORKER_POOL_SIZE", 8)
	v.SetDefault("EVENT_MAX_ATTEMPTS", 3)
	v.SetDefault("EVENT_RETRY_DELAY", 200*time.Millisecond)
	v.SetDefault("EVENT_QUEUE_SIZE", 1024)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_EVENTS_TOPIC", "ledger_events")

	v.SetDefault("MONGO_ENABLED", false)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "spice_ledger")
	v.SetDefault("MONGO_TIMEOUT", 10*time.Second)

	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
}

// validate reports every problem at once rather than the first.
func (c *Config) validate() error {
	var problems []string

	if c.Port == "" {
		problems = append(problems, "PORT is required")
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "PGSQL_URL is required when STORAGE_DRIVER is postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StoragePostgres, c.StorageDriver))
	}
	if len(c.BaseCurrency) != 3 {
		problems = append(problems, "BASE_CURRENCY must be a three-letter currency code")
	}
	for _, code := range c.SupportedCurrencies {
		if len(code) != 3 {
			problems = append(problems, fmt.Sprintf("SUPPORTED_CURRENCIES contains invalid code %q", code))
		}
	}
	if c.EventWorkerPoolSize <= 0 {
		problems = append(problems, "EVENT_WORKER_POOL_SIZE must be greater than 0")
	}
	if c.EventMaxAttempts <= 0 {
		problems = append(problems, "EVENT_MAX_ATTEMPTS must be greater than 0")
	}
	if c.EventRetryDelay < 0 {
		problems = append(problems, "EVENT_RETRY_DELAY cannot be negative")
	}
	if c.EventQueueSize <= 0 {
		problems = append(problems, "EVENT_QUEUE_SIZE must be greater than 0")
	}
	if c.KafkaEnabled {
		if c.KafkaBrokers == "" {
			problems = append(problems, "KAFKA_BROKERS is required when KAFKA_ENABLED is set")
		}
		if c.KafkaEventsTopic == "" {
			problems = append(problems, "KAFKA_EVENTS_TOPIC is required when KAFKA_ENABLED is set")
		}
	}
	if c.MongoEnabled {
		if c.MongoURI == "" {
			problems = append(problems, "MONGO_URI is required when MONGO_ENABLED is set")
		}
		if c.MongoDatabase == "" {
			problems = append(problems, "MONGO_DATABASE is required when MONGO_ENABLED is set")
		}
		if c.MongoTimeout <= 0 {
			problems = append(problems, "MONGO_TIMEOUT must be greater than 0")
		}
	}
	if c.RateLimit == "" {
		problems = append(problems, "RATE_LIMIT is required, e.g. 100-M")
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, "SHUTDOWN_TIMEOUT must be greater than 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	return nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string, norm func(string) string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if norm != nil {
			part = norm(part)
		}
		out = append(out, part)
	}
	return out
}
