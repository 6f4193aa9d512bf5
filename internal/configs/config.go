package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type DBconfig struct {
	Driver          string
	URL             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type RESTconfig struct {
	PORT            string
	AllowedOrigins  []string
	SearchRateLimit int
}

type ContentConfig struct {
	MealDBBaseURL     string
	CocktailDBBaseURL string
	Timeout           time.Duration
}

type AuthConfig struct {
	SigningKey string
}

type SyncConfig struct {
	WriteTimeout     time.Duration
	SessionCacheSize int
}

type RabbitMQConfig struct {
	Enabled  bool
	URL      string
	Exchange string
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	AppName      string
	Database     DBconfig
	Rest         RESTconfig
	Content      ContentConfig
	Auth         AuthConfig
	Sync         SyncConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: no .env file found (path: %v), using environment only.\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "favourites-service")

	cfg.Database.Driver = strings.ToLower(getEnvAsString("STORE_DRIVER", StoreDriverPostgres))
	switch cfg.Database.Driver {
	case StoreDriverPostgres:
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required")
		}
		cfg.Database.MaxConns = int32(getEnvAsInt("DATABASE_MAX_CONNS", 10))
		cfg.Database.MaxConnLifetime = getEnvAsDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour)
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", cfg.Database.Driver, StoreDriverPostgres, StoreDriverMemory)
	}

	cfg.Rest.PORT = getEnvAsString("PORT", "8083")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	cfg.Rest.SearchRateLimit = getEnvAsInt("SEARCH_RATE_LIMIT", 120)

	cfg.Content.MealDBBaseURL = getEnvAsString("MEALDB_BASE_URL", "https://www.themealdb.com/api/json/v1/1")
	cfg.Content.CocktailDBBaseURL = getEnvAsString("COCKTAILDB_BASE_URL", "https://www.thecocktaildb.com/api/json/v1/1")
	cfg.Content.Timeout = getEnvAsDuration("CONTENT_TIMEOUT", 10*time.Second)

	cfg.Auth.SigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.Auth.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required")
	}

	cfg.Sync.WriteTimeout = getEnvAsDuration("FAVOURITE_WRITE_TIMEOUT", 10*time.Second)
	cfg.Sync.SessionCacheSize = getEnvAsInt("SESSION_CACHE_SIZE", 1024)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_EXCHANGE", "favourites_events")
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil || d <= 0 {
		log.Printf("Warning: Environment variable %s (value: %s) is not a positive duration. Using default value: %s\n", key, valStr, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
