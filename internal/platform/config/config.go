package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StoreDriver   string
	DatabaseURL   string
	MigrationsURL string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RedisURL       string
	RateLimit      string
	LoginRateLimit string

	CORSAllowedOrigins []string
	MutationLockTTL    time.Duration
	ExportMaxRows      int
	DefaultPageSize    int
	MaxPageSize        int

	// Created at startup when set and the username is free.
	BootstrapAdminUsername string
	BootstrapAdminPassword string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("JWT_ISSUER", "phone-store-caisse")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MUTATION_LOCK_TTL", "5s")
	viper.SetDefault("EXPORT_MAX_ROWS", 10000)
	viper.SetDefault("DEFAULT_PAGE_SIZE", 10)
	viper.SetDefault("MAX_PAGE_SIZE", 100)

	viper.AutomaticEnv()

	cfg := &Config{
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		StoreDriver:     strings.ToLower(viper.GetString("STORE_DRIVER")),
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		MigrationsURL:   viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		JWTIssuer:       viper.GetString("JWT_ISSUER"),
		RedisURL:        viper.GetString("REDIS_URL"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		LoginRateLimit:  viper.GetString("LOGIN_RATE_LIMIT"),
		ExportMaxRows:   viper.GetInt("EXPORT_MAX_ROWS"),
		DefaultPageSize: viper.GetInt("DEFAULT_PAGE_SIZE"),
		MaxPageSize:     viper.GetInt("MAX_PAGE_SIZE"),

		BootstrapAdminUsername: viper.GetString("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminPassword: viper.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
		log.Println("Warning: STORE_DRIVER=memory, data is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var err error
	if cfg.JWTExpiryDuration, err = parseDuration("JWT_EXPIRY_DURATION", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MutationLockTTL, err = parseDuration("MUTATION_LOCK_TTL", 5*time.Second); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		log.Printf("Warning: DEFAULT_PAGE_SIZE %d out of range. Defaulting to 10.\n", cfg.DefaultPageSize)
		cfg.DefaultPageSize = 10
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = 10000
	}

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
