package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the collaborator station.
//
// Every key can be set through a VERDEANDO_-prefixed environment variable, with dots
// replaced by underscores (backend.base_url -> VERDEANDO_BACKEND_BASE_URL), or through a
// YAML file named by VERDEANDO_CONFIG. Environment variables win over the file.
type Config struct {
	Env          string             // Env is the current environment: local, development, production.
	Port         int                // Port is the monitoring server port.
	APIPort      int                // APIPort is the station HTTP API port.
	Backend      BackendConfig      // Backend holds the remote API settings.
	Credentials  CredentialsConfig  // Credentials log the station in when no session is persisted.
	Verification VerificationConfig // Verification tunes the proximity check.
	Location     LocationConfig     // Location selects where the station's position comes from.
	Geocoder     GeocoderConfig     // Geocoder resolves addresses to coordinates.
	Session      SessionConfig      // Session selects the session store.
	Redis        RedisConfig        // Redis is used when Session.Store is "redis".
	Database     PostgresConfig     // Database is used when Session.Store is "postgres".
	Refresh      RefreshConfig      // Refresh controls background reloads.
}

// BackendConfig describes the remote verdeando API.
type BackendConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per second, 0 disables limiting
}

// CredentialsConfig are the login inputs.
type CredentialsConfig struct {
	Email    string
	Password string
}

// VerificationConfig bounds the proximity retry loop.
type VerificationConfig struct {
	Attempts  uint
	Delay     time.Duration
	Tolerance float64 // degrees, applied per axis
}

// LocationConfig selects the location source: static, address or disabled.
type LocationConfig struct {
	Source    string
	Latitude  float64
	Longitude float64
	Address   string
}

// GeocoderConfig selects the geocoding provider.
type GeocoderConfig struct {
	Type      string
	APIKey    string
	Country   string
	RateLimit int
}

// SessionConfig selects the session store: memory, redis or postgres.
type SessionConfig struct {
	Store string
	Key   string
	TTL   time.Duration
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr string
	DB   int
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RefreshConfig controls the background refresher.
type RefreshConfig struct {
	Interval time.Duration
	Workers  int
}

var defaults = map[string]any{
	"env":                    "production",
	"port":                   "8080",
	"api.port":               "8081",
	"backend.base_url":       "https://verdeandoback.onrender.com",
	"backend.timeout":        "15s",
	"backend.rate_limit":     "10",
	"verification.attempts":  "5",
	"verification.delay":     "2s",
	"verification.tolerance": "0.002",
	"location.source":        "static",
	"location.latitude":      "0",
	"location.longitude":     "0",
	"geocoder.type":          "nominatim",
	"geocoder.country":       "ar",
	"geocoder.rate_limit":    "1",
	"session.store":          "memory",
	"session.key":            "verdeando:session",
	"session.ttl":            "0s",
	"redis.addr":             "localhost:6379",
	"redis.db":               "0",
	"postgres.port":          "5432",
	"refresh.interval":       "5m",
	"refresh.workers":        "3",
}

// MustLoad reads .env, the optional YAML file and the environment, and returns the
// configuration. It panics on values that cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VERDEANDO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path, ok := os.LookupEnv("VERDEANDO_CONFIG"); ok && path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	attempts := mustPositive(v, "verification.attempts",
		"failed to parse verification attempts from configuration, must be a positive integer")
	workers := mustPositive(v, "refresh.workers",
		"failed to parse refresh workers from configuration, must be a positive integer")

	return &Config{
		Env:     v.GetString("env"),
		Port:    mustInt(v, "port", "failed to parse port for monitoring server from configuration"),
		APIPort: mustInt(v, "api.port", "failed to parse port for station API from configuration"),
		Backend: BackendConfig{
			BaseURL:   v.GetString("backend.base_url"),
			Timeout:   mustDuration(v, "backend.timeout", "failed to parse backend timeout from configuration"),
			RateLimit: mustInt(v, "backend.rate_limit", "failed to parse backend rate limit from configuration"),
		},
		Credentials: CredentialsConfig{
			Email:    v.GetString("credentials.email"),
			Password: v.GetString("credentials.password"),
		},
		Verification: VerificationConfig{
			Attempts:  uint(attempts),
			Delay:     mustDuration(v, "verification.delay", "failed to parse verification delay from configuration"),
			Tolerance: mustFloat(v, "verification.tolerance", "failed to parse tolerance from configuration"),
		},
		Location: LocationConfig{
			Source:    v.GetString("location.source"),
			Latitude:  mustFloat(v, "location.latitude", "failed to parse station latitude from configuration"),
			Longitude: mustFloat(v, "location.longitude", "failed to parse station longitude from configuration"),
			Address:   v.GetString("location.address"),
		},
		Geocoder: GeocoderConfig{
			Type:      v.GetString("geocoder.type"),
			APIKey:    v.GetString("geocoder.api_key"),
			Country:   v.GetString("geocoder.country"),
			RateLimit: mustInt(v, "geocoder.rate_limit", "failed to parse geocoder rate limit from configuration"),
		},
		Session: SessionConfig{
			Store: v.GetString("session.store"),
			Key:   v.GetString("session.key"),
			TTL:   mustDuration(v, "session.ttl", "failed to parse session TTL from configuration"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("redis.addr"),
			DB:   mustInt(v, "redis.db", "failed to parse redis database from configuration"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.name"),
		},
		Refresh: RefreshConfig{
			Interval: mustDuration(v, "refresh.interval", "failed to parse refresh interval from configuration"),
			Workers:  workers,
		},
	}
}

func mustInt(v *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}

	return value
}

func mustPositive(v *viper.Viper, key, msg string) int {
	value := mustInt(v, key, msg)
	if value < 1 {
		panic(msg)
	}

	return value
}

func mustFloat(v *viper.Viper, key, msg string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		panic(msg)
	}

	return value
}

func mustDuration(v *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}

	return value
}
