// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingEnv is returned when a variable required by the selected backends is unset.
var ErrMissingEnv = errors.New("missing required environment variable")

// ErrInvalidEnv is returned when a variable cannot be parsed or has an unknown value.
var ErrInvalidEnv = errors.New("invalid environment variable")

// Data backends.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Geocoders.
const (
	GeocoderGoogle    = "google"
	GeocoderNominatim = "nominatim"
)

// Config is the complete process configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DataBackend string
	Supabase    SupabaseConfig
	Postgres    PostgresConfig

	// MemoryFixtures is an optional JSON fixture file for the memory backend.
	MemoryFixtures string

	Geocoder  string
	Google    GoogleConfig
	Nominatim NominatimConfig

	ProviderTimeout    time.Duration
	RateLimitPerMinute int
	CORSAllowedOrigins []string

	Telemetry TelemetryConfig
}

type SupabaseConfig struct {
	URL string
	Key string
}

type PostgresConfig struct {
	URL      string
	MaxConns int32
}

type GoogleConfig struct {
	APIKey string

	// Region is a ccTLD (GEOCODING_REGION). Google treats it as a bias:
	// matches outside the region can still be returned.
	Region string
}

type NominatimConfig struct {
	URL string

	// CountryCodes is a comma-separated ISO 3166-1 list (NOMINATIM_COUNTRY_CODES,
	// defaulting to GEOCODING_REGION). Nominatim treats it as a hard filter.
	CountryCodes string

	UserAgent string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. A missing file is reported as
// loaded == false, not as an error.
func LoadDotEnv(files ...string) (loaded bool, err error) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load .env: %w", err)
	}
	return true, nil
}

// FromEnv reads and validates configuration from the process environment.
func FromEnv() (Config, error) {
	var errs []error
	p := parser{errs: &errs}

	cfg := Config{
		Port:     getEnvOrDefault("PORT", "3000"),
		Env:      getEnvOrDefault("APP_ENV", "development"),
		LogLevel: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),

		DataBackend: strings.ToLower(getEnvOrDefault("DATA_BACKEND", BackendSupabase)),
		Supabase: SupabaseConfig{
			URL: strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			Key: os.Getenv("SUPABASE_KEY"),
		},
		Postgres: PostgresConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(p.int("DB_MAX_CONNS", 10)), //nolint:gosec // bounded below
		},
		MemoryFixtures: os.Getenv("MEMORY_FIXTURES"),

		Geocoder: strings.ToLower(getEnvOrDefault("GEOCODER", GeocoderGoogle)),
		Google: GoogleConfig{
			APIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
			Region: getEnvOrDefault("GEOCODING_REGION", "in"),
		},
		Nominatim: NominatimConfig{
			URL:          os.Getenv("NOMINATIM_URL"),
			CountryCodes: getEnvOrDefault("NOMINATIM_COUNTRY_CODES", getEnvOrDefault("GEOCODING_REGION", "in")),
			UserAgent:    os.Getenv("NOMINATIM_USER_AGENT"),
		},

		ProviderTimeout:    p.duration("PROVIDER_TIMEOUT", 10*time.Second),
		RateLimitPerMinute: p.int("RATE_LIMIT_PER_MINUTE", 0),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		Telemetry: TelemetryConfig{
			Enabled:      p.bool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  p.float("OTEL_SAMPLE_RATIO", 1),
		},
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Load loads .env (if present) and then reads the environment.
func Load() (Config, error) {
	if _, err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

func (c Config) validate() []error {
	var errs []error

	switch c.DataBackend {
	case BackendSupabase:
		errs = appendMissing(errs, "SUPABASE_URL", c.Supabase.URL)
		errs = appendMissing(errs, "SUPABASE_KEY", c.Supabase.Key)
	case BackendPostgres:
		errs = appendMissing(errs, "DATABASE_URL", c.Postgres.URL)
		if c.Postgres.MaxConns < 1 {
			errs = append(errs, fmt.Errorf("%w: DB_MAX_CONNS must be positive", ErrInvalidEnv))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: DATA_BACKEND=%q (want supabase, postgres or memory)", ErrInvalidEnv, c.DataBackend))
	}

	switch c.Geocoder {
	case GeocoderGoogle:
		errs = appendMissing(errs, "GOOGLE_MAPS_API_KEY", c.Google.APIKey)
	case GeocoderNominatim:
	default:
		errs = append(errs, fmt.Errorf("%w: GEOCODER=%q (want google or nominatim)", ErrInvalidEnv, c.Geocoder))
	}

	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: PROVIDER_TIMEOUT must be positive", ErrInvalidEnv))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("%w: RATE_LIMIT_PER_MINUTE must not be negative", ErrInvalidEnv))
	}
	return errs
}

func appendMissing(errs []error, key, value string) []error {
	if value == "" {
		return append(errs, fmt.Errorf("%w: %s", ErrMissingEnv, key))
	}
	return errs
}

// parser collects parse errors instead of failing on the first one.
type parser struct {
	errs *[]error
}

func (p parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, key, v, err))
		return def
	}
	return n
}

func (p parser) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, key, v, err))
		return def
	}
	return f
}

func (p parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, key, v, err))
		return def
	}
	return b
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, key, v, err))
		return def
	}
	return d
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
