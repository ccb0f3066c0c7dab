// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database. When empty, the server runs with in-memory repositories
	// (development and tests only).
	DatabaseURL string `koanf:"database_url"`

	// Redis. When empty, the search cache is disabled.
	RedisURL string `koanf:"redis_url"`

	// JWT Authentication
	JWTSecret         string `koanf:"jwt_secret"`
	JWTPreviousSecret string `koanf:"jwt_previous_secret"` // Set during secret rotation

	// Generative ranking service (Gemini-compatible REST endpoint).
	// When the API key is empty the search endpoint still works; every
	// ranking call is answered with the default fallback response.
	RankerAPIKey         string `koanf:"ranker_api_key"`
	RankerModel          string `koanf:"ranker_model"`
	RankerEndpoint       string `koanf:"ranker_endpoint"`
	RankerTimeoutSeconds int    `koanf:"ranker_timeout_seconds"`

	// Search cache
	SearchCacheTTLSeconds int `koanf:"search_cache_ttl_seconds"`

	// Object storage for transcript uploads (S3-compatible)
	StorageBucketName      string `koanf:"storage_bucket_name"`
	StorageAccessKeyID     string `koanf:"storage_access_key_id"`
	StorageSecretAccessKey string `koanf:"storage_secret_access_key"`
	StorageEndpoint        string `koanf:"storage_endpoint"`
	StorageMaxUploadSizeMB int    `koanf:"storage_max_upload_size_mb"`

	// CORS
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Distributed tracing (OpenTelemetry). Disabled unless explicitly enabled.
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporter     string  `koanf:"tracing_exporter"` // otlp-grpc or otlp-http
	TracingOTLPEndpoint string  `koanf:"tracing_otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingJWTSecret              = errors.New("JWT_SECRET is required")
	ErrMissingStorageBucketName      = errors.New("STORAGE_BUCKET_NAME is required")
	ErrMissingStorageAccessKeyID     = errors.New("STORAGE_ACCESS_KEY_ID is required")
	ErrMissingStorageSecretAccessKey = errors.New("STORAGE_SECRET_ACCESS_KEY is required")
	ErrMissingStorageEndpoint        = errors.New("STORAGE_ENDPOINT is required")
	ErrInvalidPort                   = errors.New("PORT must be a valid integer")
	ErrInvalidRankerTimeout          = errors.New("RANKER_TIMEOUT_SECONDS must be positive")
)

// Default values for non-secret configuration.
const (
	DefaultPort                  = 8080
	DefaultEnv                   = "development"
	DefaultRankerModel           = "gemini-pro"
	DefaultRankerEndpoint        = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultRankerTimeoutSeconds  = 8
	DefaultSearchCacheTTLSeconds = 60
	DefaultMaxUploadSizeMB       = 10
	DefaultTracingSamplingRate   = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	rankerTimeout, timeoutErr := getEnvIntOrDefault("RANKER_TIMEOUT_SECONDS", k.Int("ranker_timeout_seconds"), DefaultRankerTimeoutSeconds)
	if timeoutErr != nil {
		loadErrs = append(loadErrs, timeoutErr)
	}

	cacheTTL, cacheTTLErr := getEnvIntOrDefault("SEARCH_CACHE_TTL_SECONDS", k.Int("search_cache_ttl_seconds"), DefaultSearchCacheTTLSeconds)
	if cacheTTLErr != nil {
		loadErrs = append(loadErrs, cacheTTLErr)
	}

	maxUploadSize, uploadSizeErr := getEnvIntOrDefault("STORAGE_MAX_UPLOAD_SIZE_MB", k.Int("storage_max_upload_size_mb"), DefaultMaxUploadSizeMB)
	if uploadSizeErr != nil {
		loadErrs = append(loadErrs, uploadSizeErr)
	}

	samplingRate, samplingErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if samplingErr != nil {
		loadErrs = append(loadErrs, samplingErr)
	}

	// CORS origins: comma-separated env var, or a list in the config file
	corsOrigins := k.Strings("cors_allowed_origins")
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		corsOrigins = nil
		for _, origin := range strings.Split(val, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				corsOrigins = append(corsOrigins, origin)
			}
		}
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                   port,
		Env:                    getEnvOrDefaultMulti([]string{"ORIENTIS_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:            getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:               getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		JWTSecret:              getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTPreviousSecret:      getEnvOrKoanf("JWT_PREVIOUS_SECRET", k, "jwt_previous_secret"),
		RankerAPIKey:           getEnvOrKoanf("RANKER_API_KEY", k, "ranker_api_key"),
		RankerModel:            getEnvOrDefault("RANKER_MODEL", k.String("ranker_model"), DefaultRankerModel),
		RankerEndpoint:         getEnvOrDefault("RANKER_ENDPOINT", k.String("ranker_endpoint"), DefaultRankerEndpoint),
		RankerTimeoutSeconds:   rankerTimeout,
		SearchCacheTTLSeconds:  cacheTTL,
		StorageBucketName:      getEnvOrKoanf("STORAGE_BUCKET_NAME", k, "storage_bucket_name"),
		StorageAccessKeyID:     getEnvOrKoanf("STORAGE_ACCESS_KEY_ID", k, "storage_access_key_id"),
		StorageSecretAccessKey: getEnvOrKoanf("STORAGE_SECRET_ACCESS_KEY", k, "storage_secret_access_key"),
		StorageEndpoint:        getEnvOrKoanf("STORAGE_ENDPOINT", k, "storage_endpoint"),
		StorageMaxUploadSizeMB: maxUploadSize,
		CORSAllowedOrigins:     corsOrigins,
		TracingEnabled:         getEnvBoolOrDefault("TRACING_ENABLED", k.Bool("tracing_enabled")),
		TracingExporter:        getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), "otlp-http"),
		TracingOTLPEndpoint:    getEnvOrKoanf("TRACING_OTLP_ENDPOINT", k, "tracing_otlp_endpoint"),
		TracingSamplingRate:    samplingRate,
		TracingInsecure:        getEnvBoolOrDefault("TRACING_INSECURE", k.Bool("tracing_insecure")),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvBoolOrDefault returns true when the environment variable is set to a
// truthy value, otherwise the koanf value.
func getEnvBoolOrDefault(envKey string, koanfVal bool) bool {
	if val := os.Getenv(envKey); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return koanfVal
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid number", envKey)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.RankerTimeoutSeconds <= 0 {
		errs = append(errs, ErrInvalidRankerTimeout)
	}

	// Object storage configuration is optional. Only validate fields if any value is set.
	if c.StorageBucketName != "" || c.StorageAccessKeyID != "" || c.StorageSecretAccessKey != "" || c.StorageEndpoint != "" {
		if c.StorageBucketName == "" {
			errs = append(errs, ErrMissingStorageBucketName)
		}
		if c.StorageAccessKeyID == "" {
			errs = append(errs, ErrMissingStorageAccessKeyID)
		}
		if c.StorageSecretAccessKey == "" {
			errs = append(errs, ErrMissingStorageSecretAccessKey)
		}
		if c.StorageEndpoint == "" {
			errs = append(errs, ErrMissingStorageEndpoint)
		}
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                       fmt.Sprintf("%d", c.Port),
		"env":                        c.Env,
		"database_url":               maskConnectionURL(c.DatabaseURL),
		"redis_url":                  maskConnectionURL(c.RedisURL),
		"jwt_secret":                 maskSecret(c.JWTSecret),
		"jwt_previous_secret":        maskSecret(c.JWTPreviousSecret),
		"ranker_api_key":             maskSecret(c.RankerAPIKey),
		"ranker_model":               c.RankerModel,
		"ranker_endpoint":            c.RankerEndpoint,
		"ranker_timeout_seconds":     fmt.Sprintf("%d", c.RankerTimeoutSeconds),
		"search_cache_ttl_seconds":   fmt.Sprintf("%d", c.SearchCacheTTLSeconds),
		"storage_bucket_name":        c.StorageBucketName,
		"storage_access_key_id":      maskSecret(c.StorageAccessKeyID),
		"storage_secret_access_key":  maskSecret(c.StorageSecretAccessKey),
		"storage_endpoint":           c.StorageEndpoint,
		"storage_max_upload_size_mb": fmt.Sprintf("%d", c.StorageMaxUploadSizeMB),
		"cors_allowed_origins":       strings.Join(c.CORSAllowedOrigins, ","),
		"tracing_enabled":            strconv.FormatBool(c.TracingEnabled),
		"tracing_exporter":           c.TracingExporter,
		"tracing_otlp_endpoint":      c.TracingOTLPEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskConnectionURL masks the password in a connection URL.
// Supports postgres://, postgresql:// and redis:// schemes.
func maskConnectionURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	// Look for password pattern: user:password@host
	// Simple approach: find :// and then mask between : and @
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
