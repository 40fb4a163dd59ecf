// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.finboard/config.toml or ./config.toml)
//  3. Default values
//
// The config file follows the warehouse-client convention of named
// connection profiles plus a designated default:
//
//	[options]
//	default_connection = "prod"
//
//	[connections.prod]
//	host = "warehouse.internal"
//	port = 5432
//	user = "finboard"
//	password = "..."
//	dbname = "finboard"
//	sslmode = "require"
//
// Security: sensitive data (passwords, signing secret) is masked in
// MarshalJSON/String. Validation is fail-fast with sentinel errors for
// Go-idiomatic checking via errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrNoConnections indicates the config defines no connection profiles.
	ErrNoConnections = errors.New("no connection profiles configured")

	// ErrNoProfile indicates the named default connection profile is absent.
	ErrNoProfile = errors.New("connection profile not found")

	// ErrInvalidPort indicates a connection profile port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidSSLMode indicates a connection profile sslmode is not recognized.
	ErrInvalidSSLMode = errors.New("invalid sslmode")

	// ErrInvalidModelName indicates the model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidLinkTTL indicates the document link TTL is not positive.
	ErrInvalidLinkTTL = errors.New("invalid link_ttl_seconds")

	// ErrMissingSigningSecret indicates the document-link signing secret is not set.
	ErrMissingSigningSecret = errors.New("missing signing secret")
)

// Defaults for AI and retrieval configuration.
const (
	// DefaultModel is the completion model used when none is selected.
	DefaultModel = "gemini-2.5-flash"

	// DefaultEmbedderModel is the embedding model for document chunks.
	// gemini-embedding-001 supports truncation to 768 dimensions, which
	// matches the doc_chunks vector column.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 3

	// DefaultLinkTTLSeconds is the lifetime of a signed document link.
	DefaultLinkTTLSeconds = 360

	// MaxTopK bounds retrieval size to keep prompts manageable.
	MaxTopK = 10
)

// Options designates the default connection profile, mirroring the
// [options] table of the warehouse client config file.
type Options struct {
	DefaultConnection string `mapstructure:"default_connection" json:"default_connection"`
}

// OtelConfig configures trace export to a local OTLP collector.
type OtelConfig struct {
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	Environment string `mapstructure:"environment" json:"environment"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields, update MarshalJSON.
type Config struct {
	// Warehouse connection profiles ([connections.*] + [options])
	Connections map[string]ConnectionProfile `mapstructure:"connections" json:"connections"`
	Options     Options                      `mapstructure:"options" json:"options"`

	// AI provider and model configuration
	Provider      string `mapstructure:"provider" json:"provider"`
	ModelName     string `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// Retrieval configuration
	TopK int `mapstructure:"top_k" json:"top_k"`

	// Document link signing
	SigningSecret  string `mapstructure:"signing_secret" json:"signing_secret"` // SENSITIVE: masked in MarshalJSON
	LinkTTLSeconds int    `mapstructure:"link_ttl_seconds" json:"link_ttl_seconds"`

	// Observability configuration
	Otel OtelConfig `mapstructure:"otel" json:"otel"`
}

// Load loads configuration.
/// Priority: environment variables > configuration file > default values.
// A missing config file is not an error; connection-profile resolution
// fails later in warehouse.Acquire when no ambient session exists either.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".finboard")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.toml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, if set, synthesizes a profile and makes it the default.
	if err := cfg.applyDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "gemini")
	v.SetDefault("model_name", DefaultModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("link_ttl_seconds", DefaultLinkTTLSeconds)

	v.SetDefault("otel.endpoint", "localhost:4318")
	v.SetDefault("otel.environment", "dev")
	v.SetDefault("otel.service_name", "finboard")
}

// bindEnvVariables binds environment variable overrides explicitly.
// GEMINI_API_KEY is read directly by the Genkit plugin, not via Viper.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys can't fail to bind; a panic here is a bug, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("signing_secret", "FINBOARD_SIGNING_SECRET")
	mustBind("model_name", "FINBOARD_MODEL_NAME")
	mustBind("provider", "FINBOARD_PROVIDER")
	mustBind("top_k", "FINBOARD_TOP_K")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Short secrets are fully masked to prevent substring matching; longer
// ones keep the first and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.SigningSecret = maskSecret(a.SigningSecret)
	if a.Connections != nil {
		masked := make(map[string]ConnectionProfile, len(a.Connections))
		for name, p := range a.Connections {
			p.Password = maskSecret(p.Password)
			masked[name] = p
		}
		a.Connections = masked
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// FullModelName returns the provider-qualified model reference for Genkit.
// Example: "googleai/gemini-2.5-flash". Already-qualified names pass through.
func (c *Config) FullModelName(model string) string {
	if strings.Contains(model, "/") {
		return model
	}
	return "googleai/" + model
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
