package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yarenty/modelmux/internal/profiler"
	"github.com/yarenty/modelmux/internal/provider"
	"github.com/yarenty/modelmux/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// TokenStorageType represents the different storage types supported for stored secrets.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat         = LogFormatText
	DefaultConfigServerHost        = "127.0.0.1"
	DefaultConfigServerPort        = 4000
	DefaultConfigShutdownTimeout   = 5 * time.Second
	DefaultConfigAuthStorage       = TokenStorageTypeFile
	DefaultConfigAuthStrategy      = provider.AuthStrategyGCPServiceAccount
	DefaultConfigStreamingMode     = profiler.ModeAuto
	DefaultConfigBufferMinBytes    = 50
	DefaultConfigRetryMaxAttempts  = 3
	DefaultConfigDispatcherTimeout = 300 * time.Second
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"`
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	Timeout time.Duration `json:"timeout"`
}

// ProviderConfig selects and resolves the upstream Vertex AI backend.
type ProviderConfig struct {
	// FullURL, when set, overrides the composed resource URL entirely.
	FullURL string `json:"full_url,omitempty"`

	Region    string `json:"region,omitempty"`
	Project   string `json:"project,omitempty"`
	Location  string `json:"location,omitempty"`
	Publisher string `json:"publisher,omitempty" validate:"required_without=FullURL"`
	ModelID   string `json:"model_id,omitempty" validate:"required_without=FullURL"`

	// DisplayModel overrides the model name echoed back to OpenAI clients.
	DisplayModel string `json:"display_model,omitempty"`
}

// VertexConfig converts the resolved provider config into the provider
// package's plain-value input, so provider.NewVertexProvider never reads
// global config directly.
func (p ProviderConfig) VertexConfig() provider.VertexConfig {
	return provider.VertexConfig{
		FullURL:      p.FullURL,
		Region:       p.Region,
		Project:      p.Project,
		Location:     p.Location,
		Publisher:    p.Publisher,
		ModelID:      p.ModelID,
		DisplayModel: p.DisplayModel,
	}
}

// AuthConfig represents the configuration for upstream authentication.
// Describes how to construct a TokenStore and, from the secret it yields,
// a tokensource.TokenSource.
type AuthConfig struct {
	// Strategy selects how the secret read from storage is used: as a GCP
	// service-account key (JWT-bearer minting) or as a static bearer token.
	Strategy provider.AuthStrategy `json:"strategy" validate:"required,oneof=gcp_service_account static_bearer"`

	// Storage configuration - where the stored secret comes from.
	Storage TokenStorageType `json:"storage" validate:"required,oneof=file env keyring"`

	File        string `json:"file,omitempty"`
	EnvKey      string `json:"env_key,omitempty"`
	KeyringUser string `json:"keyring_user,omitempty"`
}

// NewTokenStore creates a TokenStore from the authentication configuration.
func (a *AuthConfig) NewTokenStore() (tokenstore.TokenStore, error) {
	switch a.Storage {
	case TokenStorageTypeFile:
		return tokenstore.NewFileStore(a.File)
	case TokenStorageTypeEnv:
		return tokenstore.NewEnvStore(a.EnvKey)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringStore("modelmux-proxy-secret", a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// StreamingConfig controls the client-adaptive streaming strategy.
type StreamingConfig struct {
	Mode profiler.Mode `json:"mode" validate:"oneof=auto non_stream standard buffered always"`

	// CollapseHeaders lists org/project header values (exact match,
	// case-insensitive) that force the Collapse strategy regardless of Mode.
	CollapseHeaders []string `json:"collapse_headers,omitempty"`

	// BufferMinBytes is the flush threshold for the Buffered strategy.
	BufferMinBytes int `json:"buffer_min_bytes,omitempty"`
}

// RetryConfig controls upstream retry behavior for quota-exceeded responses.
type RetryConfig struct {
	Enabled     bool `json:"enabled"`
	MaxAttempts int  `json:"max_attempts,omitempty"`
}

// Config holds the application's configuration.
type Config struct {
	LogLevel  slog.Level      `json:"log_level"`
	LogFormat LogFormat       `json:"log_format" validate:"oneof=text json"`
	Server    ServerConfig    `json:"server"`
	Shutdown  ShutdownConfig  `json:"shutdown"`
	Provider  ProviderConfig  `json:"provider"`
	Auth      AuthConfig      `json:"auth"`
	Streaming StreamingConfig `json:"streaming"`
	Retry     RetryConfig     `json:"retry"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}
	if c.Auth.Strategy == "" {
		c.Auth.Strategy = DefaultConfigAuthStrategy
	}
	if c.Streaming.Mode == "" {
		c.Streaming.Mode = DefaultConfigStreamingMode
	}
	if c.Streaming.BufferMinBytes == 0 {
		c.Streaming.BufferMinBytes = DefaultConfigBufferMinBytes
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultConfigRetryMaxAttempts
	}

	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			c.Auth.File = filepath.Join(configDir, "modelmux", "secret")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	case TokenStorageTypeEnv:
		// env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case TokenStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			return errors.New("env_key required for env storage")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	if c.Provider.FullURL == "" {
		if c.Provider.Region == "" || c.Provider.Project == "" || c.Provider.Publisher == "" || c.Provider.ModelID == "" {
			return errors.New("provider requires full_url or region/project/publisher/model_id")
		}
	}

	return nil
}
