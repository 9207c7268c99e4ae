// Package config provides configuration management for the aiengine service.
// Configuration is layered: compiled-in defaults, then an optional YAML file
// (with ${VAR} and ${VAR:-default} expansion), then environment overrides.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the port the service listens on and reports from its health check.
	DefaultPort = 5001

	// DefaultModel is the chat model used for every prompt.
	DefaultModel = "gpt-4o-mini"

	// DefaultSystemPrompt is sent as the system turn of every model call.
	DefaultSystemPrompt = "You are a helpful medical AI assistant."

	// DefaultMaxTokens caps the model's output length.
	DefaultMaxTokens = 200

	// ProviderOpenAI selects the native OpenAI backend. Any other provider name
	// is served through gollm.
	ProviderOpenAI = "openai"
)

// Config represents the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	CORS    CORSConfig    `yaml:"cors"`
}

// ServerConfig holds settings for the HTTP listener.
type ServerConfig struct {
	// Host is the interface to bind (default: all interfaces)
	Host string `yaml:"host" env:"AIENGINE_HOST"`

	// Port specifies the HTTP server port (default: 5001)
	Port int `yaml:"port" env:"AIENGINE_PORT"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including an uploaded document (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds the whole handler, model call included (default: 120s)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum size of request headers (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxUploadMemory is how much of a multipart upload is held in memory
	// before spilling to temporary files (default: 32MB)
	MaxUploadMemory int64 `yaml:"max_upload_memory"`
}

// LLMConfig holds the Model Gateway configuration.
type LLMConfig struct {
	// Provider selects the backend: "openai" uses the OpenAI SDK directly,
	// anything else ("anthropic", "ollama", "groq", ...) goes through gollm.
	Provider string `yaml:"provider" env:"AIENGINE_LLM_PROVIDER"`

	// Model is the model identifier sent with every call (default: gpt-4o-mini)
	Model string `yaml:"model" env:"AIENGINE_LLM_MODEL"`

	// APIKey is the provider credential. Empty or placeholder values put the
	// gateway in mock mode.
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`

	// Endpoint overrides the provider base URL (optional)
	Endpoint string `yaml:"endpoint" env:"AIENGINE_LLM_ENDPOINT"`

	// SystemPrompt is the system turn of every call
	SystemPrompt string `yaml:"system_prompt"`

	// MaxTokens caps the output length of every call (default: 200)
	MaxTokens int `yaml:"max_tokens"`

	// CircuitBreaker short-circuits calls after repeated upstream failures (optional)
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig configures the optional breaker around model calls.
type CircuitBreakerConfig struct {
	// Enabled turns the breaker on (default: false)
	Enabled bool `yaml:"enabled"`

	// MaxRequests is the number of calls allowed through while half-open
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state after which counts reset
	Interval time.Duration `yaml:"interval"`

	// Timeout is how long the breaker stays open before going half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures that trips the breaker
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level" env:"AIENGINE_LOG_LEVEL"`

	// Format specifies log output format: json or text
	Format string `yaml:"format" env:"AIENGINE_LOG_FORMAT"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	// Enabled starts a separate /metrics listener
	Enabled bool `yaml:"enabled" env:"AIENGINE_METRICS_ENABLED"`

	// Port for the metrics listener (default: 9090)
	Port int `yaml:"port" env:"AIENGINE_METRICS_PORT"`

	// CountTokens records prompt token counts with tiktoken
	CountTokens bool `yaml:"count_tokens"`
}

// CORSConfig controls the permissive CORS middleware.
type CORSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            DefaultPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadMemory: 32 << 20,
		},

		LLM: LLMConfig{
			Provider:     ProviderOpenAI,
			Model:        DefaultModel,
			SystemPrompt: DefaultSystemPrompt,
			MaxTokens:    DefaultMaxTokens,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          false,
				MaxRequests:      1,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},

		Metrics: MetricsConfig{
			Enabled:     false,
			Port:        9090,
			CountTokens: false,
		},

		CORS: CORSConfig{
			Enabled: true,
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// LoadFileOrDefaults behaves like LoadFile, except that a missing file yields
// the defaults with environment overrides applied.
func LoadFileOrDefaults(filename string) (*Config, error) {
	cfg, err := LoadFile(filename)
	if err == nil {
		return cfg, nil
	}
	if !stderrors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg = DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars resolves ${VAR} and ${VAR:-default} references. Unset
// variables without a default expand to the empty string.
func expandEnvVars(s string) (string, error) {
	if strings.Count(s, "${") > strings.Count(s, "}") {
		return "", fmt.Errorf("invalid syntax: unterminated variable reference")
	}

	return os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			if val := os.Getenv(key[:i]); val != "" {
				return val
			}
			return key[i+2:]
		}
		return os.Getenv(key)
	}), nil
}

// ApplyEnv overlays environment variables onto cfg. Unset variables leave
// the existing values untouched.
func ApplyEnv(cfg *Config) error {
	return env.Parse(cfg)
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expandedData, err := expandEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("expand environment variables: %w", err)
	}

	// Start with defaults
	config := DefaultConfig()

	// Decode YAML on top of defaults. An empty document keeps the defaults.
	dec := yaml.NewDecoder(strings.NewReader(expandedData))
	if err := dec.Decode(config); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := ApplyEnv(config); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Addr returns the host:port the HTTP server binds.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}
	if c.Server.MaxUploadMemory <= 0 {
		return fmt.Errorf("max upload memory must be positive: %d", c.Server.MaxUploadMemory)
	}

	// LLM validation
	if c.LLM.Provider == "" {
		return fmt.Errorf("empty LLM provider")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("empty LLM model")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive: %d", c.LLM.MaxTokens)
	}
	if cb := c.LLM.CircuitBreaker; cb.Enabled {
		if cb.FailureThreshold == 0 {
			return fmt.Errorf("circuit breaker failure threshold must be positive")
		}
		if cb.Timeout <= 0 {
			return fmt.Errorf("circuit breaker timeout must be positive: %v", cb.Timeout)
		}
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Metrics validation
	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port %d collides with server port", c.Metrics.Port)
		}
	}

	return nil
}
