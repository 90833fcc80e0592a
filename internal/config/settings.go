package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// AuthSettings configuration for authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ExplorerSettings configuration for project indexing and sessions
type ExplorerSettings struct {
	ProjectCapacity int    `mapstructure:"project_capacity"`
	MaxChunkBytes   int    `mapstructure:"max_chunk_bytes"`
	PeekMaxLines    int    `mapstructure:"peek_max_lines"`
	ReplMaxSteps    uint64 `mapstructure:"repl_max_steps"`
}

// EvaluatorSettings configuration for the sub-query evaluator backend.
// When disabled, llm_query, subcall_batch, and deep_query fail cleanly.
type EvaluatorSettings struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Parallelism int           `mapstructure:"parallelism"`
	MaxDepth    int           `mapstructure:"max_depth"`
}

// Settings application settings
type Settings struct {
	Transport string            `mapstructure:"transport"`
	Host      string            `mapstructure:"host"`
	Port      int               `mapstructure:"port"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Explorer  ExplorerSettings  `mapstructure:"explorer"`
	Evaluator EvaluatorSettings `mapstructure:"evaluator"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("auth.type", AuthTypeNone)

	// Explorer defaults
	v.SetDefault("explorer.project_capacity", 5)
	v.SetDefault("explorer.max_chunk_bytes", 5000)
	v.SetDefault("explorer.peek_max_lines", 100)
	v.SetDefault("explorer.repl_max_steps", uint64(10_000_000))

	// Evaluator defaults
	v.SetDefault("evaluator.enabled", false)
	v.SetDefault("evaluator.timeout", 60*time.Second)
	v.SetDefault("evaluator.parallelism", 4)
	v.SetDefault("evaluator.max_depth", 2)

	// Environment variables
	v.SetEnvPrefix("SIGHTGLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("auth.type", "SIGHTGLASS_AUTH_TYPE")
	_ = v.BindEnv("auth.basic.username", "SIGHTGLASS_AUTH_BASIC_USERNAME")
	_ = v.BindEnv("auth.basic.password", "SIGHTGLASS_AUTH_BASIC_PASSWORD")
	_ = v.BindEnv("auth.api_keys", "SIGHTGLASS_AUTH_API_KEYS")

	// Explorer env var bindings
	_ = v.BindEnv("explorer.project_capacity", "SIGHTGLASS_EXPLORER_PROJECT_CAPACITY")
	_ = v.BindEnv("explorer.max_chunk_bytes", "SIGHTGLASS_EXPLORER_MAX_CHUNK_BYTES")
	_ = v.BindEnv("explorer.peek_max_lines", "SIGHTGLASS_EXPLORER_PEEK_MAX_LINES")
	_ = v.BindEnv("explorer.repl_max_steps", "SIGHTGLASS_EXPLORER_REPL_MAX_STEPS")

	// Evaluator env var bindings
	_ = v.BindEnv("evaluator.enabled", "SIGHTGLASS_EVALUATOR_ENABLED")
	_ = v.BindEnv("evaluator.base_url", "SIGHTGLASS_EVALUATOR_BASE_URL")
	_ = v.BindEnv("evaluator.model", "SIGHTGLASS_EVALUATOR_MODEL")
	_ = v.BindEnv("evaluator.timeout", "SIGHTGLASS_EVALUATOR_TIMEOUT")
	_ = v.BindEnv("evaluator.parallelism", "SIGHTGLASS_EVALUATOR_PARALLELISM")
	_ = v.BindEnv("evaluator.max_depth", "SIGHTGLASS_EVALUATOR_MAX_DEPTH")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("transport", flags.Lookup("transport"))
		_ = v.BindPFlag("host", flags.Lookup("host"))
		_ = v.BindPFlag("port", flags.Lookup("port"))
		_ = v.BindPFlag("auth.type", flags.Lookup("auth-type"))
		_ = v.BindPFlag("auth.basic.username", flags.Lookup("auth-basic-username"))
		_ = v.BindPFlag("auth.basic.password", flags.Lookup("auth-basic-password"))
		_ = v.BindPFlag("auth.api_keys", flags.Lookup("auth-api-keys"))

		// Explorer CLI flags
		_ = v.BindPFlag("explorer.project_capacity", flags.Lookup("project-capacity"))
		_ = v.BindPFlag("explorer.max_chunk_bytes", flags.Lookup("max-chunk-bytes"))
		_ = v.BindPFlag("explorer.peek_max_lines", flags.Lookup("peek-max-lines"))
		_ = v.BindPFlag("explorer.repl_max_steps", flags.Lookup("repl-max-steps"))

		// Evaluator CLI flags
		_ = v.BindPFlag("evaluator.enabled", flags.Lookup("evaluator-enabled"))
		_ = v.BindPFlag("evaluator.base_url", flags.Lookup("evaluator-base-url"))
		_ = v.BindPFlag("evaluator.model", flags.Lookup("evaluator-model"))
		_ = v.BindPFlag("evaluator.timeout", flags.Lookup("evaluator-timeout"))
		_ = v.BindPFlag("evaluator.parallelism", flags.Lookup("evaluator-parallelism"))
		_ = v.BindPFlag("evaluator.max_depth", flags.Lookup("evaluator-max-depth"))
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of API keys if provided via env var as comma-separated string
	if len(settings.Auth.APIKeys) == 1 && strings.Contains(settings.Auth.APIKeys[0], ",") {
		settings.Auth.APIKeys = strings.Split(settings.Auth.APIKeys[0], ",")
	}

	// Trim spaces from API keys
	for i := range settings.Auth.APIKeys {
		settings.Auth.APIKeys[i] = strings.TrimSpace(settings.Auth.APIKeys[i])
	}

	return &settings, nil
}

// ValidateSettings checks for conflicting configurations.
// Returns an error if the settings contain mutually exclusive or incomplete config.
func ValidateSettings(s *Settings) error {
	// Validate transport type
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	hasBasicCreds := s.Auth.Basic.Username != "" || s.Auth.Basic.Password != ""
	hasAPIKeys := len(s.Auth.APIKeys) > 0

	switch s.Auth.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if s.Auth.Basic.Username == "" || s.Auth.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + s.Auth.Type)
	}

	if err := validateExplorerSettings(&s.Explorer); err != nil {
		return err
	}

	return validateEvaluatorSettings(&s.Evaluator)
}

// validateExplorerSettings validates the explorer configuration
func validateExplorerSettings(e *ExplorerSettings) error {
	if e.ProjectCapacity <= 0 {
		return errors.New("project-capacity must be positive")
	}

	if e.MaxChunkBytes <= 0 {
		return errors.New("max-chunk-bytes must be positive")
	}

	if e.PeekMaxLines <= 0 {
		return errors.New("peek-max-lines must be positive")
	}

	if e.ReplMaxSteps == 0 {
		return errors.New("repl-max-steps must be positive")
	}

	return nil
}

// validateEvaluatorSettings validates the evaluator configuration
func validateEvaluatorSettings(e *EvaluatorSettings) error {
	if !e.Enabled {
		return nil // No validation needed when disabled
	}

	if e.BaseURL == "" {
		return errors.New("evaluator-enabled requires an evaluator base URL (evaluator-base-url)")
	}

	if _, err := url.ParseRequestURI(e.BaseURL); err != nil {
		return errors.New("evaluator-base-url is not a valid URL: " + e.BaseURL)
	}

	if e.Model == "" {
		return errors.New("evaluator-enabled requires a model name (evaluator-model)")
	}

	if e.Timeout <= 0 {
		return errors.New("evaluator-timeout must be positive")
	}

	if e.Parallelism <= 0 {
		return errors.New("evaluator-parallelism must be positive")
	}

	if e.MaxDepth <= 0 {
		return errors.New("evaluator-max-depth must be positive")
	}

	return nil
}
