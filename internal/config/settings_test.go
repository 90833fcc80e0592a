package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadSettings_Defaults(t *testing.T) {
	_ = os.Unsetenv("SIGHTGLASS_PORT")
	_ = os.Unsetenv("SIGHTGLASS_AUTH_TYPE")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", settings.Port)
	}
	if settings.Auth.Type != AuthTypeNone {
		t.Errorf("Expected default auth type '%s', got '%s'", AuthTypeNone, settings.Auth.Type)
	}
	if settings.Transport != "stdio" {
		t.Errorf("Expected default transport 'stdio', got '%s'", settings.Transport)
	}
	if settings.Host != "0.0.0.0" {
		t.Errorf("Expected default host '0.0.0.0', got '%s'", settings.Host)
	}
}

func TestLoadSettings_EnvVars(t *testing.T) {
	t.Setenv("SIGHTGLASS_PORT", "9090")
	t.Setenv("SIGHTGLASS_AUTH_TYPE", "basic")
	t.Setenv("SIGHTGLASS_AUTH_BASIC_USERNAME", "admin")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", settings.Port)
	}
	if settings.Auth.Type != AuthTypeBasic {
		t.Errorf("Expected auth type '%s', got '%s'", AuthTypeBasic, settings.Auth.Type)
	}
	if settings.Auth.Basic.Username != "admin" {
		t.Errorf("Expected username 'admin', got '%s'", settings.Auth.Basic.Username)
	}
}

func TestLoadSettings_APIKeys_EnvVar(t *testing.T) {
	t.Setenv("SIGHTGLASS_AUTH_API_KEYS", "key1, key2,key3")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if len(settings.Auth.APIKeys) != 3 {
		t.Fatalf("Expected 3 API keys, got %d", len(settings.Auth.APIKeys))
	}
	if settings.Auth.APIKeys[0] != "key1" {
		t.Errorf("Expected key1, got '%s'", settings.Auth.APIKeys[0])
	}
	if settings.Auth.APIKeys[1] != "key2" {
		t.Errorf("Expected key2, got '%s'", settings.Auth.APIKeys[1])
	}
	if settings.Auth.APIKeys[2] != "key3" {
		t.Errorf("Expected key3, got '%s'", settings.Auth.APIKeys[2])
	}
}

func TestLoadSettings_APIKeys_SingleKey(t *testing.T) {
	t.Setenv("SIGHTGLASS_AUTH_API_KEYS", "singlekey")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if len(settings.Auth.APIKeys) != 1 {
		t.Fatalf("Expected 1 API key, got %d", len(settings.Auth.APIKeys))
	}
	if settings.Auth.APIKeys[0] != "singlekey" {
		t.Errorf("Expected singlekey, got '%s'", settings.Auth.APIKeys[0])
	}
}

func TestLoadSettings_EnvFile(t *testing.T) {
	content := []byte("host=127.0.0.2\nport=7000")
	tmpEnv := ".env"
	if err := os.WriteFile(tmpEnv, content, 0644); err != nil {
		t.Fatalf("Failed to create .env file: %v", err)
	}
	defer func() { _ = os.Remove(tmpEnv) }()

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Host != "127.0.0.2" {
		t.Errorf("Expected host 127.0.0.2, got %s", settings.Host)
	}
	if settings.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", settings.Port)
	}
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	t.Setenv("SIGHTGLASS_PORT", "not-a-number")

	_, err := LoadSettings()
	if err == nil {
		t.Fatal("Expected error for invalid port type")
	}
}

func TestLoadSettingsWithFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("SIGHTGLASS_PORT", "9090")
	t.Setenv("SIGHTGLASS_TRANSPORT", "sse")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("transport", "", "")
	_ = flags.Set("port", "7777")
	_ = flags.Set("transport", "stdio")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 7777 {
		t.Errorf("Expected CLI port 7777, got %d", settings.Port)
	}
	if settings.Transport != "stdio" {
		t.Errorf("Expected CLI transport 'stdio', got '%s'", settings.Transport)
	}
}

func TestLoadSettingsWithFlags_EnvOverridesDefault(t *testing.T) {
	t.Setenv("SIGHTGLASS_HOST", "192.168.1.1")

	settings, err := LoadSettingsWithFlags(nil)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Host != "192.168.1.1" {
		t.Errorf("Expected env host '192.168.1.1', got '%s'", settings.Host)
	}
}

func TestLoadSettingsWithFlags_NilFlags(t *testing.T) {
	_ = os.Unsetenv("SIGHTGLASS_PORT")

	settings, err := LoadSettingsWithFlags(nil)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", settings.Port)
	}
}

func TestLoadSettingsWithFlags_AllFlagTypes(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("transport", "", "")
	flags.String("host", "", "")
	flags.Int("port", 0, "")
	flags.String("auth-type", "", "")
	flags.String("auth-basic-username", "", "")
	flags.String("auth-basic-password", "", "")
	flags.StringSlice("auth-api-keys", nil, "")

	_ = flags.Set("transport", "sse")
	_ = flags.Set("host", "localhost")
	_ = flags.Set("port", "3000")
	_ = flags.Set("auth-type", "basic")
	_ = flags.Set("auth-basic-username", "testuser")
	_ = flags.Set("auth-basic-password", "testpass")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Transport != "sse" {
		t.Errorf("Expected transport 'sse', got '%s'", settings.Transport)
	}
	if settings.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", settings.Host)
	}
	if settings.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", settings.Port)
	}
	if settings.Auth.Type != "basic" {
		t.Errorf("Expected auth type 'basic', got '%s'", settings.Auth.Type)
	}
	if settings.Auth.Basic.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got '%s'", settings.Auth.Basic.Username)
	}
	if settings.Auth.Basic.Password != "testpass" {
		t.Errorf("Expected password 'testpass', got '%s'", settings.Auth.Basic.Password)
	}
}

// --- ValidateSettings Tests ---

func validSettings() *Settings {
	return &Settings{
		Transport: "stdio",
		Auth:      AuthSettings{Type: AuthTypeNone},
		Explorer: ExplorerSettings{
			ProjectCapacity: 5,
			MaxChunkBytes:   5000,
			PeekMaxLines:    100,
			ReplMaxSteps:    10_000_000,
		},
	}
}

func TestValidateSettings_ValidNone(t *testing.T) {
	if err := ValidateSettings(validSettings()); err != nil {
		t.Errorf("Expected no error for valid none auth, got: %v", err)
	}
}

func TestValidateSettings_ValidNone_EmptyType(t *testing.T) {
	s := validSettings()
	s.Auth.Type = ""
	if err := ValidateSettings(s); err != nil {
		t.Errorf("Expected no error for empty auth type, got: %v", err)
	}
}

func TestValidateSettings_ValidBasic(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{
		Type: AuthTypeBasic,
		Basic: BasicAuthSettings{
			Username: "admin",
			Password: "secret",
		},
	}
	if err := ValidateSettings(s); err != nil {
		t.Errorf("Expected no error for valid basic auth, got: %v", err)
	}
}

func TestValidateSettings_ValidAPIKey(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{
		Type:    AuthTypeAPIKey,
		APIKeys: []string{"key1", "key2"},
	}
	if err := ValidateSettings(s); err != nil {
		t.Errorf("Expected no error for valid apikey auth, got: %v", err)
	}
}

func TestValidateSettings_NoneWithCredentials(t *testing.T) {
	tests := []struct {
		name string
		auth AuthSettings
	}{
		{
			name: "none with username",
			auth: AuthSettings{
				Type:  AuthTypeNone,
				Basic: BasicAuthSettings{Username: "admin"},
			},
		},
		{
			name: "none with password",
			auth: AuthSettings{
				Type:  AuthTypeNone,
				Basic: BasicAuthSettings{Password: "secret"},
			},
		},
		{
			name: "none with api keys",
			auth: AuthSettings{
				Type:    AuthTypeNone,
				APIKeys: []string{"key1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.Auth = tt.auth
			err := ValidateSettings(s)
			if err == nil {
				t.Fatal("Expected error for none with credentials")
			}
			if !strings.Contains(err.Error(), "incompatible") {
				t.Errorf("Expected 'incompatible' in error, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_BasicAuthMissingUsername(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{
		Type: AuthTypeBasic,
		Basic: BasicAuthSettings{
			Password: "secret",
		},
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for basic auth without username")
	}
	if !strings.Contains(err.Error(), "username and password") {
		t.Errorf("Expected 'username and password' in error, got: %v", err)
	}
}

func TestValidateSettings_BasicAuthMissingPassword(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{
		Type: AuthTypeBasic,
		Basic: BasicAuthSettings{
			Username: "admin",
		},
	}
	if err := ValidateSettings(s); err == nil {
		t.Fatal("Expected error for basic auth without password")
	}
}

func TestValidateSettings_BasicAuthWithAPIKeys(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{
		Type: AuthTypeBasic,
		Basic: BasicAuthSettings{
			Username: "admin",
			Password: "secret",
		},
		APIKeys: []string{"key1"},
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for basic + api keys")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("Expected 'mutually exclusive' in error, got: %v", err)
	}
}

func TestValidateSettings_APIKeyMissingKeys(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{Type: AuthTypeAPIKey}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for apikey without keys")
	}
	if !strings.Contains(err.Error(), "requires at least one") {
		t.Errorf("Expected 'requires at least one' in error, got: %v", err)
	}
}

func TestValidateSettings_APIKeyWithBasicCreds(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{
		Type:    AuthTypeAPIKey,
		APIKeys: []string{"key1"},
		Basic: BasicAuthSettings{
			Username: "admin",
		},
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for apikey + basic creds")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("Expected 'mutually exclusive' in error, got: %v", err)
	}
}

func TestValidateSettings_UnknownAuthType(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{Type: "oauth"}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for unknown auth type")
	}
	if !strings.Contains(err.Error(), "unknown auth-type") {
		t.Errorf("Expected 'unknown auth-type' in error, got: %v", err)
	}
}

// --- Transport Validation Tests ---

func TestValidateSettings_ValidTransportStdio(t *testing.T) {
	if err := ValidateSettings(validSettings()); err != nil {
		t.Errorf("Expected no error for valid stdio transport, got: %v", err)
	}
}

func TestValidateSettings_ValidTransportSSE(t *testing.T) {
	s := validSettings()
	s.Transport = "sse"
	if err := ValidateSettings(s); err != nil {
		t.Errorf("Expected no error for valid sse transport, got: %v", err)
	}
}

func TestValidateSettings_InvalidTransport(t *testing.T) {
	tests := []struct {
		name      string
		transport string
	}{
		{"empty transport", ""},
		{"http transport", "http"},
		{"websocket transport", "websocket"},
		{"unknown transport", "foobar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.Transport = tt.transport
			err := ValidateSettings(s)
			if err == nil {
				t.Fatalf("Expected error for transport %q", tt.transport)
			}
			if !strings.Contains(err.Error(), "transport must be") {
				t.Errorf("Expected 'transport must be' in error, got: %v", err)
			}
		})
	}
}

// --- ExplorerSettings Tests ---

func TestLoadSettings_ExplorerDefaults(t *testing.T) {
	_ = os.Unsetenv("SIGHTGLASS_EXPLORER_PROJECT_CAPACITY")
	_ = os.Unsetenv("SIGHTGLASS_EXPLORER_MAX_CHUNK_BYTES")
	_ = os.Unsetenv("SIGHTGLASS_EXPLORER_PEEK_MAX_LINES")
	_ = os.Unsetenv("SIGHTGLASS_EXPLORER_REPL_MAX_STEPS")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Explorer.ProjectCapacity != 5 {
		t.Errorf("Expected project capacity 5, got %d", settings.Explorer.ProjectCapacity)
	}
	if settings.Explorer.MaxChunkBytes != 5000 {
		t.Errorf("Expected max chunk bytes 5000, got %d", settings.Explorer.MaxChunkBytes)
	}
	if settings.Explorer.PeekMaxLines != 100 {
		t.Errorf("Expected peek max lines 100, got %d", settings.Explorer.PeekMaxLines)
	}
	if settings.Explorer.ReplMaxSteps != 10_000_000 {
		t.Errorf("Expected repl max steps 10000000, got %d", settings.Explorer.ReplMaxSteps)
	}
}

func TestLoadSettings_ExplorerEnvVars(t *testing.T) {
	t.Setenv("SIGHTGLASS_EXPLORER_PROJECT_CAPACITY", "3")
	t.Setenv("SIGHTGLASS_EXPLORER_MAX_CHUNK_BYTES", "2000")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Explorer.ProjectCapacity != 3 {
		t.Errorf("Expected project capacity 3, got %d", settings.Explorer.ProjectCapacity)
	}
	if settings.Explorer.MaxChunkBytes != 2000 {
		t.Errorf("Expected max chunk bytes 2000, got %d", settings.Explorer.MaxChunkBytes)
	}
}

func TestValidateSettings_ExplorerInvalidCapacity(t *testing.T) {
	s := validSettings()
	s.Explorer.ProjectCapacity = 0
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for zero project capacity")
	}
	if !strings.Contains(err.Error(), "project-capacity must be positive") {
		t.Errorf("Expected 'project-capacity must be positive' in error, got: %v", err)
	}
}

func TestValidateSettings_ExplorerInvalidChunkBytes(t *testing.T) {
	s := validSettings()
	s.Explorer.MaxChunkBytes = -1
	if err := ValidateSettings(s); err == nil {
		t.Fatal("Expected error for negative max chunk bytes")
	}
}

// --- EvaluatorSettings Tests ---

func TestLoadSettings_EvaluatorDefaults(t *testing.T) {
	_ = os.Unsetenv("SIGHTGLASS_EVALUATOR_ENABLED")
	_ = os.Unsetenv("SIGHTGLASS_EVALUATOR_BASE_URL")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Evaluator.Enabled {
		t.Error("Expected evaluator disabled by default")
	}
	if settings.Evaluator.Timeout != 60*time.Second {
		t.Errorf("Expected timeout 60s, got %v", settings.Evaluator.Timeout)
	}
	if settings.Evaluator.Parallelism != 4 {
		t.Errorf("Expected parallelism 4, got %d", settings.Evaluator.Parallelism)
	}
	if settings.Evaluator.MaxDepth != 2 {
		t.Errorf("Expected max depth 2, got %d", settings.Evaluator.MaxDepth)
	}
}

func TestLoadSettings_EvaluatorEnvVars(t *testing.T) {
	t.Setenv("SIGHTGLASS_EVALUATOR_ENABLED", "true")
	t.Setenv("SIGHTGLASS_EVALUATOR_BASE_URL", "http://localhost:11434/api")
	t.Setenv("SIGHTGLASS_EVALUATOR_MODEL", "qwen2.5-coder")
	t.Setenv("SIGHTGLASS_EVALUATOR_TIMEOUT", "120s")
	t.Setenv("SIGHTGLASS_EVALUATOR_MAX_DEPTH", "3")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if !settings.Evaluator.Enabled {
		t.Error("Expected evaluator enabled")
	}
	if settings.Evaluator.BaseURL != "http://localhost:11434/api" {
		t.Errorf("Expected base URL 'http://localhost:11434/api', got '%s'", settings.Evaluator.BaseURL)
	}
	if settings.Evaluator.Model != "qwen2.5-coder" {
		t.Errorf("Expected model 'qwen2.5-coder', got '%s'", settings.Evaluator.Model)
	}
	if settings.Evaluator.Timeout != 120*time.Second {
		t.Errorf("Expected timeout 120s, got %v", settings.Evaluator.Timeout)
	}
	if settings.Evaluator.MaxDepth != 3 {
		t.Errorf("Expected max depth 3, got %d", settings.Evaluator.MaxDepth)
	}
}

func TestLoadSettingsWithFlags_EvaluatorFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SIGHTGLASS_EVALUATOR_ENABLED", "false")
	t.Setenv("SIGHTGLASS_EVALUATOR_PARALLELISM", "8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("evaluator-enabled", false, "")
	flags.Int("evaluator-parallelism", 0, "")

	_ = flags.Set("evaluator-enabled", "true")
	_ = flags.Set("evaluator-parallelism", "2")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if !settings.Evaluator.Enabled {
		t.Error("Expected flag to override env for enabled")
	}
	if settings.Evaluator.Parallelism != 2 {
		t.Errorf("Expected flag to override env for parallelism, got %d", settings.Evaluator.Parallelism)
	}
}

func TestValidateSettings_EvaluatorDisabled(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{Enabled: false}
	if err := ValidateSettings(s); err != nil {
		t.Errorf("Expected no error for disabled evaluator, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorValid(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		BaseURL:     "http://localhost:11434/api",
		Model:       "qwen2.5-coder",
		Timeout:     60 * time.Second,
		Parallelism: 4,
		MaxDepth:    2,
	}
	if err := ValidateSettings(s); err != nil {
		t.Errorf("Expected no error for valid evaluator config, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorEnabledNoBaseURL(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		Model:       "qwen2.5-coder",
		Timeout:     60 * time.Second,
		Parallelism: 4,
		MaxDepth:    2,
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for enabled evaluator without base URL")
	}
	if !strings.Contains(err.Error(), "evaluator-base-url") {
		t.Errorf("Expected 'evaluator-base-url' in error, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorInvalidBaseURL(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		BaseURL:     "not a url",
		Model:       "qwen2.5-coder",
		Timeout:     60 * time.Second,
		Parallelism: 4,
		MaxDepth:    2,
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for malformed base URL")
	}
	if !strings.Contains(err.Error(), "not a valid URL") {
		t.Errorf("Expected 'not a valid URL' in error, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorEnabledNoModel(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		BaseURL:     "http://localhost:11434/api",
		Timeout:     60 * time.Second,
		Parallelism: 4,
		MaxDepth:    2,
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for enabled evaluator without model")
	}
	if !strings.Contains(err.Error(), "evaluator-model") {
		t.Errorf("Expected 'evaluator-model' in error, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorInvalidTimeout(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		BaseURL:     "http://localhost:11434/api",
		Model:       "qwen2.5-coder",
		Timeout:     0,
		Parallelism: 4,
		MaxDepth:    2,
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for zero timeout")
	}
	if !strings.Contains(err.Error(), "evaluator-timeout must be positive") {
		t.Errorf("Expected 'evaluator-timeout must be positive' in error, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorInvalidParallelism(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		BaseURL:     "http://localhost:11434/api",
		Model:       "qwen2.5-coder",
		Timeout:     60 * time.Second,
		Parallelism: 0,
		MaxDepth:    2,
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for zero parallelism")
	}
	if !strings.Contains(err.Error(), "evaluator-parallelism must be positive") {
		t.Errorf("Expected 'evaluator-parallelism must be positive' in error, got: %v", err)
	}
}

func TestValidateSettings_EvaluatorInvalidMaxDepth(t *testing.T) {
	s := validSettings()
	s.Evaluator = EvaluatorSettings{
		Enabled:     true,
		BaseURL:     "http://localhost:11434/api",
		Model:       "qwen2.5-coder",
		Timeout:     60 * time.Second,
		Parallelism: 4,
		MaxDepth:    0,
	}
	err := ValidateSettings(s)
	if err == nil {
		t.Fatal("Expected error for zero max depth")
	}
	if !strings.Contains(err.Error(), "evaluator-max-depth must be positive") {
		t.Errorf("Expected 'evaluator-max-depth must be positive' in error, got: %v", err)
	}
}
