package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the stylist API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Quota     QuotaConfig     `yaml:"quota"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Replicate ReplicateConfig `yaml:"replicate"`
	Search    SearchConfig    `yaml:"search"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds session verification settings.
type AuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	CookieName   string `yaml:"cookie_name"`
	DevBypass    bool   `yaml:"dev_bypass"`
	DevBypassUID string `yaml:"dev_bypass_user"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// QuotaConfig holds per-user search quota settings.
type QuotaConfig struct {
	SearchLimit int64 `yaml:"search_limit"`
	WindowSec   int   `yaml:"window_sec"`
	HistorySize int   `yaml:"history_size"`
}

// OpenAIConfig holds chat/vision and image generation settings.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	ImageModel string `yaml:"image_model"`
	MaxTokens  int    `yaml:"max_tokens"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// ReplicateConfig holds image prediction settings.
type ReplicateConfig struct {
	APIToken        string `yaml:"api_token"`
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	PollIntervalMs  int    `yaml:"poll_interval_ms"`
	MaxPollAttempts int    `yaml:"max_poll_attempts"`
	PlaceholderPath string `yaml:"placeholder_path"`
}

// SearchConfig holds shopping search settings.
type SearchConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Location     string `yaml:"location"`
	PageSize     int    `yaml:"page_size"`
	BatchSize    int    `yaml:"batch_size"`
	BatchDelayMs int    `yaml:"batch_delay_ms"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// UploadsConfig holds multipart upload settings.
type UploadsConfig struct {
	Dir          string `yaml:"dir"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
	MaxDimension int    `yaml:"max_dimension"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "stylist:"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "session"
	}
	if c.Auth.DevBypassUID == "" {
		c.Auth.DevBypassUID = "dev@localhost"
	}
	if c.Quota.SearchLimit <= 0 {
		c.Quota.SearchLimit = 5
	}
	if c.Quota.WindowSec <= 0 {
		c.Quota.WindowSec = 3600
	}
	if c.Quota.HistorySize <= 0 {
		c.Quota.HistorySize = 100
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.ImageModel == "" {
		c.OpenAI.ImageModel = "dall-e-2"
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = 800
	}
	if c.OpenAI.TimeoutSec <= 0 {
		c.OpenAI.TimeoutSec = 60
	}
	if c.Replicate.BaseURL == "" {
		c.Replicate.BaseURL = "https://api.replicate.com/v1"
	}
	if c.Replicate.Model == "" {
		c.Replicate.Model = "black-forest-labs/flux-pro"
	}
	if c.Replicate.PollIntervalMs <= 0 {
		c.Replicate.PollIntervalMs = 1000
	}
	if c.Replicate.MaxPollAttempts <= 0 {
		c.Replicate.MaxPollAttempts = 60
	}
	if c.Replicate.PlaceholderPath == "" {
		c.Replicate.PlaceholderPath = "/images/placeholder.png"
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://google.serper.dev"
	}
	if c.Search.Location == "" {
		c.Search.Location = "United States"
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if c.Search.BatchSize <= 0 {
		c.Search.BatchSize = 3
	}
	if c.Search.BatchDelayMs <= 0 {
		c.Search.BatchDelayMs = 1000
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 15
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = filepath.Join(os.TempDir(), "stylist_uploads")
	}
	if c.Uploads.MaxFileBytes <= 0 {
		c.Uploads.MaxFileBytes = 10 << 20
	}
	if c.Uploads.MaxDimension <= 0 {
		c.Uploads.MaxDimension = 256
	}
}

// Validate checks the configuration for correctness.
// Provider credentials are not required here: a missing key fails the
// dependent operation at call time.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver redis")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"memory\", got %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" && !c.Auth.DevBypass {
		return fmt.Errorf("auth.jwt_secret is required unless auth.dev_bypass is set")
	}
	if c.Quota.SearchLimit <= 0 {
		return fmt.Errorf("quota.search_limit must be positive, got %d", c.Quota.SearchLimit)
	}
	if c.Search.BatchSize <= 0 {
		return fmt.Errorf("search.batch_size must be positive, got %d", c.Search.BatchSize)
	}
	if c.Replicate.MaxPollAttempts <= 0 {
		return fmt.Errorf("replicate.max_poll_attempts must be positive, got %d", c.Replicate.MaxPollAttempts)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
