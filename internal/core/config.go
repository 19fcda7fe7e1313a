package core

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/moviesnap/internal/extractor"
	"github.com/jo-hoe/moviesnap/internal/omdb"
)

const (
	DefaultPort     = 5000
	DefaultLogLevel = "info"
)

// ProviderConfig holds the credentials and endpoint of one vision model API.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`
}

type ExtractorConfig struct {
	Provider     string         `yaml:"provider"`
	MaxTokens    int            `yaml:"maxTokens"`
	MaxImageEdge int            `yaml:"maxImageEdge"`
	Anthropic    ProviderConfig `yaml:"anthropic"`
	Gemini       ProviderConfig `yaml:"gemini"`
}

type MovieDatabaseConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

type ServiceConfig struct {
	Port          int                 `yaml:"port"`
	LogLevel      string              `yaml:"logLevel"`
	HTTPTimeout   time.Duration       `yaml:"httpTimeout"`
	Extractor     ExtractorConfig     `yaml:"extractor"`
	MovieDatabase MovieDatabaseConfig `yaml:"movieDatabase"`
}

// LoadConfig reads the optional YAML file at configPath, applies defaults and lets environment
// variables override both. An empty configPath skips the file.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	config := ServiceConfig{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := applyEnv(&config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyEnv(config *ServiceConfig) error {
	var err error
	if config.Port, err = getEnvAsInt("PORT", config.Port); err != nil {
		return err
	}
	if config.HTTPTimeout, err = getEnvAsDuration("HTTP_TIMEOUT", config.HTTPTimeout); err != nil {
		return err
	}
	if config.Extractor.MaxImageEdge, err = getEnvAsInt("MAX_IMAGE_EDGE", config.Extractor.MaxImageEdge); err != nil {
		return err
	}
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	config.Extractor.Provider = getEnv("EXTRACTOR_PROVIDER", config.Extractor.Provider)
	config.Extractor.Anthropic.APIKey = getEnv("CLAUDE_API_KEY", config.Extractor.Anthropic.APIKey)
	config.Extractor.Anthropic.Model = getEnv("CLAUDE_MODEL", config.Extractor.Anthropic.Model)
	config.Extractor.Anthropic.BaseURL = getEnv("ANTHROPIC_BASE_URL", config.Extractor.Anthropic.BaseURL)
	config.Extractor.Gemini.APIKey = getEnv("GEMINI_API_KEY", config.Extractor.Gemini.APIKey)
	config.Extractor.Gemini.Model = getEnv("GEMINI_MODEL", config.Extractor.Gemini.Model)

	config.MovieDatabase.APIKey = getEnv("OMDB_API_KEY", config.MovieDatabase.APIKey)
	config.MovieDatabase.BaseURL = getEnv("OMDB_BASE_URL", config.MovieDatabase.BaseURL)
	return nil
}

func applyDefaults(config *ServiceConfig) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	config.Extractor.Provider = strings.ToLower(strings.TrimSpace(config.Extractor.Provider))
	if config.Extractor.Provider == "" {
		config.Extractor.Provider = extractor.ProviderAnthropic
	}
	if config.Extractor.MaxTokens == 0 {
		config.Extractor.MaxTokens = extractor.DefaultMaxTokens
	}
	if config.Extractor.Anthropic.Model == "" {
		config.Extractor.Anthropic.Model = extractor.DefaultAnthropicModel
	}
	if config.Extractor.Gemini.Model == "" {
		config.Extractor.Gemini.Model = extractor.DefaultGeminiModel
	}
}

func validateConfig(config *ServiceConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}
	switch config.Extractor.Provider {
	case extractor.ProviderAnthropic, extractor.ProviderGemini:
	default:
		return fmt.Errorf("unknown extractor provider: %s", config.Extractor.Provider)
	}
	if config.Extractor.MaxTokens < 0 {
		return fmt.Errorf("maxTokens must be positive, got %d", config.Extractor.MaxTokens)
	}
	if config.Extractor.MaxImageEdge < 0 {
		return fmt.Errorf("maxImageEdge must not be negative, got %d", config.Extractor.MaxImageEdge)
	}
	if config.HTTPTimeout < 0 {
		return fmt.Errorf("httpTimeout must not be negative, got %s", config.HTTPTimeout)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	return nil
}

// MissingAPIKeys names the environment variables of credentials the configured backends need but
// were not given. Requests fail at call time without them; startup does not.
func (config *ServiceConfig) MissingAPIKeys() []string {
	var missing []string
	switch config.Extractor.Provider {
	case extractor.ProviderGemini:
		if config.Extractor.Gemini.APIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		if config.Extractor.Anthropic.APIKey == "" {
			missing = append(missing, "CLAUDE_API_KEY")
		}
	}
	if config.MovieDatabase.APIKey == "" {
		missing = append(missing, "OMDB_API_KEY")
	}
	return missing
}

// SlogLevel returns the configured log level, info if it does not parse.
func (config *ServiceConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ExtractorSettings returns the settings of the selected vision model backend.
func (config *ServiceConfig) ExtractorSettings() extractor.Config {
	provider := config.Extractor.Anthropic
	if config.Extractor.Provider == extractor.ProviderGemini {
		provider = config.Extractor.Gemini
	}
	return extractor.Config{
		Provider:     config.Extractor.Provider,
		APIKey:       provider.APIKey,
		Model:        provider.Model,
		BaseURL:      provider.BaseURL,
		MaxTokens:    config.Extractor.MaxTokens,
		MaxImageEdge: config.Extractor.MaxImageEdge,
		Timeout:      config.HTTPTimeout,
	}
}

func (config *ServiceConfig) MovieDatabaseSettings() omdb.Config {
	return omdb.Config{
		APIKey:  config.MovieDatabase.APIKey,
		BaseURL: config.MovieDatabase.BaseURL,
		Timeout: config.HTTPTimeout,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
