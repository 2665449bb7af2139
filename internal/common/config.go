package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Upload      UploadConfig      `toml:"upload"`
	Suggest     SuggestConfig     `toml:"suggest"`
	Followup    FollowupConfig    `toml:"followup"`
	Stakeholder StakeholderConfig `toml:"stakeholder"`
	PRD         PRDConfig         `toml:"prd"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
	Claude      ClaudeConfig      `toml:"claude"`
	Gemini      GeminiConfig      `toml:"gemini"`
	LLM         LLMConfig         `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// CatalogConfig contains configuration for the question catalog
type CatalogConfig struct {
	Path string `toml:"path"` // Path to the question catalog JSON file
}

// UploadConfig contains configuration for context file uploads
type UploadConfig struct {
	MaxFileSize int64 `toml:"max_file_size"` // Maximum upload size per file in bytes
}

// SuggestConfig contains tuning knobs for AI answer prefill
type SuggestConfig struct {
	BatchSize         int    `toml:"batch_size"`          // Questions per LLM call
	MaxContextChars   int    `toml:"max_context_chars"`   // Context truncation length
	MaxFeatures       int    `toml:"max_features"`        // Selected features included in prompts
	MaxFeatureDescLen int    `toml:"max_feature_desc"`    // Per-feature description truncation
	MaxRetries        int    `toml:"max_retries"`         // Retries per batch call
	BatchInterval     string `toml:"batch_interval"`      // Minimum spacing between batch calls
	MaxTokensPerBatch int    `toml:"max_tokens_per_call"` // Output token budget per batch
}

// FollowupConfig contains tuning knobs for the follow-up rule engine
type FollowupConfig struct {
	RulesPath    string `toml:"rules_path"`     // Optional TOML rules file overriding built-in tables
	MaxFollowups int    `toml:"max_followups"`  // Cap on keyword-triggered follow-ups
	MaxRelated   int    `toml:"max_related"`    // Cap on related sibling questions
	AIMinChars   int    `toml:"ai_min_chars"`   // Minimum response length before AI follow-ups run
	AIFollowups  bool   `toml:"ai_followups"`   // Enable AI-generated follow-ups
	MaxAIResults int    `toml:"max_ai_results"` // Cap on AI-generated follow-ups
}

// StakeholderConfig contains configuration for stakeholder views
type StakeholderConfig struct {
	ProfilesPath string `toml:"profiles_path"` // Optional TOML file overriding built-in role profiles
}

// PRDConfig contains configuration for PRD generation and versioning
type PRDConfig struct {
	SnapshotRetention int `toml:"snapshot_retention"` // Snapshots kept per project before pruning
}

// MaintenanceConfig contains configuration for scheduled background maintenance
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule for snapshot pruning
}

// ClaudeConfig contains Anthropic Claude API configuration for AI services
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key for Claude operations
	Model       string  `toml:"model"`       // Model for AI operations
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// GeminiConfig contains Google Gemini API configuration for AI services
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "claude" or "gemini" (default: "claude")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in clarity.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Catalog: CatalogConfig{
			Path: "./catalog/questions.json",
		},
		Upload: UploadConfig{
			MaxFileSize: 50 * 1024 * 1024, // 50 MB per file
		},
		Suggest: SuggestConfig{
			BatchSize:         15,
			MaxContextChars:   30000,
			MaxFeatures:       10,
			MaxFeatureDescLen: 200,
			MaxRetries:        2,
			BatchInterval:     "1s",
			MaxTokensPerBatch: 4096,
		},
		Followup: FollowupConfig{
			RulesPath:    "",
			MaxFollowups: 3,
			MaxRelated:   3,
			AIMinChars:   50,
			AIFollowups:  false,
			MaxAIResults: 3,
		},
		Stakeholder: StakeholderConfig{
			ProfilesPath: "",
		},
		PRD: PRDConfig{
			SnapshotRetention: 20,
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "0 3 * * *", // Daily at 03:00
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CLARITY_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CLARITY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CLARITY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("CLARITY_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("CLARITY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CLARITY_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("CLARITY_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Catalog configuration
	if catalogPath := os.Getenv("CLARITY_CATALOG_PATH"); catalogPath != "" {
		config.Catalog.Path = catalogPath
	}

	// Followup rules configuration
	if rulesPath := os.Getenv("CLARITY_FOLLOWUP_RULES_PATH"); rulesPath != "" {
		config.Followup.RulesPath = rulesPath
	}

	// Stakeholder profiles configuration
	if profilesPath := os.Getenv("CLARITY_STAKEHOLDER_PROFILES_PATH"); profilesPath != "" {
		config.Stakeholder.ProfilesPath = profilesPath
	}

	// Suggestion engine configuration
	if batchSize := os.Getenv("CLARITY_SUGGEST_BATCH_SIZE"); batchSize != "" {
		if bs, err := strconv.Atoi(batchSize); err == nil && bs > 0 {
			config.Suggest.BatchSize = bs
		}
	}
	if maxChars := os.Getenv("CLARITY_SUGGEST_MAX_CONTEXT_CHARS"); maxChars != "" {
		if mc, err := strconv.Atoi(maxChars); err == nil && mc > 0 {
			config.Suggest.MaxContextChars = mc
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("CLARITY_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // CLARITY_ prefix takes priority
	}
	if model := os.Getenv("CLARITY_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("CLARITY_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("CLARITY_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}

	// Gemini configuration
	if apiKey := os.Getenv("CLARITY_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("CLARITY_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("CLARITY_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}

	// LLM provider configuration
	if provider := os.Getenv("CLARITY_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Maintenance configuration
	if schedule := os.Getenv("CLARITY_MAINTENANCE_SCHEDULE"); schedule != "" {
		config.Maintenance.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
