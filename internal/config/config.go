package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"quizrag/internal/chunker"
	"quizrag/internal/embedding/hashing"
	"quizrag/internal/generator"
	"quizrag/internal/indexstore"
	"quizrag/internal/summarizer"
)

// DocumentsConfig locates the PDFs the index is built from.
type DocumentsConfig struct {
	Dir     string `yaml:"dir" validate:"required"`
	Pattern string `yaml:"pattern" validate:"required"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type       string `yaml:"type" validate:"oneof=sentence"`
	TargetSize int    `yaml:"target_size" validate:"gt=0"`
}

// HashingEmbedderConfig configures the local feature-hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension" validate:"gt=0"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	APIKeyEnv   string `yaml:"api_key_env" validate:"required"`
	Model       string `yaml:"model" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
	MaxRetries  int    `yaml:"max_retries" validate:"gte=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type" validate:"oneof=hashing openai"`
	BatchSize int                   `yaml:"batch_size" validate:"gt=0"`
	Hashing   HashingEmbedderConfig `yaml:"hashing"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// IndexConfig names the two persisted artifacts.
type IndexConfig struct {
	Path         string `yaml:"path" validate:"required"`
	MetadataPath string `yaml:"metadata_path" validate:"required,nefield=Path"`
}

type RetrieverConfig struct {
	TopK int `yaml:"top_k" validate:"gt=0"`
}

// GeneratorConfig configures the chat model used for quizzes and explanations.
type GeneratorConfig struct {
	BaseURL        string   `yaml:"base_url" validate:"required,url"`
	APIKeyEnv      string   `yaml:"api_key_env" validate:"required"`
	PreferredModel string   `yaml:"preferred_model" validate:"required"`
	FallbackModels []string `yaml:"fallback_models" validate:"dive,required"`
	TimeoutSecs    int      `yaml:"timeout_secs" validate:"gte=0"`
	Temperature    float32  `yaml:"temperature" validate:"gte=0,lte=2"`
	// MaxPromptTokens warns when a prompt is larger; 0 disables the check.
	MaxPromptTokens int `yaml:"max_prompt_tokens" validate:"gte=0"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type" validate:"oneof=frequency"`
	MaxSentences int    `yaml:"max_sentences" validate:"gt=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Documents  DocumentsConfig  `yaml:"documents"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Index      IndexConfig      `yaml:"index"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// Environment variables that override values from the file.
const (
	EnvIndexPath    = "QUIZRAG_INDEX_PATH"
	EnvMetadataPath = "QUIZRAG_METADATA_PATH"
	EnvDocsDir      = "QUIZRAG_DOCS_DIR"
	EnvLogLevel     = "QUIZRAG_LOG_LEVEL"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied and the result is validated either way.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		cfg = &AppConfig{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		applyConfigDefaults(cfg)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/quizrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/quizrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the struct tags and reports every failing field.
func (c *AppConfig) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", strings.TrimPrefix(e.Namespace(), "AppConfig."), e.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// RequireAPIKey returns the value of the named environment variable or an error naming it.
func RequireAPIKey(envName string) (string, error) {
	key := strings.TrimSpace(os.Getenv(envName))
	if key == "" {
		return "", fmt.Errorf("missing API key: set %s in the environment or a .env file", envName)
	}
	return key, nil
}

// GeneratorTimeout is zero when no timeout is configured.
func (c *AppConfig) GeneratorTimeout() time.Duration {
	return time.Duration(c.Generator.TimeoutSecs) * time.Second
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "quizrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Documents.Dir == "" {
		cfg.Documents.Dir = "."
	}
	if cfg.Documents.Pattern == "" {
		cfg.Documents.Pattern = indexstore.DefaultPattern
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "sentence"
	}
	if cfg.Chunker.TargetSize == 0 {
		cfg.Chunker.TargetSize = chunker.DefaultTargetSize
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = indexstore.DefaultBatchSize
	}
	if cfg.Embedder.Hashing.Dimension == 0 {
		cfg.Embedder.Hashing.Dimension = hashing.DefaultDimension
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI == nil {
		cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
	}
	if o := cfg.Embedder.OpenAI; o != nil {
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = indexstore.DefaultIndexPath
	}
	if cfg.Index.MetadataPath == "" {
		cfg.Index.MetadataPath = indexstore.DefaultMetadataPath
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 3
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = generator.DefaultBaseURL
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = generator.DefaultAPIKeyEnv
	}
	if cfg.Generator.PreferredModel == "" {
		cfg.Generator.PreferredModel = generator.DefaultModel
	}
	if cfg.Generator.FallbackModels == nil {
		cfg.Generator.FallbackModels = append([]string(nil), generator.DefaultFallbackModels...)
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = summarizer.DefaultMaxSentences
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv(EnvIndexPath); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv(EnvMetadataPath); v != "" {
		cfg.Index.MetadataPath = v
	}
	if v := os.Getenv(EnvDocsDir); v != "" {
		cfg.Documents.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}
