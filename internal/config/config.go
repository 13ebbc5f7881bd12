// Package config provides configuration loading and structs for scholar.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is built once at
// process start and handed to components by pointer; components never consult
// the environment themselves.
type Config struct {
	Debug     bool            `yaml:"debug"`
	DataDir   string          `yaml:"data_dir"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Vector    VectorConfig    `yaml:"vector"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the locations of the two persisted indexes.
type StorageConfig struct {
	VectorDir        string `yaml:"vector_dir"`
	LexicalIndexPath string `yaml:"lexical_index_path"`
}

// VectorDBPath is the SQLite file holding chunk rows and embeddings.
func (s *StorageConfig) VectorDBPath() string {
	return filepath.Join(s.VectorDir, "vectors.db")
}

// LockPath is the file used to serialize ingestion runs.
func (s *StorageConfig) LockPath() string {
	return filepath.Join(s.VectorDir, ".ingest.lock")
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"` // cohere, onnx, hash
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Dimensions int           `yaml:"dimensions"`
	BatchSize  int           `yaml:"batch_size"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	CacheSize  int           `yaml:"cache_size"`
	// ONNX only.
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
}

// ChunkingConfig holds semantic chunking and window splitting settings.
type ChunkingConfig struct {
	WindowSize           int     `yaml:"window_size"`
	Overlap              int     `yaml:"overlap"`
	BreakpointPercentile float64 `yaml:"breakpoint_percentile"`
	BufferSize           int     `yaml:"buffer_size"`
}

// VectorConfig selects the in-memory search structure over stored embeddings.
type VectorConfig struct {
	IndexType string `yaml:"index_type"` // memory, hnsw
	M         int    `yaml:"hnsw_m"`
	EfSearch  int    `yaml:"hnsw_ef_search"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	DefaultTopK  int           `yaml:"default_top_k"`
	MaxTopK      int           `yaml:"max_top_k"`
	EmbedTimeout time.Duration `yaml:"embed_timeout"`
}

// LLMConfig configures the chat-completion service used by ask.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WatchConfig holds settings for re-ingesting when the data directory changes.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Environment variables read by Load.
const (
	EnvCohereAPIKey = "COHERE_API_KEY"
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvDataDir      = "SCHOLAR_DATA_DIR"
	EnvDebug        = "SCHOLAR_DEBUG"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the config file at path, applies environment overrides
// and defaults, and resolves relative paths against the config file's directory.
// A missing file yields the defaults, with paths relative to the working directory.
func Load(path string) (*Config, error) {
	var cfg Config
	baseDir := "."
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		baseDir = filepath.Dir(path)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ApplyEnv(&cfg, os.Getenv)
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.DataDir = expandPath(cfg.DataDir, baseDir)
	cfg.Storage.VectorDir = expandPath(cfg.Storage.VectorDir, baseDir)
	cfg.Storage.LexicalIndexPath = expandPath(cfg.Storage.LexicalIndexPath, baseDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, baseDir)
	}
	return &cfg, nil
}

// Save writes the config to path. API keys are never written.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.Embedding.APIKey = ""
	out.LLM.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides secrets and a few common settings from getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvCohereAPIKey); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := getenv(EnvGroqAPIKey); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

// Validate reports settings that would make ingestion or retrieval meaningless.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderCohere, ProviderONNX, ProviderHash:
	default:
		return fmt.Errorf("unknown embedding provider %q (supported: cohere, onnx, hash)", c.Embedding.Provider)
	}
	switch c.Vector.IndexType {
	case IndexTypeMemory, IndexTypeHNSW:
	default:
		return fmt.Errorf("unknown vector index type %q (supported: memory, hnsw)", c.Vector.IndexType)
	}
	if c.Chunking.WindowSize <= 0 {
		return fmt.Errorf("chunking.window_size must be positive, got %d", c.Chunking.WindowSize)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.WindowSize {
		return fmt.Errorf("chunking.overlap must be in [0, window_size), got %d", c.Chunking.Overlap)
	}
	if p := c.Chunking.BreakpointPercentile; p <= 0 || p > 100 {
		return fmt.Errorf("chunking.breakpoint_percentile must be in (0, 100], got %g", p)
	}
	return nil
}

// expandPath converts a path to absolute. Relative paths are relative to baseDir.
func expandPath(path string, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	joined := filepath.Join(baseDir, path)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}
