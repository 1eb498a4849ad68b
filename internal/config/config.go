// Package config provides configuration loading and structs for the localrag pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool            `yaml:"debug"`
	Storage    StorageConfig   `yaml:"storage"`
	Chunking   ChunkingConfig  `yaml:"chunking"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
	Retrieval  RetrievalConfig `yaml:"retrieval"`
	QueryCache CacheConfig     `yaml:"query_cache"`
	Retry      RetryConfig     `yaml:"retry"`
	Watch      WatchConfig     `yaml:"watch"`
}

// StorageConfig holds the vector snapshot path.
type StorageConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// ChunkingConfig holds document chunking settings.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	// ChunkOverlap is how many characters consecutive chunks share.
	ChunkOverlap int `yaml:"chunk_overlap"`
	// BoundaryTolerance is how far a chunk end may move back to land on a
	// sentence or word boundary.
	BoundaryTolerance int `yaml:"boundary_tolerance"`
	// KeywordsPerChunk caps the keyword terms extracted per chunk; zero
	// disables extraction.
	KeywordsPerChunk int `yaml:"keywords_per_chunk"`
}

// EmbeddingConfig holds embedding backend settings.
type EmbeddingConfig struct {
	// Backend selects the embedder: onnx, openai, or mock.
	Backend    string `yaml:"backend"`
	ModelPath  string `yaml:"model_path"`
	ModelName  string `yaml:"model_name"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	BatchSize  int    `yaml:"batch_size"`
	Workers    int    `yaml:"workers"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds query-time defaults.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	OverlapFraction     float64 `yaml:"overlap_fraction"`
	// CandidateMultiplier controls vector store over-querying: raw hits
	// fetched = top_k * candidate_multiplier.
	CandidateMultiplier int `yaml:"candidate_multiplier"`
}

// CacheConfig holds query result cache settings.
type CacheConfig struct {
	Enabled    *bool         `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// EnabledOrDefault returns whether the cache is on; defaults to true when unset.
func (c *CacheConfig) EnabledOrDefault() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return true
}

// RetryConfig holds the embedding retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// WatchConfig holds directory watch settings for the ingest watcher.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.SnapshotPath = expandPath(cfg.Storage.SnapshotPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
