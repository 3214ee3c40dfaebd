// Package config provides configuration loading and structs for kioku.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Vault     VaultConfig     `yaml:"vault"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Eval      EvalConfig      `yaml:"eval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// VaultConfig holds note collection settings.
type VaultConfig struct {
	Path         string   `yaml:"path"`
	Extensions   []string `yaml:"extensions"`
	ChunkSize    int      `yaml:"chunk_size"`    // words per chunk
	ChunkOverlap int      `yaml:"chunk_overlap"` // overlapping words between chunks
}

// StorageConfig holds paths for the note store and index artifacts.
type StorageConfig struct {
	NotesPath      string `yaml:"notes_path"`
	ChunksPath     string `yaml:"chunks_path"`
	DatabasePath   string `yaml:"database_path"`
	IndexDir       string `yaml:"index_dir"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// EmbeddingConfig selects and parameterizes the embedding backend.
type EmbeddingConfig struct {
	// Backend is "hashing" (default, fully local and deterministic) or
	// "onnx" (learned sentence embeddings, requires CGO and a model file).
	Backend    string `yaml:"backend"`
	Dimensions int    `yaml:"dimensions"`
	ModelPath  string `yaml:"model_path"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds hybrid retrieval tunables.
type RetrievalConfig struct {
	TopK             int     `yaml:"top_k"`
	MaxChunksPerNote int     `yaml:"max_chunks_per_note"`
	OverfetchFactor  int     `yaml:"overfetch_factor"`
	RRFK             int     `yaml:"rrf_k"`
	CharBudget       int     `yaml:"char_budget"`
	// LexicalBackend is "overlap" (default, in-memory term overlap) or
	// "bleve" (persistent keyword index).
	LexicalBackend string `yaml:"lexical_backend"`
	// VectorBackend is "memory" (default, exact brute force) or "faiss"
	// (approximate, requires the faiss build tag).
	VectorBackend string `yaml:"vector_backend"`
}

// LLMConfig holds completion-service settings.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// EvalConfig holds evaluation settings.
type EvalConfig struct {
	ValidationPath string `yaml:"validation_path"`
	KValues        []int  `yaml:"k_values"`
	// MatchLevel is "chunk" or "note".
	MatchLevel string `yaml:"match_level"`
	// Workers is the number of concurrent examples; 1 disables parallelism.
	Workers int `yaml:"workers"`
	Judge   bool `yaml:"judge"`
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
	cfg.Vault.Path = expandPath(cfg.Vault.Path, configDir)
	cfg.Storage.NotesPath = expandPath(cfg.Storage.NotesPath, configDir)
	cfg.Storage.ChunksPath = expandPath(cfg.Storage.ChunksPath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexDir = expandPath(cfg.Storage.IndexDir, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Eval.ValidationPath = expandPath(cfg.Eval.ValidationPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
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
