package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Backend != EmbeddingHashing {
		t.Errorf("default embedding backend = %q", cfg.Embedding.Backend)
	}
	if cfg.Embedding.Dimensions != 4096 {
		t.Errorf("default dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.RRFK != 60 {
		t.Errorf("default rrf_k = %d, want 60", cfg.Retrieval.RRFK)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.MaxChunksPerNote != 2 {
		t.Errorf("retrieval defaults = %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.OverfetchFactor != 4 {
		t.Errorf("default overfetch = %d", cfg.Retrieval.OverfetchFactor)
	}
	if cfg.Retrieval.CharBudget != 12000 {
		t.Errorf("default char budget = %d", cfg.Retrieval.CharBudget)
	}
	if cfg.LLM.TimeoutSec != 60 || cfg.LLM.MaxTokens != 1200 {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
	if len(cfg.Eval.KValues) == 0 {
		t.Error("eval k values should have a default")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Retrieval.RRFK = 10
	cfg.Retrieval.TopK = 20
	ApplyDefaults(cfg)
	if cfg.Retrieval.RRFK != 10 || cfg.Retrieval.TopK != 20 {
		t.Errorf("explicit values overwritten: %+v", cfg.Retrieval)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
debug: true
server:
  port: 9999
retrieval:
  top_k: 7
  rrf_k: 30
storage:
  chunks_path: ./chunks.jsonl
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not parsed")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Retrieval.TopK != 7 || cfg.Retrieval.RRFK != 30 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Storage.ChunksPath != filepath.Join(dir, "chunks.jsonl") {
		t.Errorf("chunks path not expanded relative to config dir: %s", cfg.Storage.ChunksPath)
	}
	// defaults still applied for unset fields
	if cfg.Retrieval.MaxChunksPerNote != 2 {
		t.Errorf("max_chunks_per_note default missing: %d", cfg.Retrieval.MaxChunksPerNote)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
