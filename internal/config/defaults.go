package config

// Backend identifiers recorded in the index manifest and matched at query time.
const (
	EmbeddingHashing = "hashing"
	EmbeddingONNX    = "onnx"

	VectorMemory = "memory"
	VectorFAISS  = "faiss"

	LexicalOverlap = "overlap"
	LexicalBleve   = "bleve"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Vault.Extensions == nil {
		cfg.Vault.Extensions = []string{".md", ".txt", ".pdf", ".docx"}
	}
	if cfg.Vault.ChunkSize == 0 {
		cfg.Vault.ChunkSize = 800
	}
	if cfg.Vault.ChunkOverlap == 0 {
		cfg.Vault.ChunkOverlap = 200
	}
	if cfg.Storage.NotesPath == "" {
		cfg.Storage.NotesPath = "./data/processed/notes.jsonl"
	}
	if cfg.Storage.ChunksPath == "" {
		cfg.Storage.ChunksPath = "./data/processed/chunks.jsonl"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/notes.db"
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "./data/index"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "./data/index/bleve"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = EmbeddingHashing
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 4096
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MaxChunksPerNote == 0 {
		cfg.Retrieval.MaxChunksPerNote = 2
	}
	if cfg.Retrieval.OverfetchFactor == 0 {
		cfg.Retrieval.OverfetchFactor = 4
	}
	if cfg.Retrieval.RRFK == 0 {
		cfg.Retrieval.RRFK = 60
	}
	if cfg.Retrieval.CharBudget == 0 {
		cfg.Retrieval.CharBudget = 12000
	}
	if cfg.Retrieval.LexicalBackend == "" {
		cfg.Retrieval.LexicalBackend = LexicalOverlap
	}
	if cfg.Retrieval.VectorBackend == "" {
		cfg.Retrieval.VectorBackend = VectorMemory
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "KIOKU_LLM_API_KEY"
	}
	if cfg.LLM.TimeoutSec == 0 {
		cfg.LLM.TimeoutSec = 60
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1200
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.Eval.ValidationPath == "" {
		cfg.Eval.ValidationPath = "./data/validation/validation.jsonl"
	}
	if len(cfg.Eval.KValues) == 0 {
		cfg.Eval.KValues = []int{1, 3, 5, 10}
	}
	if cfg.Eval.MatchLevel == "" {
		cfg.Eval.MatchLevel = "chunk"
	}
	if cfg.Eval.Workers == 0 {
		cfg.Eval.Workers = 1
	}
}
