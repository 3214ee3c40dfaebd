// Package main is the kioku CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sorrel/kioku/internal/agent"
	"github.com/sorrel/kioku/internal/cli"
	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/embedding"
	"github.com/sorrel/kioku/internal/eval"
	"github.com/sorrel/kioku/internal/indexer"
	"github.com/sorrel/kioku/internal/lexical"
	"github.com/sorrel/kioku/internal/llm"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/retriever"
	"github.com/sorrel/kioku/internal/server"
	"github.com/sorrel/kioku/internal/store"
	"github.com/sorrel/kioku/internal/vault"
	"github.com/sorrel/kioku/internal/vector"
	"github.com/sorrel/kioku/internal/watcher"
	"github.com/sorrel/kioku/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kioku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kioku serve" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve":
		runServe()
	case "collect":
		runCollect()
	case "build":
		runBuild()
	case "ask":
		runAsk()
	case "search":
		runSearch()
	case "eval":
		runEval()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kioku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// queryArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "kioku ask \"question\" -k 3"
// would otherwise leave -k unparsed.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parseOutputFormat(s string) (cli.OutputFormat, error) {
	switch s {
	case "text", "":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func mustLogger(debug bool) *zap.Logger {
	logger, err := utils.NewLogger(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func runCollect() {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	vaultPath := fs.String("vault", "", "vault directory (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *vaultPath != "" {
		cfg.Vault.Path = *vaultPath
	}
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open note store", zap.Error(err))
	}
	defer st.Close()

	notes, chunks, err := collectVault(context.Background(), cfg, st, logger)
	if err != nil {
		logger.Fatal("Collection failed", zap.Error(err))
	}
	fmt.Printf("Collected %d note(s), %d chunk(s) from %s\n", len(notes), len(chunks), cfg.Vault.Path)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	vaultPath := fs.String("vault", "", "vault directory (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *vaultPath != "" {
		cfg.Vault.Path = *vaultPath
	}
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open note store", zap.Error(err))
	}
	defer st.Close()

	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	defer embedder.Close()
	scorer, err := lexical.New(cfg)
	if err != nil {
		logger.Fatal("Failed to create lexical scorer", zap.Error(err))
	}
	defer scorer.Close()

	stats, err := buildIndex(context.Background(), cfg, st, embedder, scorer, logger)
	if err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}
	fmt.Printf("Indexed %d chunk(s) (%d dims, %s backend) in %s\n",
		stats.Chunks, stats.Dimensions, stats.Backend, stats.Elapsed.Round(time.Millisecond))
}

// collectVault walks the vault, persists notes and chunks to the store, and
// writes the JSONL snapshots.
func collectVault(ctx context.Context, cfg *config.Config, st *store.SQLiteStore, logger *zap.Logger) ([]models.Note, []models.Chunk, error) {
	collector := vault.New(&cfg.Vault, vault.WithLogger(logger))
	notes, chunks, err := collector.Collect()
	if err != nil {
		return nil, nil, err
	}
	byNote := make(map[string][]models.Chunk, len(notes))
	for _, c := range chunks {
		byNote[c.NoteID] = append(byNote[c.NoteID], c)
	}
	for i := range notes {
		if err := st.UpsertNote(ctx, &notes[i]); err != nil {
			return nil, nil, fmt.Errorf("persist note %s: %w", notes[i].ID, err)
		}
		if err := st.ReplaceChunks(ctx, notes[i].ID, byNote[notes[i].ID]); err != nil {
			return nil, nil, fmt.Errorf("persist chunks of %s: %w", notes[i].ID, err)
		}
	}
	if err := store.WriteNotesJSONL(cfg.Storage.NotesPath, notes); err != nil {
		return nil, nil, err
	}
	if err := store.WriteChunksJSONL(cfg.Storage.ChunksPath, chunks); err != nil {
		return nil, nil, err
	}
	logger.Info("vault collected",
		zap.Int("notes", len(notes)),
		zap.Int("chunks", len(chunks)))
	return notes, chunks, nil
}

// buildIndex runs the full pipeline: collect, persist, embed, publish.
func buildIndex(ctx context.Context, cfg *config.Config, st *store.SQLiteStore, embedder embedding.Embedder, scorer lexical.Scorer, logger *zap.Logger) (*indexer.Stats, error) {
	_, chunks, err := collectVault(ctx, cfg, st, logger)
	if err != nil {
		return nil, err
	}
	builder := indexer.New(embedder, scorer, cfg, indexer.WithLogger(logger))
	return builder.Build(ctx, chunks)
}

// components holds the initialized query path.
type components struct {
	store     *store.SQLiteStore
	embedder  embedding.Embedder
	scorer    lexical.Scorer
	index     *swappableIndex
	retriever *retriever.Retriever
	agent     *agent.Agent
}

func (c *components) Close() {
	if c.store != nil {
		_ = c.store.Close()
	}
	if c.embedder != nil {
		_ = c.embedder.Close()
	}
	if c.scorer != nil {
		_ = c.scorer.Close()
	}
	if c.index != nil {
		_ = c.index.Close()
	}
}

// initComponents opens the query path against the published index. withLLM
// controls whether a completion client is attempted; without one (or when the
// API key is missing) answers degrade to extractive mode.
func initComponents(cfg *config.Config, logger *zap.Logger, withLLM bool) (*components, error) {
	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open note store: %w", err)
	}
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	scorer, err := lexical.New(cfg)
	if err != nil {
		_ = embedder.Close()
		_ = st.Close()
		return nil, fmt.Errorf("failed to create lexical scorer: %w", err)
	}

	c := &components{store: st, embedder: embedder, scorer: scorer}
	c.index = &swappableIndex{}
	if err := c.index.Reload(cfg.Storage.IndexDir, embedder.Name(), embedder.Dimensions()); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open index (run \"kioku build\" first): %w", err)
	}

	// The overlap scorer is in-memory and must be refilled from the store;
	// the bleve backend persists on disk.
	if scorer.Backend() == config.LexicalOverlap {
		chunks, err := st.ListChunks(context.Background())
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load chunks: %w", err)
		}
		if err := scorer.Index(context.Background(), chunks); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to fill lexical scorer: %w", err)
		}
	}

	c.retriever = retriever.New(embedder, c.index, scorer, &cfg.Retrieval, retriever.WithLogger(logger))

	var client llm.Client
	if withLLM {
		openaiClient, err := llm.NewOpenAIClient(&cfg.LLM)
		if err != nil {
			logger.Warn("completion client unavailable, answers will be extractive", zap.Error(err))
		} else {
			client = openaiClient
		}
	}
	c.agent = agent.New(c.retriever, st, client, &cfg.Retrieval, agent.WithLogger(logger))
	return c, nil
}

// swappableIndex lets the serving process replace the vector index after a
// rebuild without tearing down the retriever.
type swappableIndex struct {
	mu  sync.RWMutex
	idx vector.Index
}

func (s *swappableIndex) Reload(dir, embedderName string, dimensions int) error {
	idx, _, err := vector.Open(dir, embedderName, dimensions)
	if err != nil {
		return err
	}
	s.mu.Lock()
	old := s.idx
	s.idx = idx
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (s *swappableIndex) current() vector.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

func (s *swappableIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	return s.current().Add(ctx, ids, vectors)
}

func (s *swappableIndex) Search(ctx context.Context, query []float32, k int) ([]*vector.Result, error) {
	return s.current().Search(ctx, query, k)
}

func (s *swappableIndex) Save(path string) error { return s.current().Save(path) }
func (s *swappableIndex) Load(path string) error { return s.current().Load(path) }
func (s *swappableIndex) Size() int              { return s.current().Size() }
func (s *swappableIndex) Dimensions() int        { return s.current().Dimensions() }
func (s *swappableIndex) Backend() string        { return s.current().Backend() }

func (s *swappableIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return nil
	}
	err := s.idx.Close()
	s.idx = nil
	return err
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger := mustLogger(debugMode)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	// Build the index on first run so a fresh vault serves immediately.
	if _, err := vector.ReadManifest(cfg.Storage.IndexDir); err != nil {
		logger.Info("no published index, building", zap.String("dir", cfg.Storage.IndexDir))
		st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to open note store", zap.Error(err))
		}
		embedder, err := embedding.New(&cfg.Embedding)
		if err != nil {
			logger.Fatal("Failed to create embedder", zap.Error(err))
		}
		scorer, err := lexical.New(cfg)
		if err != nil {
			logger.Fatal("Failed to create lexical scorer", zap.Error(err))
		}
		if _, err := buildIndex(context.Background(), cfg, st, embedder, scorer, logger); err != nil {
			logger.Fatal("Initial index build failed", zap.Error(err))
		}
		_ = scorer.Close()
		_ = embedder.Close()
		_ = st.Close()
	}

	comps, err := initComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	rebuild := func(ctx context.Context) (*indexer.Stats, error) {
		stats, err := buildIndex(ctx, cfg, comps.store, comps.embedder, comps.scorer, logger)
		if err != nil {
			return nil, err
		}
		if err := comps.index.Reload(cfg.Storage.IndexDir, comps.embedder.Name(), comps.embedder.Dimensions()); err != nil {
			return nil, fmt.Errorf("reload index: %w", err)
		}
		return stats, nil
	}

	srv := server.NewServer(comps.agent, comps.store, cfg, logger, server.WithRebuild(rebuild))

	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watch := watcher.New(cfg.Vault.Path, cfg.Vault.Extensions, srv.MarkStale, srv.MarkStale, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watch.Start(watchCtx); err != nil {
		logger.Warn("vault watcher disabled", zap.Error(err))
	} else {
		defer watch.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAsk() {
	args := queryArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = answer locally)")
	k := fs.Int("k", 0, "number of chunks to retrieve (default from config)")
	noLLM := fs.Bool("no-llm", false, "skip generation, return extractive answer")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kioku ask [flags] <question>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	question := buildQuery(fs.Args())
	if question == "" {
		fs.Usage()
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response *models.AskResponse
	if *serverURL != "" {
		response, err = askViaHTTP(*serverURL, &models.AskRequest{Question: question, K: *k})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger := mustLogger(cfg.Debug)
		defer logger.Sync()
		comps, err := initComponents(cfg, logger, !*noLLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer comps.Close()
		response, err = comps.agent.Ask(context.Background(), question, *k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteAnswer(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSearch() {
	args := queryArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = search locally)")
	k := fs.Int("k", 0, "number of chunks to retrieve (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kioku search [flags] <query>\n\n")
		fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	query := buildQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, &models.SearchRequest{Query: query, K: *k})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger := mustLogger(cfg.Debug)
		defer logger.Sync()
		comps, err := initComponents(cfg, logger, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer comps.Close()
		start := time.Now()
		blocks, lexicalOnly, err := comps.agent.Search(context.Background(), query, *k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		response = &models.SearchResponse{
			Query:       query,
			Results:     blocks,
			QueryTimeMS: time.Since(start).Milliseconds(),
			LexicalOnly: lexicalOnly,
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runEval() {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	validationPath := fs.String("validation", "", "validation JSONL path (overrides config)")
	judge := fs.Bool("judge", false, "judge answer quality with the completion service")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *validationPath != "" {
		cfg.Eval.ValidationPath = *validationPath
	}
	if *judge {
		cfg.Eval.Judge = true
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := mustLogger(cfg.Debug)
	defer logger.Sync()

	examples, err := eval.LoadValidation(cfg.Eval.ValidationPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load validation set: %v\n", err)
		os.Exit(1)
	}

	comps, err := initComponents(cfg, logger, cfg.Eval.Judge)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	opts := []eval.Option{eval.WithLogger(logger)}
	if cfg.Eval.Judge {
		client, err := llm.NewOpenAIClient(&cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Judge requires a completion service: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts,
			eval.WithAnswerer(comps.agent),
			eval.WithJudge(eval.NewLLMJudge(client)))
	}
	evaluator := eval.New(comps.retriever, &cfg.Eval, opts...)
	report, err := evaluator.Run(context.Background(), examples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Evaluation failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteEvalReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusResponse is the shape of GET /api/v1/status, shared by the HTTP and
// direct modes.
type statusResponse struct {
	Notes          int64                  `json:"notes"`
	Chunks         int64                  `json:"chunks"`
	IndexStale     bool                   `json:"index_stale"`
	PendingChanges int64                  `json:"pending_changes"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Index          *statusIndex           `json:"index,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

type statusIndex struct {
	Backend    string    `json:"backend"`
	Embedder   string    `json:"embedder"`
	Dimensions int       `json:"dimensions"`
	Vectors    int       `json:"vectors"`
	BuiltAt    time.Time `json:"built_at"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read local storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open note store: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		ctx := context.Background()
		noteCount, err := st.CountNotes(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count notes failed: %v\n", err)
			os.Exit(1)
		}
		chunkCount, err := st.CountChunks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Notes: noteCount, Chunks: chunkCount}
		if m, err := vector.ReadManifest(cfg.Storage.IndexDir); err == nil {
			status.Index = &statusIndex{
				Backend:    m.Backend,
				Embedder:   m.Embedder,
				Dimensions: m.Dimensions,
				Vectors:    m.Count,
				BuiltAt:    m.BuiltAt,
			}
		}
		diskBytes, err := store.DiskUsageBytes(
			cfg.Storage.DatabasePath, cfg.Storage.IndexDir, cfg.Storage.BleveIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("notes:             %d\n", status.Notes)
		fmt.Printf("chunks:            %d\n", status.Chunks)
		if status.PendingChanges > 0 {
			fmt.Printf("pending_changes:   %d   # vault edits since last build\n", status.PendingChanges)
		}
		if status.Index != nil {
			fmt.Printf("index_vectors:     %d\n", status.Index.Vectors)
			fmt.Printf("index_backend:     %s\n", status.Index.Backend)
			fmt.Printf("index_embedder:    %s (%d dims)\n", status.Index.Embedder, status.Index.Dimensions)
			fmt.Printf("index_built_at:    %s\n", status.Index.BuiltAt.Format(time.RFC3339))
		} else {
			fmt.Println("index:             not built")
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:  %d\n", *status.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, req *models.AskRequest) (*models.AskResponse, error) {
	var response models.AskResponse
	if err := postJSON(serverURL+"/api/v1/ask", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func searchViaHTTP(serverURL string, req *models.SearchRequest) (*models.SearchResponse, error) {
	var response models.SearchResponse
	if err := postJSON(serverURL+"/api/v1/search", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func postJSON(url string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Println(`kioku - retrieval and answer assembly over a Markdown note vault

Usage:
  kioku serve [flags]             Start the HTTP server (watches the vault)
  kioku collect [flags]           Collect notes and chunks from the vault
  kioku build [flags]             Collect and build the retrieval indexes
  kioku ask [flags] <question>    Answer a question from the vault
  kioku search [flags] <query>    Retrieve chunks without generating
  kioku eval [flags]              Evaluate retrieval against a validation set
  kioku status [flags]            Show store and index status
  kioku version                   Show version
  kioku help                      Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/kioku/config.yaml)
  --debug            Enable debug logging

Collect/Build Flags:
  --config string    Config file path
  --vault string     Vault directory (overrides config)

Ask Flags:
  --config string    Config file path
  --server string    Server URL (empty = answer locally)
  --k int            Number of chunks to retrieve (default from config)
  --no-llm           Skip generation, return extractive answer
  --output string    Output format: text or json (default: text)

Search Flags:
  --config string    Config file path
  --server string    Server URL (empty = search locally)
  --k int            Number of chunks to retrieve (default from config)
  --output string    Output format: text or json (default: text)

Eval Flags:
  --config string      Config file path
  --validation string  Validation JSONL path (overrides config)
  --judge              Judge answer quality with the completion service
  --output string      Output format: text or json (default: text)

Status Flags:
  --config string    Config file path
  --server string    Server URL (empty = read local storage)
  --output string    Output format: text or json (default: text)

Examples:
  kioku build --vault ~/notes
  kioku ask "how do goroutines differ from threads?"
  kioku search --k 10 goroutine scheduling
  kioku serve
  kioku eval --validation data/validation.jsonl
  kioku status --output json`)
}
