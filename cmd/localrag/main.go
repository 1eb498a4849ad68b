// Package main is the localrag CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/debarghya18/localrag/internal/cache"
	"github.com/debarghya18/localrag/internal/cli"
	"github.com/debarghya18/localrag/internal/config"
	"github.com/debarghya18/localrag/internal/embedding"
	"github.com/debarghya18/localrag/internal/fileid"
	"github.com/debarghya18/localrag/internal/indexer"
	"github.com/debarghya18/localrag/internal/keyword"
	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/internal/search"
	"github.com/debarghya18/localrag/internal/session"
	"github.com/debarghya18/localrag/internal/storage"
	"github.com/debarghya18/localrag/internal/vector"
	"github.com/debarghya18/localrag/internal/watcher"
	"github.com/debarghya18/localrag/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/localrag/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "localrag watch" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
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
	// OPENAI_API_KEY for the openai backend may live in a local .env.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "ingest":
		runIngest()
	case "query":
		runQuery()
	case "remove":
		runRemove()
	case "status":
		runStatus()
	case "chat":
		runChat()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("localrag version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, builds the logger, and initializes components. It is the
// shared preamble of every subcommand.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if debugMode {
		logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	}
	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: localrag ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	if info.IsDir() {
		indexed := 0
		walkErr := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if !matchExtension(p, cfg.Watch.Extensions) {
				return nil
			}
			if ingestFile(ctx, components.Pipeline, p) {
				indexed++
			} else {
				failed++
			}
			return nil
		})
		if walkErr != nil {
			fmt.Fprintf(os.Stderr, "Walking directory failed: %v\n", walkErr)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d file(s) from %s\n", indexed, path)
	} else {
		// Single file: no extension filter.
		if !ingestFile(ctx, components.Pipeline, path) {
			failed++
		}
	}

	saveSnapshot(components, cfg, logger)
	if failed > 0 {
		os.Exit(1)
	}
}

// ingestFile reads one file, runs it through the pipeline, and streams stage
// transitions to stdout. Reports whether the document reached the indexed stage.
func ingestFile(ctx context.Context, pipeline *indexer.Pipeline, path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}
	docID := fileid.FileDocID(absPath)
	// Chunk spans index this normalized text, not the raw file bytes.
	updates, err := pipeline.Process(ctx, docID, indexer.Preprocess(string(data)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}
	final := cli.WriteStatusUpdates(os.Stdout, updates)
	return final.Stage == models.StageIndexed
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("top-k", 0, "number of chunks to retrieve (default from config)")
	threshold := fs.Float64("threshold", -2, "minimum cosine similarity in [-1, 1] (default from config)")
	overlap := fs.Float64("overlap-fraction", 0, "chunk overlap dedup fraction in [0, 1] (default from config)")
	scope := fs.String("scope", "", "comma-separated document IDs to search (empty = all)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: localrag query [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryStr == "" {
		fmt.Println("Usage: localrag query [flags] <query>")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	req := &models.QueryRequest{
		Query:               queryStr,
		TopK:                *topK,
		SimilarityThreshold: *threshold,
		OverlapFraction:     *overlap,
	}
	if req.TopK == 0 {
		req.TopK = cfg.Retrieval.TopK
	}
	if req.SimilarityThreshold == -2 {
		req.SimilarityThreshold = cfg.Retrieval.SimilarityThreshold
	}
	if req.OverlapFraction == 0 {
		req.OverlapFraction = cfg.Retrieval.OverlapFraction
	}
	if *scope != "" {
		for _, id := range strings.Split(*scope, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.Scope = append(req.Scope, id)
			}
		}
	}

	result, err := components.Engine.Query(context.Background(), req)
	if err != nil {
		if errors.Is(err, models.ErrNoRelevantContext) {
			fmt.Println("No relevant context found. Try lowering --threshold or widening --scope.")
			return
		}
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRetrievalResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: localrag remove [flags] <document-id-or-file>")
		os.Exit(1)
	}
	arg := fs.Arg(0)

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	// A path that exists on disk is resolved to its document ID, so files can
	// be removed by the same name they were ingested under.
	docID := arg
	if _, err := os.Stat(arg); err == nil {
		if absPath, absErr := filepath.Abs(arg); absErr == nil {
			docID = fileid.FileDocID(absPath)
		}
	}

	if err := components.Pipeline.Remove(context.Background(), docID); err != nil {
		fmt.Fprintf(os.Stderr, "Removal failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document removed: %s\n", docID)
	saveSnapshot(components, cfg, logger)
}

// statusResponse is the shape of the status command output.
type statusResponse struct {
	Documents      int              `json:"documents"`
	Chunks         int              `json:"chunks"`
	Dimensions     int              `json:"dimensions"`
	Model          embedding.Status `json:"model"`
	SnapshotPath   string           `json:"snapshot_path,omitempty"`
	DiskUsageBytes *int64           `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	stats := components.Engine.Stats()
	status := statusResponse{
		Documents:    stats.Documents,
		Chunks:       stats.Chunks,
		Dimensions:   stats.Dimensions,
		Model:        components.Engine.ModelsStatus(),
		SnapshotPath: cfg.Storage.SnapshotPath,
	}
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.SnapshotPath, cfg.Embedding.ModelPath); err == nil {
		status.DiskUsageBytes = &diskBytes
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
		fmt.Printf("documents:        %d\n", status.Documents)
		fmt.Printf("chunks:           %d\n", status.Chunks)
		fmt.Printf("dimensions:       %d\n", status.Dimensions)
		fmt.Printf("model:            %s (loaded: %t)\n", status.Model.ModelName, status.Model.Loaded)
		fmt.Printf("device:           %s (accelerated: %t)\n", status.Model.Device, status.Model.Accelerated)
		if status.SnapshotPath != "" {
			fmt.Printf("snapshot_path:    %s\n", status.SnapshotPath)
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d\n", *status.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	docs := fs.String("docs", "", "comma-separated document IDs to scope the session (empty = all)")
	title := fs.String("title", "", "session title")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	var scope []string
	if *docs != "" {
		for _, id := range strings.Split(*docs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				scope = append(scope, id)
			}
		}
	}
	sess := components.Sessions.Create(*title, scope)
	fmt.Printf("Session %s (%s)\n", sess.ID, sess.Title)
	if len(scope) > 0 {
		fmt.Printf("Scoped to %d document(s)\n", len(scope))
	}
	fmt.Println(`Type a query, or /history, /sessions, /new, /switch, /delete, /quit.`)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch cmd {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/history":
			printHistory(components.Sessions, sess.ID)
			continue
		case "/sessions":
			for _, s := range components.Sessions.List() {
				marker := " "
				if s.ID == sess.ID {
					marker = "*"
				}
				fmt.Printf("%s %s  %s  %d quer(ies)\n", marker, s.ID, s.Title, len(s.History))
			}
			continue
		case "/new":
			sess = components.Sessions.Create(rest, scope)
			fmt.Printf("Session %s (%s)\n", sess.ID, sess.Title)
			continue
		case "/switch":
			switched, err := components.Sessions.Get(rest)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Switch failed: %v\n", err)
				continue
			}
			sess = switched
			fmt.Printf("Session %s (%s)\n", sess.ID, sess.Title)
			continue
		case "/delete":
			if rest == sess.ID {
				fmt.Fprintln(os.Stderr, "Cannot delete the active session.")
				continue
			}
			if err := components.Sessions.Delete(rest); err != nil {
				fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			}
			continue
		}

		req := &models.QueryRequest{
			Query:               line,
			TopK:                cfg.Retrieval.TopK,
			SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
			OverlapFraction:     cfg.Retrieval.OverlapFraction,
			SessionID:           sess.ID,
		}
		result, err := components.Engine.Query(ctx, req)
		if err != nil {
			if errors.Is(err, models.ErrNoRelevantContext) {
				fmt.Println("No relevant context found.")
			} else {
				fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			}
			continue
		}
		if err := cli.WriteRetrievalResult(os.Stdout, result, cli.FormatText); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		}
	}
}

func printHistory(sessions *session.Manager, sessionID string) {
	sess, err := sessions.Get(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "History unavailable: %v\n", err)
		return
	}
	if len(sess.History) == 0 {
		fmt.Println("No queries yet.")
		return
	}
	for i, rec := range sess.History {
		outcome := fmt.Sprintf("%d chunk(s)", len(rec.ChunkIDs))
		if rec.NoRelevantResult {
			outcome = "no relevant context"
		}
		fmt.Printf("%d. %s  [%s, %dms]\n", i+1, rec.Query, outcome, rec.ElapsedMillis)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file ingestion, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	if len(cfg.Watch.Directories) == 0 {
		fmt.Fprintln(os.Stderr, "No watch directories configured; set watch.directories in the config file.")
		os.Exit(1)
	}

	debugMode := cfg.Debug || *debug
	pipeline := components.Pipeline
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("watch read file failed", zap.String("path", path), zap.Error(err))
				return
			}
			docID := fileid.FileDocID(path)
			if err := pipeline.ProcessSync(context.Background(), docID, indexer.Preprocess(string(data))); err != nil {
				var conflict *models.ConflictError
				if errors.As(err, &conflict) {
					// A rapid rewrite can land while the previous version is
					// still in flight; the debounced watcher retries on the
					// next event.
					logger.Debug("watch ingest skipped, document in flight", zap.String("path", path))
					return
				}
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			err := pipeline.Remove(context.Background(), fileid.FileDocID(path))
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()
	logger.Info("watching for changes",
		zap.Strings("directories", cfg.Watch.Directories),
		zap.Strings("extensions", cfg.Watch.Extensions))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
	saveSnapshot(components, cfg, logger)
}

func saveSnapshot(c *Components, cfg *config.Config, logger *zap.Logger) {
	if cfg.Storage.SnapshotPath == "" {
		return
	}
	if err := c.Store.Save(cfg.Storage.SnapshotPath); err != nil {
		logger.Warn("snapshot save failed", zap.String("path", cfg.Storage.SnapshotPath), zap.Error(err))
	}
}

// Components holds initialized services.
type Components struct {
	Generator *embedding.Generator
	Store     *vector.Store
	Cache     *cache.QueryCache
	Sessions  *session.Manager
	Pipeline  *indexer.Pipeline
	Engine    *search.Engine
}

func (c *Components) Close() {
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	backend, err := embedding.NewBackend(embedding.Options{
		Backend:    cfg.Embedding.Backend,
		ModelPath:  cfg.Embedding.ModelPath,
		ModelName:  cfg.Embedding.ModelName,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
	})
	if err != nil {
		// A model that cannot load is fatal. Configure backend "mock"
		// explicitly to run without the native runtime.
		return nil, fmt.Errorf("failed to initialize embedding backend %q: %w", cfg.Embedding.Backend, err)
	}
	generator := embedding.NewGenerator(backend, cfg.Embedding.ModelName, cfg.Embedding.BatchSize, cfg.Embedding.Workers)

	store, err := vector.New(cfg.Embedding.Dimensions)
	if err != nil {
		_ = generator.Close()
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	if cfg.Storage.SnapshotPath != "" {
		if loadErr := store.Load(cfg.Storage.SnapshotPath); loadErr != nil {
			logger.Warn("snapshot load skipped",
				zap.String("path", cfg.Storage.SnapshotPath),
				zap.Error(loadErr))
		}
	}

	chunker, err := indexer.NewChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Chunking.BoundaryTolerance)
	if err != nil {
		_ = generator.Close()
		return nil, fmt.Errorf("failed to initialize chunker: %w", err)
	}
	var extractor *keyword.Extractor
	if cfg.Chunking.KeywordsPerChunk > 0 {
		extractor, err = keyword.NewExtractor()
		if err != nil {
			logger.Warn("keyword extractor unavailable, chunks will carry no keywords", zap.Error(err))
			extractor = nil
		}
	}
	pipeOpts := []indexer.PipelineOption{
		indexer.WithRetry(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay),
		indexer.WithKeywordLimit(cfg.Chunking.KeywordsPerChunk),
	}
	if debug {
		pipeOpts = append(pipeOpts, indexer.WithLogger(logger))
	}
	pipeline := indexer.NewPipeline(chunker, extractor, generator, store, pipeOpts...)

	sessions := session.NewManager()
	engineOpts := []search.EngineOption{
		search.WithSessions(sessions),
		search.WithCandidateMultiplier(cfg.Retrieval.CandidateMultiplier),
	}
	var queryCache *cache.QueryCache
	if cfg.QueryCache.EnabledOrDefault() {
		queryCache = cache.New(cfg.QueryCache.MaxEntries, cfg.QueryCache.TTL)
		store.OnChange(queryCache.InvalidateDocument)
		engineOpts = append(engineOpts, search.WithCache(queryCache))
	}
	if debug {
		engineOpts = append(engineOpts, search.WithLogger(logger))
	}
	engine := search.NewEngine(store, generator, engineOpts...)

	return &Components{
		Generator: generator,
		Store:     store,
		Cache:     queryCache,
		Sessions:  sessions,
		Pipeline:  pipeline,
		Engine:    engine,
	}, nil
}

func printUsage() {
	fmt.Println(`localrag - Local document-to-vector pipeline and similarity retrieval

Usage:
  localrag ingest [flags] <file-or-dir>   Chunk, embed, and index documents
  localrag query [flags] <query>          Retrieve the most similar chunks
  localrag remove [flags] <id-or-file>    Remove a document from the index
  localrag status [flags]                 Show index and model status
  localrag chat [flags]                   Interactive session with query history
  localrag watch [flags]                  Watch directories and ingest changes
  localrag version                        Show version
  localrag help                           Show this help

Ingest Flags:
  --config string    Config file path (default: /usr/local/etc/localrag/config.yaml)
  --debug            Enable debug logging (stage transitions per document)

Query Flags:
  --config string             Config file path
  --top-k int                 Number of chunks to retrieve (default from config)
  --threshold float           Minimum cosine similarity in [-1, 1] (default from config)
  --overlap-fraction float    Chunk overlap dedup fraction in [0, 1] (default from config)
  --scope string              Comma-separated document IDs to search
  --output string             Output format: text or json (default: text)

Remove Flags:
  --config string    Config file path

Status Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Chat Flags:
  --config string    Config file path
  --docs string      Comma-separated document IDs to scope the session
  --title string     Session title

Watch Flags:
  --config string    Config file path
  --debug            Enable debug logging (directory changes, file ingestion, etc.)

Examples:
  localrag ingest docs/
  localrag ingest notes.md
  localrag query "how does chunk overlap work"
  localrag query --top-k 5 --threshold 0.6 "embedding cache"
  localrag query --scope file-a1b2c3d4e5f6a7b8 --output json "retry policy"
  localrag remove notes.md
  localrag chat --docs file-a1b2c3d4e5f6a7b8
  localrag watch --debug
  localrag status --output json`)
}
