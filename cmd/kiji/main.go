// Package main is the kiji CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kiji/internal/cli"
	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/extract"
	"github.com/hyperjump/kiji/internal/fileid"
	"github.com/hyperjump/kiji/internal/indexer"
	"github.com/hyperjump/kiji/internal/keyword"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/ranking"
	"github.com/hyperjump/kiji/internal/search"
	"github.com/hyperjump/kiji/internal/server"
	"github.com/hyperjump/kiji/internal/storage"
	"github.com/hyperjump/kiji/internal/watcher"
	"github.com/hyperjump/kiji/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kiji/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, a config.yaml in the
// current directory takes precedence, so "kiji server" from a project dir uses that
// project's config. Returns the config and the path that was actually loaded.
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
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "index":
		runIndex()
	case "delete":
		runDelete()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kiji version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func runServer() {
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file indexing, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("split_mode", cfg.Corpus.SplitMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		components.Indexer,
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	if err := components.Engine.Reload(watchCtx); err != nil {
		logger.Warn("initial corpus load failed", zap.Error(err))
	} else {
		logger.Info("corpus loaded", zap.Int("passages", components.Engine.CorpusSize()))
	}

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.Storage,
		cfg,
		logger,
		watchSvc,
		resolvedConfigPath,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// searchOptions are the parsed flags and query of "kiji search".
type searchOptions struct {
	configPath string
	serverURL  string
	limit      int
	offset     int
	format     cli.SearchOutputFormat
	highlight  bool
	links      bool
	query      string
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newSearchFlagSet(opts *searchOptions, output *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "config file path (direct mode)")
	fs.StringVar(&opts.serverURL, "server", defaultServerURL, `server URL; --server "" searches storage directly`)
	fs.IntVarP(&opts.limit, "limit", "n", 0, "number of articles (0 = configured default)")
	fs.IntVar(&opts.offset, "offset", 0, "number of ranked articles to skip")
	fs.StringVarP(output, "output", "o", string(cli.OutputText), "output format: text, compact, or json")
	fs.BoolVar(&opts.highlight, "highlight", true, "highlight matches in text and compact output")
	fs.BoolVar(&opts.links, "links", true, "list documents whose filename matches the query")
	return fs
}

// parseSearchArgs parses "kiji search" arguments. Flags may appear before or after the query.
func parseSearchArgs(args []string) (*searchOptions, error) {
	opts := &searchOptions{}
	var output string
	fs := newSearchFlagSet(opts, &output)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	format, err := cli.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	opts.format = format
	opts.query = buildSearchQuery(fs.Args())
	if opts.query == "" {
		return nil, models.ErrEmptyQuery
	}
	return opts, nil
}

func printSearchUsage() {
	var output string
	fs := newSearchFlagSet(&searchOptions{}, &output)
	fmt.Fprintf(os.Stderr, "Usage: kiji search [flags] <query>\n\n")
	fmt.Fprintf(os.Stderr, "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  kiji search getUserID
  kiji search "quarterly report" --limit 5
  kiji search --output json invoice       # structured JSON for other apps
  kiji search --server "" meeting notes   # no server running
`)
}

func runSearch() {
	opts, err := parseSearchArgs(os.Args[2:])
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%v\n\n", err)
		}
		printSearchUsage()
		os.Exit(1)
	}

	// Highlighting happens here so the terminal can style matches.
	query := &models.SearchQuery{
		Query:  opts.query,
		Limit:  opts.limit,
		Offset: opts.offset,
		Links:  opts.links,
	}
	textOpts := cli.TextOptions{Highlight: opts.highlight}

	var response *models.SearchResponse
	if opts.serverURL != "" {
		// The HTTP API avoids the bleve/SQLite lock held by a running server.
		response, err = cli.NewClient(opts.serverURL, 0).Search(context.Background(), query)
	} else {
		response, err = searchDirect(opts.configPath, query)
	}
	if err != nil {
		fatalf("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, opts.format, textOpts); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func searchDirect(configPath string, query *models.SearchQuery) (*models.SearchResponse, error) {
	components, logger, err := openComponents(configPath)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	defer components.Close()
	return components.Engine.Search(context.Background(), query)
}

// openComponents loads config and initializes components for a one-shot command.
func openComponents(configPath string) (*Components, *zap.Logger, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return components, logger, nil
}

func runStatus() {
	fs := pflag.NewFlagSet("status", pflag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, `server URL; --server "" reads storage directly`)
	output := fs.StringP("output", "o", string(cli.OutputText), "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil || format == cli.OutputCompact {
		fatalf("Unknown output format %q; use text or json", *output)
	}

	var status *cli.Status
	if *serverURL != "" {
		status, err = cli.NewClient(*serverURL, 0).Status(context.Background())
	} else {
		status, err = statusDirect(*configPath)
	}
	if err != nil {
		fatalf("Status failed: %v", err)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func statusDirect(configPath string) (*cli.Status, error) {
	components, logger, err := openComponents(configPath)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	defer components.Close()

	stats, err := components.Engine.Stats(context.Background())
	if err != nil {
		return nil, err
	}
	cfg := components.Config
	status := &cli.Status{
		Documents:  stats.Documents,
		Passages:   stats.Passages,
		Links:      stats.Links,
		CorpusSize: components.Engine.CorpusSize(),
		Config: &cli.StatusConfig{
			SplitMode:        cfg.Corpus.SplitMode,
			DatabasePath:     cfg.Storage.DatabasePath,
			BleveIndexPath:   cfg.Storage.BleveIndexPath,
			LinkExtensions:   cfg.Search.LinkExtensions,
			WatchDirectories: cfg.Watch.Directories,
		},
	}
	if usage, err := storage.MeasureUsage(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
		total := usage.Total()
		status.DiskUsageBytes = &total
	}
	return status, nil
}

func runIndex() {
	fs := pflag.NewFlagSet("index", pflag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	title := fs.String("title", "", `document title when indexing text from stdin ("-")`)
	splitMode := fs.String("split", "", "split mode for stdin text: block, line, delimiter, or document")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kiji index [flags] <file-or-directory | ->")
		os.Exit(1)
	}
	path := fs.Arg(0)

	components, logger, err := openComponents(*configPath)
	if err != nil {
		fatalf("%v", err)
	}
	defer logger.Sync()
	defer components.Close()
	ctx := context.Background()

	if path == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatalf("Failed to read stdin: %v", err)
		}
		docTitle := *title
		if docTitle == "" {
			docTitle = utils.Truncate(utils.FirstLine(string(content)), 60)
		}
		doc, err := components.Indexer.IndexDocument(ctx, &models.DocumentInput{
			Title:     docTitle,
			Content:   string(content),
			SplitMode: *splitMode,
		})
		if err != nil {
			fatalf("Indexing failed: %v", err)
		}
		fmt.Printf("Document indexed successfully: %s\n", doc.ID)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		fatalf("Failed to stat path: %v", err)
	}
	if info.IsDir() {
		report, err := components.Indexer.IndexDirectory(ctx, path, components.Config.Watch.Extensions)
		if err != nil {
			fatalf("Indexing directory failed: %v", err)
		}
		fmt.Printf("Indexed %d file(s) from %s (%d unchanged)\n", report.Indexed, path, report.Unchanged)
		for _, f := range report.Failed {
			fmt.Printf("  failed: %s\n", f)
		}
		return
	}
	// A single file named explicitly is indexed whatever its extension.
	if err := components.Indexer.IndexFile(ctx, path, nil); err != nil {
		fatalf("Indexing failed: %v", err)
	}
	absPath, _ := filepath.Abs(path)
	fmt.Printf("Document indexed successfully: %s\n", fileid.FileDocID(absPath))
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: kiji watch <add|remove|list> [path]")
		fmt.Println("  kiji watch add <path>     Add directory to watch")
		fmt.Println("  kiji watch remove <path>  Remove directory from watch")
		fmt.Println("  kiji watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := pflag.NewFlagSet("watch", pflag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[3:])

	client := cli.NewClient(*serverURL, 0)
	ctx := context.Background()
	switch sub {
	case "add", "remove":
		if fs.NArg() < 1 {
			fmt.Printf("Usage: kiji watch %s <path>\n", sub)
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		if sub == "add" {
			if err := client.AddWatchDirectory(ctx, path); err != nil {
				fatalf("Add failed: %v", err)
			}
			fmt.Printf("Added: %s\n", path)
			return
		}
		if err := client.RemoveWatchDirectory(ctx, path); err != nil {
			fatalf("Remove failed: %v", err)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		dirs, err := client.WatchDirectories(ctx)
		if err != nil {
			fatalf("List failed: %v", err)
		}
		for _, d := range dirs {
			fmt.Println(d)
		}
	default:
		fatalf("Unknown watch subcommand: %s", sub)
	}
}

func runDelete() {
	fs := pflag.NewFlagSet("delete", pflag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "", "server URL; empty deletes from storage directly")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kiji delete [flags] <document-id | file>")
		os.Exit(1)
	}
	docID := documentIDArg(fs.Arg(0))

	if *serverURL != "" {
		if err := cli.NewClient(*serverURL, 0).DeleteDocument(context.Background(), docID); err != nil {
			fatalf("Deletion failed: %v", err)
		}
		fmt.Printf("Document deleted: %s\n", docID)
		return
	}

	components, logger, err := openComponents(*configPath)
	if err != nil {
		fatalf("%v", err)
	}
	defer logger.Sync()
	defer components.Close()

	if err := components.Indexer.DeleteDocument(context.Background(), docID); err != nil {
		fatalf("Deletion failed: %v", err)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

// documentIDArg lets "kiji delete" take the path of an indexed file as well as a document ID.
func documentIDArg(arg string) string {
	if fileid.IsFileDocID(arg) {
		return arg
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		if abs, err := filepath.Abs(arg); err == nil {
			return fileid.FileDocID(abs)
		}
	}
	return arg
}

// Components holds initialized services.
type Components struct {
	Config  *config.Config
	Storage storage.Storage
	Links   keyword.LinkIndex
	Engine  *search.Engine
	Indexer *indexer.Indexer
}

func (c *Components) Close() {
	if c.Links != nil {
		_ = c.Links.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	mode, err := corpus.ParseMode(cfg.Corpus.SplitMode)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	links, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize link index: %w", err)
	}

	engine := search.NewEngine(
		store,
		links,
		ranking.NewRanker(&cfg.Ranking),
		&cfg.Search,
		search.WithHighlight(&cfg.Highlight),
		search.WithLogger(logger),
	)

	idxOpts := []indexer.IndexerOption{
		indexer.WithWorkers(cfg.Corpus.Workers),
		indexer.WithChangeHook(engine.Invalidate),
	}
	if debug && logger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, links, corpus.NewSplitter(mode, cfg.Corpus.Delimiter), extract.NewExtractor(), idxOpts...)

	return &Components{
		Config:  cfg,
		Storage: store,
		Links:   links,
		Engine:  engine,
		Indexer: idx,
	}, nil
}

func printUsage() {
	fmt.Println(`kiji - personal knowledge search

Usage:
  kiji server [flags]                 Start the HTTP server and directory watcher
  kiji search [flags] <query>         Search passages ("articles") and document links
  kiji index [flags] <path | ->       Index a file, a directory, or text from stdin
  kiji delete [flags] <id | file>     Delete a document by ID or indexed file path
  kiji status [flags]                 Show corpus/storage/index status
  kiji watch <add|remove|list>        Manage watched directories
  kiji version                        Show version
  kiji help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kiji/config.yaml)
  --debug            Enable debug logging (directory changes, file indexing, etc.)

Search Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" to search storage directly.
  -n, --limit int    Number of articles (default from config)
  --offset int       Number of ranked articles to skip
  -o, --output       Output format: text, compact, or json (default: text)
  --highlight        Highlight matches (default: true)
  --links            List matching document filenames (default: true)

Index Flags:
  --config string    Config file path
  --title string     Title for text read from stdin (default: its first line)
  --split string     Split mode for text read from stdin

Status Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  -o, --output       Output format: text or json (default: text)

Delete Flags:
  --config string    Config file path
  --server string    Delete through a running server instead of storage

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Environment:
  KIJI_* variables override config values; a .env file in the current directory is loaded first.

Examples:
  kiji server
  kiji search getUserID
  kiji search quarterly report --limit 5 --output compact
  kiji index ~/Documents/notes
  cat meeting.txt | kiji index --title "Meeting" --split line -
  kiji delete 7d9f...
  kiji status --output json
  kiji watch add ~/Documents`)
}
