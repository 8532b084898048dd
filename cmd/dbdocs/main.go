package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/bleve"
	"github.com/514-labs/dbdocs/catalog"
	"github.com/514-labs/dbdocs/crawl"
	"github.com/514-labs/dbdocs/fs"
	"github.com/514-labs/dbdocs/goquery"
	"github.com/514-labs/dbdocs/gzip"
	"github.com/514-labs/dbdocs/htmltomarkdown"
	dbhttp "github.com/514-labs/dbdocs/http"
	"github.com/514-labs/dbdocs/install"
	"github.com/514-labs/dbdocs/readability"
	dbslog "github.com/514-labs/dbdocs/slog"
	"github.com/514-labs/dbdocs/trafilatura"
	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Home holds the packs directory. Set before calling Run().
	Home string

	// CatalogPath is an optional YAML file merged over the built-in catalog.
	CatalogPath string

	// MaxPages is the crawl page budget. Zero means the crawler default.
	MaxPages int

	// LogLevel is the minimum level written to stderr.
	LogLevel slog.Level

	// Stdin answers the license prompt. Interactive reports whether it is
	// a terminal; without one the prompt refuses.
	Stdin       io.Reader
	Interactive bool

	// Fetcher overrides the HTTP fetcher, for tests.
	Fetcher dbdocs.Fetcher
}

// NewMain returns a new instance of Main configured from the environment.
func NewMain() *Main {
	return &Main{
		Home:        defaultHome(),
		CatalogPath: os.Getenv("DBDOCS_CATALOG"),
		MaxPages:    envInt("DBDOCS_MAX_PAGES"),
		LogLevel:    parseLevel(os.Getenv("DBDOCS_LOG_LEVEL")),
		Stdin:       os.Stdin,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dbdocs"),
		kong.Description("Install and search offline database documentation packs."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		err := fmt.Errorf("no command specified. Run 'dbdocs --help' to see available commands")
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	level := m.LogLevel
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cat, err := catalog.Load(m.CatalogPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		fmt.Fprintln(stderr, "Hint: Check the file named by DBDOCS_CATALOG")
		return err
	}

	store := fs.NewStore(filepath.Join(m.Home, "packs"))
	store.Logger = logger

	var fetcher dbdocs.Fetcher = dbhttp.NewFetcher()
	if m.Fetcher != nil {
		fetcher = m.Fetcher
	}
	fetcher = dbslog.NewLoggingFetcher(fetcher, logger)

	pageParser := goquery.NewParser(htmltomarkdown.NewConverter(), dbdocs.Extractors{
		readability.NewExtractor(),
		trafilatura.NewExtractor(),
	})
	fetchers := dbslog.WrapSourceFetchers(dbdocs.SourceFetchers{
		dbdocs.SourceHTMLCrawl: &crawl.SourceFetcher{
			Fetcher:     fetcher,
			Parser:      pageParser,
			RateLimiter: crawl.NewDomainLimiter(crawl.DefaultRequestsPerSecond),
			Logger:      logger,
			MaxPages:    m.MaxPages,
		},
		dbdocs.SourceGzipFile: &gzip.FileFetcher{Fetcher: fetcher, Logger: logger},
		dbdocs.SourceTarGz:    &gzip.ArchiveFetcher{Fetcher: fetcher, Logger: logger},
	}, logger)

	searcher := bleve.NewSearcher()

	deps.Catalog = cat
	deps.Store = store
	deps.Stats = searcher
	deps.Installer = &install.Installer{
		Store:    store,
		Fetchers: fetchers,
		Indexer:  dbslog.NewLoggingIndexer(bleve.NewIndexer(), logger),
		Searcher: dbslog.NewLoggingSearcher(searcher, logger),
		Prompter: &TerminalPrompter{In: m.Stdin, Out: stderr, Interactive: m.Interactive},
		Logger:   logger,
	}

	return kongCtx.Run(deps)
}

func defaultHome() string {
	if path := os.Getenv("DBDOCS_HOME"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dbdocs"
	}
	return filepath.Join(home, ".dbdocs")
}

// envInt returns the integer value of an environment variable, or zero if
// it is unset or not a positive integer.
func envInt(name string) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
