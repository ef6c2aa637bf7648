package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagescrape"
	"github.com/fwojciec/pagescrape/admission"
	"github.com/fwojciec/pagescrape/goquery"
	"github.com/fwojciec/pagescrape/htmltomarkdown"
	pshttp "github.com/fwojciec/pagescrape/http"
	"github.com/fwojciec/pagescrape/readability"
	"github.com/fwojciec/pagescrape/scrape"
	psslog "github.com/fwojciec/pagescrape/slog"
	"github.com/fwojciec/pagescrape/sqlite"
	"github.com/fwojciec/pagescrape/trafilatura"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database holding the scrape history. Nil when history is
	// disabled.
	DB *sqlite.DB

	// LogWriter receives logs in addition to the console. Set by Run for
	// the serve command.
	LogWriter io.WriteCloser
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	if m.LogWriter != nil {
		errs = append(errs, m.LogWriter.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagescrape"),
		kong.Description("Fetch web pages and extract structured data"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"default_db": defaultDBPath()},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagescrape --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	cfg := cli.Config()

	console := stderr
	if strings.HasPrefix(kongCtx.Command(), "serve") {
		console = stdout
		if cli.Serve.LogFile != "" {
			if err := os.MkdirAll(filepath.Dir(cli.Serve.LogFile), 0o755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
			m.LogWriter = &lumberjack.Logger{
				Filename:   cli.Serve.LogFile,
				MaxSize:    25,
				MaxBackups: 10,
				MaxAge:     14,
				Compress:   true,
			}
			console = io.MultiWriter(stdout, m.LogWriter)
		}
	}
	logger := newLogger(console, cli.LogLevel)

	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    logger,
		Config:    cfg,
		Converter: htmltomarkdown.NewConverter(),
	}

	if cli.DB != "" {
		if err := os.MkdirAll(filepath.Dir(cli.DB), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set PAGESCRAPE_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		deps.History = psslog.NewLoggingHistoryService(sqlite.NewHistoryService(m.DB), logger)
	}

	deps.Scraper = newScraper(cfg, deps.History, logger)
	deps.Admitter = psslog.NewLoggingAdmitter(admission.New(cfg.RateLimit, admission.WithWindow(cfg.Window)), logger)

	return kongCtx.Run(deps)
}

// newScraper wires the fetch and extract pipeline.
func newScraper(cfg pagescrape.Config, history pagescrape.HistoryService, logger *slog.Logger) pagescrape.Scraper {
	fetcher := pshttp.NewFetcher(
		pshttp.WithTimeout(cfg.FetchTimeout),
		pshttp.WithUserAgent(cfg.UserAgent),
		pshttp.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	engine := goquery.NewEngine(goquery.WithTextExtractors(
		trafilatura.NewExtractor(),
		readability.NewExtractor(),
	))

	return psslog.NewLoggingScraper(&scrape.Service{
		Fetcher:     psslog.NewLoggingFetcher(fetcher, logger),
		Extractor:   psslog.NewLoggingExtractor(engine, logger),
		Config:      cfg,
		RateLimiter: scrape.NewHostLimiter(cfg.HostRPS),
		History:     history,
		Logf: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}, logger)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagescrape.db"
	}
	return filepath.Join(home, ".pagescrape", "history.db")
}
