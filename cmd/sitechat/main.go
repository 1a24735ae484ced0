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
	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/answer"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/fwojciec/sitechat/gemini"
	"github.com/fwojciec/sitechat/goquery"
	schttp "github.com/fwojciec/sitechat/http"
	"github.com/fwojciec/sitechat/rod"
	scslog "github.com/fwojciec/sitechat/slog"
	"github.com/fwojciec/sitechat/sqlite"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDotEnv loads environment variables from path when the file exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); the --db flag overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Closed when Run returns.
	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
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
		kong.Name("sitechat"),
		kong.Description("Crawl one website and answer questions about it"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitechat --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Progress = scslog.CrawlProgress(deps.Logger)

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITECHAT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Pages = scslog.NewLoggingPageStore(sqlite.NewPageStore(m.DB), deps.Logger)

	switch cmd {
	case "serve":
		if deps.Crawler, err = m.newCrawler(cli.Serve.CrawlFlags, deps.Pages, deps.Logger, stderr); err != nil {
			return err
		}
		if deps.Asker, err = m.newAsker(ctx, cli.Serve.AnswerFlags, deps.Pages, deps.Logger, stderr); err != nil {
			return err
		}
	case "crawl":
		if deps.Crawler, err = m.newCrawler(cli.Crawl.CrawlFlags, deps.Pages, deps.Logger, stderr); err != nil {
			return err
		}
	case "ask":
		if deps.Asker, err = m.newAsker(ctx, cli.Ask.AnswerFlags, deps.Pages, deps.Logger, stderr); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// newCrawler wires a crawler from the crawl flags.
func (m *Main) newCrawler(flags CrawlFlags, pages sitechat.PageStore, logger *slog.Logger, stderr io.Writer) (*crawl.Crawler, error) {
	userAgent := flags.UserAgent
	if userAgent == "" {
		userAgent = schttp.DefaultUserAgent
	}

	inSite := crawl.MatchDomain(flags.Domain)
	var fetcher sitechat.Fetcher
	if flags.RenderJS {
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(flags.FetchTimeout),
			rod.WithBrowserOptions(rod.WithBrowserUserAgent(userAgent)),
			rod.WithRedirectCheck(inSite),
		)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed to use --render-js")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = schttp.NewFetcher(
			schttp.WithTimeout(flags.FetchTimeout),
			schttp.WithUserAgent(userAgent),
			schttp.WithRedirectCheck(inSite),
		)
	}
	fetcher = scslog.NewLoggingFetcher(fetcher, logger)
	m.closers = append(m.closers, fetcher.Close)

	c := &crawl.Crawler{
		Fetcher:      fetcher,
		Extractor:    goquery.NewExtractor(),
		LinkSelector: goquery.NewLinkSelector(),
		Pages:        pages,
		RateLimiter:  crawl.NewDomainLimiter(flags.Delay),
		Budget:       flags.Budget,
		MaxPages:     flags.MaxPages,
	}
	if flags.Robots {
		c.Robots = schttp.NewRobotsChecker(nil, userAgent)
	}
	if flags.Sitemap {
		c.Sitemaps = scslog.NewLoggingSitemapService(schttp.NewSitemapService(nil, schttp.WithSitemapUserAgent(userAgent)), logger)
	}

	// Token totals are informational; crawl without them if the
	// tokenizer cannot be loaded.
	if tc, err := gemini.NewTokenCounter(gemini.DefaultModel); err != nil {
		logger.Warn("token counting disabled", "err", err)
	} else {
		c.TokenCounter = tc
	}

	return c, nil
}

// newAsker wires the answering service from the answer flags.
func (m *Main) newAsker(ctx context.Context, flags AnswerFlags, pages sitechat.PageStore, logger *slog.Logger, stderr io.Writer) (sitechat.Asker, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	completer := scslog.NewLoggingCompleter(gemini.NewCompleter(client, flags.Model), logger)
	svc := answer.NewService(pages, completer)
	svc.Policy = sitechat.QuestionPolicy{MinLength: flags.MinQuestionLength, MaxLength: flags.MaxQuestionLength}
	svc.Timeout = flags.AnswerTimeout
	return svc, nil
}

func defaultDBPath() string {
	if path := os.Getenv("SITECHAT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitechat.db"
	}
	dir := filepath.Join(home, ".sitechat")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitechat.db")
}
