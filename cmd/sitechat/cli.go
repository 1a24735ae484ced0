package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Pages    sitechat.PageStore
	Crawler  *crawl.Crawler
	Asker    sitechat.Asker
	Progress crawl.ProgressFunc
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"SITECHAT_DB" help:"SQLite database path"`
	Verbose bool   `short:"v" env:"SITECHAT_VERBOSE" help:"Log debug output"`

	Serve   ServeCmd   `cmd:"" help:"Crawl the domain in the background and serve the question API"`
	Crawl   CrawlCmd   `cmd:"" help:"Crawl the domain and exit"`
	Ask     AskCmd     `cmd:"" help:"Ask a question about the crawled pages"`
	Sources SourcesCmd `cmd:"" help:"List the crawled pages"`
}

// CrawlFlags configure one crawl session.
type CrawlFlags struct {
	Domain       string        `required:"" env:"SITECHAT_DOMAIN" help:"Domain to crawl, subdomains included (e.g. example.com)"`
	StartURL     string        `name:"start-url" env:"SITECHAT_START_URL" help:"First page to fetch (default https://<domain>/)"`
	Budget       int           `default:"190000" env:"SITECHAT_BUDGET" help:"Maximum characters of page text to store (0 for unlimited)"`
	CrawlTimeout time.Duration `name:"crawl-timeout" default:"1h" env:"SITECHAT_CRAWL_TIMEOUT" help:"Time limit for the crawl session"`
	MaxPages     int           `name:"max-pages" default:"10000" env:"SITECHAT_MAX_PAGES" help:"Maximum pages to visit"`
	Delay        time.Duration `default:"500ms" env:"SITECHAT_DELAY" help:"Politeness delay between requests to one host"`
	FetchTimeout time.Duration `name:"fetch-timeout" default:"10s" env:"SITECHAT_FETCH_TIMEOUT" help:"Time limit for fetching one page"`
	RenderJS     bool          `name:"render-js" env:"SITECHAT_RENDER_JS" help:"Render pages in headless Chrome"`
	Robots       bool          `default:"true" negatable:"" env:"SITECHAT_ROBOTS" help:"Honor robots.txt"`
	Sitemap      bool          `default:"true" negatable:"" env:"SITECHAT_SITEMAP" help:"Seed the crawl from sitemap.xml"`
	UserAgent    string        `name:"user-agent" env:"SITECHAT_USER_AGENT" help:"User-Agent header for crawl requests"`
}

// startURL returns the configured start URL or the root of the domain.
func (f CrawlFlags) startURL() string {
	if f.StartURL != "" {
		return f.StartURL
	}
	return crawl.StartURL(f.Domain)
}

// AnswerFlags configure question answering.
type AnswerFlags struct {
	Model             string        `default:"gemini-2.5-flash" env:"SITECHAT_MODEL" help:"Gemini model used to answer"`
	MinQuestionLength int           `name:"min-question-length" default:"5" env:"SITECHAT_MIN_QUESTION_LENGTH" help:"Minimum question length in characters"`
	MaxQuestionLength int           `name:"max-question-length" default:"1000" env:"SITECHAT_MAX_QUESTION_LENGTH" help:"Maximum question length in characters"`
	AnswerTimeout     time.Duration `name:"answer-timeout" default:"60s" env:"SITECHAT_ANSWER_TIMEOUT" help:"Time limit for one answering call"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	CrawlFlags  `embed:""`
	AnswerFlags `embed:""`

	Listen      string   `default:":8000" env:"SITECHAT_LISTEN" help:"HTTP listen address"`
	CORSOrigins []string `name:"cors-origin" default:"http://localhost:3000,http://127.0.0.1:3000" env:"SITECHAT_CORS_ORIGINS" help:"Browser origins allowed to call the API"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	CrawlFlags `embed:""`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	AnswerFlags `embed:""`

	Question string `arg:"" help:"Question to ask about the site"`
	JSON     bool   `help:"Print the result as JSON"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct {
	Full bool `help:"Print the labeled context sent to the model"`
}
