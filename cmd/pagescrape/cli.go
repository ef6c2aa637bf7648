package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pagescrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    pagescrape.Config
	Scraper   pagescrape.Scraper
	Admitter  pagescrape.Admitter
	History   pagescrape.HistoryService
	Converter pagescrape.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	RateLimit  int     `name:"rate-limit" env:"RATE_LIMIT_PER_MINUTE" default:"10" help:"Requests allowed per client per minute"`
	Timeout    int     `env:"REQUEST_TIMEOUT" default:"30" help:"Fetch timeout in seconds"`
	MaxRetries int     `env:"MAX_RETRIES" default:"3" help:"Fetch attempts per request, including the first"`
	RetryDelay int     `env:"RETRY_DELAY" default:"2" help:"Seconds to wait between fetch attempts"`
	UserAgent  string  `name:"user-agent" env:"DEFAULT_USER_AGENT" help:"User-Agent sent when a request does not set one"`
	HostRPS    float64 `name:"host-rps" env:"HOST_RPS" default:"2" help:"Outbound requests per second per target host (0 disables)"`
	DB         string  `name:"db" env:"PAGESCRAPE_DB" default:"${default_db}" help:"Scrape history database (empty disables history)"`
	LogLevel   string  `name:"log-level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level"`

	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API"`
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape one or more URLs and print the results"`
	History HistoryCmd `cmd:"" help:"List recent scrapes"`
}

// Config converts the global flags into a pagescrape.Config.
func (c *CLI) Config() pagescrape.Config {
	cfg := pagescrape.DefaultConfig()
	cfg.RateLimit = c.RateLimit
	cfg.FetchTimeout = time.Duration(c.Timeout) * time.Second
	cfg.MaxRetries = c.MaxRetries
	cfg.RetryDelay = time.Duration(c.RetryDelay) * time.Second
	cfg.HostRPS = c.HostRPS
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	return cfg
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string `env:"BIND_ADDR" default:"127.0.0.1:8000" help:"Address to listen on"`
	LogFile string `name:"log-file" env:"LOG_FILE" default:"logs/pagescrape.log" help:"Rotating log file (empty disables)"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URLs        []string `arg:"" name:"url" help:"Pages to scrape"`
	Type        string   `short:"t" default:"text" help:"Scrape type: text, tables, links, images or full"`
	Selector    string   `short:"s" help:"CSS selector limiting extraction"`
	Format      string   `short:"f" default:"json" help:"Output format: json, csv, yaml or markdown"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent scrape limit"`
	Out         string   `short:"o" type:"path" help:"Write one file per URL under this directory instead of printing"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL    string `help:"Only show scrapes of this URL"`
	Failed bool   `help:"Only show failed scrapes"`
	Limit  int    `short:"n" default:"20" help:"Maximum records to show"`
}
