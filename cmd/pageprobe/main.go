// Package main provides pageprobe, a command-line tool that loads a page in a
// real browser and prints the elements matched by CSS selectors, resolved
// through the pageobject dispatcher.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/pageobjects/pkg/config"
	pwdriver "github.com/entrhq/pageobjects/pkg/driver/playwright"
	roddriver "github.com/entrhq/pageobjects/pkg/driver/rod"
	"github.com/entrhq/pageobjects/pkg/logging"
	"github.com/entrhq/pageobjects/pkg/pageobject"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	URL         string
	Driver      string
	Selections  selections
	Format      string
	MaxLength   int
	Interval    time.Duration
	Timeout     time.Duration
	ShowVersion bool
}

// session is what pageprobe needs from a browser driver.
type session interface {
	Root() pageobject.Context
	Navigate(url string) error
	Close() error
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("pageprobe v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		log.Printf("pageprobe failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cli.URL, "url", "", "Page to load (required)")
	flag.StringVar(&cli.Driver, "driver", "", "Browser driver: playwright or rod (overrides config)")
	flag.Var(&cli.Selections, "select", "Selector to resolve: one:<css> or many:<css> (repeatable)")
	flag.StringVar(&cli.Format, "format", formatHTML, "Output format: html, clean or text")
	flag.IntVar(&cli.MaxLength, "max-length", 0, "Truncate each match to this many bytes (0 means no limit)")
	flag.DurationVar(&cli.Interval, "interval", 0, "Probe repeatedly at this interval until interrupted")
	flag.DurationVar(&cli.Timeout, "timeout", 0, "Overall timeout (0 means none)")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pageprobe - resolve selectors against a live page\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pageprobe -url <url> -select <selector> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pageprobe -url https://example.com -select one:h1 -select many:a\n\n")
		fmt.Fprintf(os.Stderr, "  pageprobe -config pageobjects.yaml -url https://example.com -select li -format text -interval 10s\n\n")
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, cli *CLIConfig) error {
	if cli.URL == "" {
		return fmt.Errorf("-url is required")
	}
	if len(cli.Selections) == 0 {
		return fmt.Errorf("at least one -select is required")
	}

	render, err := newRenderer(cli.Format, cli.MaxLength)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	if cfg.Logging.Directory != "" {
		logging.SetDirectory(cfg.Logging.Directory)
	}
	if err := logging.SetVerbosity(cfg.Logging.Verbosity); err != nil {
		return err
	}
	logger, err := logging.NewLogger("pageprobe")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	opts := []pageobject.Option{
		pageobject.WithLogger(logger),
		pageobject.WithRegistry(pageobject.NewRegistry(
			pageobject.WithStrict(cfg.Registry.Strict),
			pageobject.WithRegistryLogger(logger),
		)),
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics, err := pageobject.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, pageobject.WithMetrics(metrics))

		stop := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer stop()
	}
	dispatcher := pageobject.NewDispatcher(opts...)

	if cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warnf("close session: %v", err)
		}
	}()
	logger.Infof("opened %s session", cfg.Driver)

	if err := s.Navigate(cli.URL); err != nil {
		return err
	}
	logger.Infof("navigated to %s", cli.URL)

	if cli.Interval <= 0 {
		return probeOnce(ctx, dispatcher, s.Root(), cli.Selections, render)
	}

	ticker := time.NewTicker(cli.Interval)
	defer ticker.Stop()
	for {
		if err := probeOnce(ctx, dispatcher, s.Root(), cli.Selections, render); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Errorf("probe failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func probeOnce(ctx context.Context, d *pageobject.Dispatcher, root pageobject.Context, sels []selection, r *renderer) error {
	results, err := probe(ctx, d, root, sels)
	if err != nil {
		return err
	}
	return report(os.Stdout, results, r)
}

// loadConfig loads configuration from file and applies command-line overrides
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cli.ConfigFile != "" {
		loaded, err := config.Load(cli.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cli.Driver != "" {
		cfg.Driver = config.Driver(cli.Driver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openSession(cfg *config.Config) (session, error) {
	b := cfg.Browser
	switch cfg.Driver {
	case config.DriverRod:
		return roddriver.Launch(roddriver.Options{
			RemoteURL: b.RemoteURL,
			Headless:  b.Headless,
			Width:     b.Viewport.Width,
			Height:    b.Viewport.Height,
			Timeout:   b.Timeout,
		})
	default:
		opts := pwdriver.Options{
			Headless:  b.Headless,
			Timeout:   b.Timeout,
			WaitUntil: b.WaitUntil,
		}
		if b.Viewport.Width > 0 && b.Viewport.Height > 0 {
			opts.Viewport = &pwdriver.Viewport{Width: b.Viewport.Width, Height: b.Viewport.Height}
		}
		return pwdriver.Launch(opts)
	}
}

// serveMetrics exposes reg on addr until the returned stop function is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	logger.Infof("serving metrics on %s/metrics", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
