// Package main runs a pool of workers that each drive their own browser
// session. Some workers exit without releasing their session so the reaper
// has something to reclaim; SIGINT and SIGTERM release everything.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/entrhq/sessionkeeper/pkg/browser"
	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/container"
	"github.com/entrhq/sessionkeeper/pkg/logging"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	URL         string
	Workers     int
	Abandon     int
	Hold        time.Duration
	Engine      string
	Headless    bool
	RemoteURL   string
	Install     bool
	LogLevel    string
	ShowVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("sessionkeeper v%s\n", version)
		return
	}

	// Cancel the run on SIGINT/SIGTERM so workers stop using sessions that
	// are being released
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Printf("sessionkeeper failed: %v", err)
		os.Exit(1)
	}
	stop()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&cfg.URL, "url", "https://example.com", "Page every worker opens")
	flag.IntVar(&cfg.Workers, "workers", 3, "Number of concurrent workers")
	flag.IntVar(&cfg.Abandon, "abandon", 1, "Workers that exit without releasing their session")
	flag.DurationVar(&cfg.Hold, "hold", 2*time.Second, "How long each worker keeps its page open")
	flag.StringVar(&cfg.Engine, "engine", config.DefaultEngine, "Browser engine: chromium, firefox or webkit")
	flag.BoolVar(&cfg.Headless, "headless", config.DefaultHeadless, "Run browsers without a window")
	flag.StringVar(&cfg.RemoteURL, "remote", "", "Websocket endpoint of a running playwright server")
	flag.BoolVar(&cfg.Install, "install", false, "Install the playwright driver and browsers first")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sessionkeeper - one browser session per worker\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sessionkeeper [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Five workers, two of them abandon their sessions\n")
		fmt.Fprintf(os.Stderr, "  sessionkeeper -workers 5 -abandon 2 -url https://example.com\n\n")
		fmt.Fprintf(os.Stderr, "  # Use a remote playwright server\n")
		fmt.Fprintf(os.Stderr, "  sessionkeeper -remote ws://localhost:3000/ -engine firefox\n\n")
	}

	flag.Parse()

	cfg.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		cfg.set[f.Name] = true
	})
	return cfg
}

func run(ctx context.Context, cfg *CLIConfig) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	if err := config.Initialize(cfg.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	applyOverrides(cfg)

	logger := logging.NewWriterLogger("sessionkeeper", os.Stderr)

	opts := browser.FactoryOptionsFromConfig()
	opts.Install = cfg.Install
	factory := browser.NewFactory(opts)
	defer func() {
		if err := factory.Stop(); err != nil {
			logger.Warnf("Failed to stop playwright: %v", err)
		}
	}()
	if err := factory.Initialize(); err != nil {
		return err
	}

	c := container.New(factory, container.WithLogger(logger.With("container")))
	if err := c.AddListener(container.ListenerSpec{
		Name:       "timing",
		Operations: "session.{destroy,kill}",
		Listener: container.ListenerFunc(func(e container.Event) {
			if e.Phase == container.PhaseAfter {
				logger.Debugf("%s of %s took %s (err: %v)", e.Op, e.Session, e.Elapsed, e.Err)
			}
		}),
	}); err != nil {
		return err
	}

	// Releases every session as soon as the run is canceled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := container.NotifyShutdown(ctx, c)
	defer stop()

	var failures atomic.Int32
	handles := make([]*container.Handle, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		abandon := i < cfg.Abandon
		handles = append(handles, c.Go(func(w *container.Handle) {
			if !abandon {
				defer c.Release(w)
			}
			if err := visit(ctx, c, w, cfg); err != nil && ctx.Err() == nil {
				logger.Errorf("Worker %d failed: %v", w.ID(), err)
				failures.Add(1)
			}
		}))
	}
	for _, h := range handles {
		<-h.Done()
	}

	// Sessions of abandoned workers are closed by the reaper.
	waitForReaper(ctx, c, logger)

	if err := c.Shutdown(context.Background()); err != nil {
		return err
	}
	if n := failures.Load(); n > 0 {
		return fmt.Errorf("%d of %d workers failed", n, cfg.Workers)
	}
	return nil
}

// applyOverrides copies explicitly given flags into the browser section.
func applyOverrides(cfg *CLIConfig) {
	section := config.GetBrowser()
	if section == nil {
		return
	}
	if cfg.set["engine"] {
		section.SetEngine(cfg.Engine)
	}
	if cfg.set["headless"] {
		section.SetHeadless(cfg.Headless)
	}
	if cfg.set["remote"] {
		section.SetRemoteURL(cfg.RemoteURL)
	}
}

func visit(ctx context.Context, c *container.Container, w *container.Handle, cfg *CLIConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.GetVerifiedSession(ctx, w); err != nil {
		return err
	}
	if err := browser.Navigate(ctx, c, w, cfg.URL); err != nil {
		return err
	}

	text, err := browser.PageText(ctx, c, w, 200)
	if err != nil {
		return err
	}
	url, err := browser.CurrentURL(ctx, c, w)
	if err != nil {
		return err
	}
	fmt.Printf("worker %d: %q at %s\n", w.ID(), text.Title, url)

	select {
	case <-time.After(cfg.Hold):
	case <-ctx.Done():
	}
	return nil
}

func waitForReaper(ctx context.Context, c *container.Container, logger *logging.Logger) {
	settings := container.GlobalSettings()
	deadline := time.After(settings.CloseTimeout + 10*settings.ReapInterval)
	ticker := time.NewTicker(settings.ReapInterval)
	defer ticker.Stop()

	for c.Workers() > 0 {
		select {
		case <-ticker.C:
		case <-deadline:
			logger.Warnf("%d sessions still open, releasing them on shutdown", c.Workers())
			return
		case <-ctx.Done():
			return
		}
	}
}
