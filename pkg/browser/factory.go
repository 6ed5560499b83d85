package browser

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/container"
)

// Viewport is the browser viewport in pixels.
type Viewport struct {
	Width  int
	Height int
}

// FactoryOptions configures how sessions are created.
type FactoryOptions struct {
	// Engine is chromium, firefox or webkit
	Engine string

	// Headless launches browsers without a window
	Headless bool

	// RemoteURL is the websocket endpoint of a playwright server. When set,
	// sessions connect to it instead of launching a local browser.
	RemoteURL string

	Viewport    Viewport
	PageTimeout time.Duration

	// Proxy is used when the container passes none
	Proxy *container.Proxy

	// IsolatedDriver runs one playwright driver per session
	IsolatedDriver bool

	// Install downloads the driver and browsers before the first launch
	Install bool
}

// DefaultFactoryOptions returns options matching the config defaults.
func DefaultFactoryOptions() FactoryOptions {
	return FactoryOptions{
		Engine:   config.DefaultEngine,
		Headless: config.DefaultHeadless,
		Viewport: Viewport{
			Width:  config.DefaultViewportWidth,
			Height: config.DefaultViewportHeight,
		},
		PageTimeout: config.DefaultPageTimeout,
	}
}

// FactoryOptionsFromConfig reads the browser section of the global
// configuration, falling back to DefaultFactoryOptions.
func FactoryOptionsFromConfig() FactoryOptions {
	opts := DefaultFactoryOptions()
	if !config.IsInitialized() {
		return opts
	}
	section := config.GetBrowser()
	if section == nil {
		return opts
	}

	s := section.Settings()
	opts.Engine = s.Engine
	opts.Headless = s.Headless
	opts.RemoteURL = s.RemoteURL
	opts.Viewport = Viewport{Width: s.ViewportWidth, Height: s.ViewportHeight}
	opts.PageTimeout = s.PageTimeout
	opts.IsolatedDriver = s.IsolatedDriver
	if s.ProxyServer != "" {
		opts.Proxy = &container.Proxy{
			Server:   s.ProxyServer,
			Bypass:   s.ProxyBypass,
			Username: s.ProxyUsername,
			Password: s.ProxyPassword,
		}
	}
	return opts
}

// Factory creates playwright sessions. It implements container.Factory.
type Factory struct {
	mu          sync.Mutex
	opts        FactoryOptions
	playwright  *playwright.Playwright
	initialized bool
}

// NewFactory creates a factory. The playwright driver starts lazily on the
// first Create, or explicitly with Initialize.
func NewFactory(opts FactoryOptions) *Factory {
	return &Factory{opts: opts}
}

// Options returns the factory options.
func (f *Factory) Options() FactoryOptions {
	return f.opts
}

func runOptions() *playwright.RunOptions {
	// Discard driver output so it does not interleave with ours
	return &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
}

// Initialize installs (when requested) and starts the shared playwright driver.
func (f *Factory) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initializeLocked()
}

func (f *Factory) initializeLocked() error {
	if f.initialized {
		return nil
	}

	if f.opts.Install {
		if err := playwright.Install(runOptions()); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	if !f.opts.IsolatedDriver {
		pw, err := playwright.Run(runOptions())
		if err != nil {
			return fmt.Errorf("failed to start playwright: %w", err)
		}
		f.playwright = pw
	}
	f.initialized = true
	return nil
}

// Create launches or connects to a browser and opens a page in a fresh context.
func (f *Factory) Create(ctx context.Context, proxy *container.Proxy) (container.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if proxy == nil {
		proxy = f.opts.Proxy
	}

	pw, isolated, err := f.driver()
	if err != nil {
		return nil, err
	}
	stopDriver := func() {
		if isolated {
			_ = pw.Stop()
		}
	}

	browserType, err := selectEngine(pw, f.opts.Engine)
	if err != nil {
		stopDriver()
		return nil, err
	}

	var browser playwright.Browser
	if f.opts.RemoteURL != "" {
		browser, err = browserType.Connect(f.opts.RemoteURL)
	} else {
		browser, err = browserType.Launch(launchOptions(f.opts))
	}
	if err != nil {
		stopDriver()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserContext, err := browser.NewContext(contextOptions(f.opts, proxy))
	if err != nil {
		browser.Close()
		stopDriver()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browser.Close()
		stopDriver()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if f.opts.PageTimeout > 0 {
		page.SetDefaultTimeout(float64(f.opts.PageTimeout.Milliseconds()))
	}

	s := &Session{
		id:        uuid.NewString(),
		engine:    f.opts.Engine,
		Browser:   browser,
		Context:   browserContext,
		Page:      page,
		CreatedAt: time.Now(),
	}
	if isolated {
		s.driver = pw
	}
	return s, nil
}

// driver returns the playwright instance a new session should use and
// whether the session owns it.
func (f *Factory) driver() (*playwright.Playwright, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.initializeLocked(); err != nil {
		return nil, false, err
	}
	if !f.opts.IsolatedDriver {
		return f.playwright, false, nil
	}

	pw, err := playwright.Run(runOptions())
	if err != nil {
		return nil, false, fmt.Errorf("failed to start playwright: %w", err)
	}
	return pw, true, nil
}

// Stop stops the shared playwright driver. Sessions still open through it die
// with it; release them through the container first.
func (f *Factory) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized && f.playwright != nil {
		if err := f.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	f.playwright = nil
	f.initialized = false
	return nil
}

func selectEngine(pw *playwright.Playwright, engine string) (playwright.BrowserType, error) {
	switch engine {
	case "", "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser engine %q", engine)
	}
}

func launchOptions(opts FactoryOptions) playwright.BrowserTypeLaunchOptions {
	return playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
}

func contextOptions(opts FactoryOptions, proxy *container.Proxy) playwright.BrowserNewContextOptions {
	ctxOpts := playwright.BrowserNewContextOptions{
		Proxy: playwrightProxy(proxy),
	}
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		ctxOpts.Viewport = &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		}
	}
	return ctxOpts
}

func playwrightProxy(proxy *container.Proxy) *playwright.Proxy {
	if proxy == nil || proxy.Server == "" {
		return nil
	}
	p := &playwright.Proxy{Server: proxy.Server}
	if len(proxy.Bypass) > 0 {
		p.Bypass = playwright.String(strings.Join(proxy.Bypass, ","))
	}
	if proxy.Username != "" {
		p.Username = playwright.String(proxy.Username)
		p.Password = playwright.String(proxy.Password)
	}
	return p
}
