package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser section
	SectionIDBrowser = "browser"

	// Default values for browser settings
	DefaultEngine         = "chromium"
	DefaultHeadless       = true
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultPageTimeout    = 30 * time.Second
)

// BrowserSettings is a snapshot of the browser section.
type BrowserSettings struct {
	// Engine is chromium, firefox or webkit
	Engine string

	// Headless runs launched browsers without a window
	Headless bool

	// RemoteURL connects to a running playwright server instead of launching
	RemoteURL string

	ViewportWidth  int
	ViewportHeight int

	// PageTimeout is the default timeout of page operations
	PageTimeout time.Duration

	ProxyServer   string
	ProxyBypass   []string
	ProxyUsername string
	ProxyPassword string

	// IsolatedDriver gives every session its own playwright driver process so
	// a force-kill can take the whole browser down
	IsolatedDriver bool
}

// BrowserSection configures how sessions are created.
type BrowserSection struct {
	settings BrowserSettings
	mu       sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Configure the browser engine, viewport and proxy used for new sessions."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"engine":          s.settings.Engine,
		"headless":        s.settings.Headless,
		"remote_url":      s.settings.RemoteURL,
		"viewport_width":  s.settings.ViewportWidth,
		"viewport_height": s.settings.ViewportHeight,
		"page_timeout":    s.settings.PageTimeout.String(),
		"proxy_server":    s.settings.ProxyServer,
		"proxy_bypass":    append([]string(nil), s.settings.ProxyBypass...),
		"proxy_username":  s.settings.ProxyUsername,
		"proxy_password":  s.settings.ProxyPassword,
		"isolated_driver": s.settings.IsolatedDriver,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "engine":
			s.settings.Engine, err = stringValue(key, value)
		case "headless":
			s.settings.Headless, err = boolValue(key, value)
		case "remote_url":
			s.settings.RemoteURL, err = stringValue(key, value)
		case "viewport_width":
			s.settings.ViewportWidth, err = intValue(key, value)
		case "viewport_height":
			s.settings.ViewportHeight, err = intValue(key, value)
		case "page_timeout":
			s.settings.PageTimeout, err = durationValue(key, value)
		case "proxy_server":
			s.settings.ProxyServer, err = stringValue(key, value)
		case "proxy_bypass":
			s.settings.ProxyBypass, err = stringsValue(key, value)
		case "proxy_username":
			s.settings.ProxyUsername, err = stringValue(key, value)
		case "proxy_password":
			s.settings.ProxyPassword, err = stringValue(key, value)
		case "isolated_driver":
			s.settings.IsolatedDriver, err = boolValue(key, value)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.settings.Engine {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("engine must be chromium, firefox or webkit, got %q", s.settings.Engine)
	}
	if s.settings.ViewportWidth < 100 || s.settings.ViewportWidth > 5000 {
		return fmt.Errorf("viewport_width must be between 100 and 5000 pixels")
	}
	if s.settings.ViewportHeight < 100 || s.settings.ViewportHeight > 5000 {
		return fmt.Errorf("viewport_height must be between 100 and 5000 pixels")
	}
	if s.settings.PageTimeout <= 0 {
		return fmt.Errorf("page_timeout must be positive, got %v", s.settings.PageTimeout)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = BrowserSettings{
		Engine:         DefaultEngine,
		Headless:       DefaultHeadless,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
		PageTimeout:    DefaultPageTimeout,
	}
}

// Settings returns a copy of the current settings.
func (s *BrowserSection) Settings() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.settings
	settings.ProxyBypass = append([]string(nil), s.settings.ProxyBypass...)
	return settings
}

// SetHeadless sets whether launched browsers run without a window.
func (s *BrowserSection) SetHeadless(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Headless = enabled
}

// SetEngine sets the browser engine.
func (s *BrowserSection) SetEngine(engine string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Engine = engine
}

// SetRemoteURL sets the playwright server to connect to.
func (s *BrowserSection) SetRemoteURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.RemoteURL = url
}
