package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one playwright browser, context and page owned by a worker.
type Session struct {
	id     string
	engine string

	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page

	// driver is the session's own playwright process when the factory runs
	// with isolated drivers, nil otherwise.
	driver interface{ Stop() error }

	CreatedAt time.Time
}

// ID returns the session id and engine, e.g. "3f2a...(chromium)".
func (s *Session) ID() string {
	return fmt.Sprintf("%s(%s)", s.id, s.engine)
}

// Probe reads the page title, the cheapest round trip to the browser.
func (s *Session) Probe() error {
	if s.Page.IsClosed() {
		return classify("probe", errors.New("page is closed"), s.Browser.IsConnected(), true)
	}
	_, err := s.Page.Title()
	return s.classify("probe", err)
}

// Destroy closes the browser and everything in it.
func (s *Session) Destroy() error {
	return s.classify("close browser", s.Browser.Close())
}

// ForceKill stops the dedicated driver process, which takes the browser down
// with it. Only sessions created with FactoryOptions.IsolatedDriver have one.
// Without it ForceKill can only close the context over the same connection
// Destroy used, so a browser that hung in Close may stay hung; targets that
// are already gone are ignored.
func (s *Session) ForceKill() error {
	if s.driver != nil {
		if err := s.driver.Stop(); err != nil {
			return fmt.Errorf("stop playwright driver: %w", err)
		}
		return nil
	}
	if err := s.Context.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
		return fmt.Errorf("close context: %w", err)
	}
	return nil
}

// Navigate loads url in the session's page.
func (s *Session) Navigate(url string) error {
	if _, err := s.Page.Goto(url); err != nil {
		return s.classify("navigate", err)
	}
	return nil
}

// Title returns the page title.
func (s *Session) Title() (string, error) {
	title, err := s.Page.Title()
	return title, s.classify("title", err)
}

// URL returns the URL of the page.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Content returns the serialized HTML of the page.
func (s *Session) Content() (string, error) {
	content, err := s.Page.Content()
	return content, s.classify("page content", err)
}

// FrameURL returns window.location.href as seen by the page's scripts.
func (s *Session) FrameURL() (string, error) {
	v, err := s.Page.Evaluate("() => window.location.href")
	if err != nil {
		return "", s.classify("frame url", err)
	}
	href, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("frame url: unexpected result type %T", v)
	}
	return href, nil
}

// ClearCookies deletes every cookie of the session's context.
func (s *Session) ClearCookies() error {
	return s.classify("clear cookies", s.Context.ClearCookies())
}

func (s *Session) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return classify(op, err, s.Browser.IsConnected(), s.Page.IsClosed())
}
