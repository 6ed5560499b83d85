package browser

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sessionkeeper/pkg/container"
	"github.com/entrhq/sessionkeeper/pkg/logging"
)

// The fakes embed the playwright interfaces and override only what the
// package calls; anything else panics on the nil embedded value.

type fakeBrowser struct {
	playwright.Browser
	connected bool
	closeErr  error
	closed    int
}

func (b *fakeBrowser) IsConnected() bool { return b.connected }

func (b *fakeBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	b.closed++
	return b.closeErr
}

type fakeContext struct {
	playwright.BrowserContext
	clearErr error
	cleared  int
	closeErr error
	closed   int
}

func (c *fakeContext) ClearCookies(options ...playwright.BrowserContextClearCookiesOptions) error {
	c.cleared++
	return c.clearErr
}

func (c *fakeContext) Close(options ...playwright.BrowserContextCloseOptions) error {
	c.closed++
	return c.closeErr
}

type fakePage struct {
	playwright.Page
	closed     bool
	title      string
	titleErr   error
	url        string
	content    string
	contentErr error
	eval       interface{}
	evalErr    error
	gotoErr    error
	visited    []string
}

func (p *fakePage) IsClosed() bool { return p.closed }

func (p *fakePage) Title() (string, error) { return p.title, p.titleErr }

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Content() (string, error) { return p.content, p.contentErr }

func (p *fakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	return p.eval, p.evalErr
}

func (p *fakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.gotoErr != nil {
		return nil, p.gotoErr
	}
	p.visited = append(p.visited, url)
	p.url = url
	return nil, nil
}

type fakeDriver struct {
	stopped int
	err     error
}

func (d *fakeDriver) Stop() error {
	d.stopped++
	return d.err
}

type fixture struct {
	browser *fakeBrowser
	context *fakeContext
	page    *fakePage
	session *Session
}

func newFixture() *fixture {
	f := &fixture{
		browser: &fakeBrowser{connected: true},
		context: &fakeContext{},
		page:    &fakePage{title: "Example", url: "about:blank"},
	}
	f.session = &Session{
		id:        "s1",
		engine:    "chromium",
		Browser:   f.browser,
		Context:   f.context,
		Page:      f.page,
		CreatedAt: time.Now(),
	}
	return f
}

// newTestContainer returns a container whose factory hands out s.
func newTestContainer(t *testing.T, s container.Session) *container.Container {
	t.Helper()
	factory := container.FactoryFunc(func(ctx context.Context, proxy *container.Proxy) (container.Session, error) {
		return s, nil
	})
	settings := container.DefaultSettings()
	settings.CloseTimeout = time.Second
	c := container.New(factory,
		container.WithLogger(logging.NewWriterLogger("test", io.Discard)),
		container.WithSettings(container.StaticSettings(settings)),
	)
	t.Cleanup(func() {
		_ = c.Shutdown(context.Background())
	})
	return c
}

type otherSession struct{}

func (otherSession) ID() string     { return "other" }
func (otherSession) Probe() error   { return nil }
func (otherSession) Destroy() error { return nil }
