package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/container"
)

func TestDefaultFactoryOptions(t *testing.T) {
	opts := DefaultFactoryOptions()

	assert.Equal(t, "chromium", opts.Engine)
	assert.True(t, opts.Headless)
	assert.Equal(t, Viewport{Width: 1280, Height: 720}, opts.Viewport)
	assert.Equal(t, 30*time.Second, opts.PageTimeout)
	assert.Nil(t, opts.Proxy)
}

func TestFactoryOptionsFromConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	doc := `sections:
  browser:
    engine: firefox
    headless: false
    viewport_width: 800
    viewport_height: 600
    page_timeout: 10s
    proxy_server: http://proxy:3128
    proxy_bypass: [localhost, .internal]
    proxy_username: bob
    proxy_password: secret
    isolated_driver: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(doc), 0600))
	require.NoError(t, config.Initialize(configPath))

	opts := FactoryOptionsFromConfig()
	assert.Equal(t, "firefox", opts.Engine)
	assert.False(t, opts.Headless)
	assert.Equal(t, Viewport{Width: 800, Height: 600}, opts.Viewport)
	assert.Equal(t, 10*time.Second, opts.PageTimeout)
	assert.True(t, opts.IsolatedDriver)
	require.NotNil(t, opts.Proxy)
	assert.Equal(t, container.Proxy{
		Server:   "http://proxy:3128",
		Bypass:   []string{"localhost", ".internal"},
		Username: "bob",
		Password: "secret",
	}, *opts.Proxy)
}

func TestPlaywrightProxy(t *testing.T) {
	assert.Nil(t, playwrightProxy(nil))
	assert.Nil(t, playwrightProxy(&container.Proxy{}))

	p := playwrightProxy(&container.Proxy{Server: "http://proxy:3128"})
	require.NotNil(t, p)
	assert.Equal(t, "http://proxy:3128", p.Server)
	assert.Nil(t, p.Bypass)
	assert.Nil(t, p.Username)
	assert.Nil(t, p.Password)

	p = playwrightProxy(&container.Proxy{
		Server:   "socks5://proxy:1080",
		Bypass:   []string{"localhost", "*.internal"},
		Username: "bob",
		Password: "secret",
	})
	require.NotNil(t, p)
	require.NotNil(t, p.Bypass)
	assert.Equal(t, "localhost,*.internal", *p.Bypass)
	assert.Equal(t, "bob", *p.Username)
	assert.Equal(t, "secret", *p.Password)
}

func TestContextOptions(t *testing.T) {
	opts := DefaultFactoryOptions()

	ctxOpts := contextOptions(opts, nil)
	require.NotNil(t, ctxOpts.Viewport)
	assert.Equal(t, 1280, ctxOpts.Viewport.Width)
	assert.Equal(t, 720, ctxOpts.Viewport.Height)
	assert.Nil(t, ctxOpts.Proxy)

	opts.Viewport = Viewport{}
	ctxOpts = contextOptions(opts, &container.Proxy{Server: "http://proxy:3128"})
	assert.Nil(t, ctxOpts.Viewport)
	require.NotNil(t, ctxOpts.Proxy)
	assert.Equal(t, "http://proxy:3128", ctxOpts.Proxy.Server)
}

func TestLaunchOptions(t *testing.T) {
	opts := DefaultFactoryOptions()
	opts.Headless = false

	launch := launchOptions(opts)
	require.NotNil(t, launch.Headless)
	assert.False(t, *launch.Headless)
}

func TestSelectEngine(t *testing.T) {
	pw := &playwright.Playwright{}

	for _, engine := range []string{"", "chromium", "firefox", "webkit"} {
		_, err := selectEngine(pw, engine)
		assert.NoError(t, err, engine)
	}

	_, err := selectEngine(pw, "netscape")
	assert.ErrorContains(t, err, `unsupported browser engine "netscape"`)
}

func TestFactory_CreateCanceled(t *testing.T) {
	f := NewFactory(DefaultFactoryOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := f.Create(ctx, nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFactory_StopWithoutInitialize(t *testing.T) {
	f := NewFactory(DefaultFactoryOptions())
	assert.NoError(t, f.Stop())
}
