package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sessionkeeper/pkg/container"
)

const samplePage = `<html>
<head>
	<title>Sample</title>
	<meta name="description" content="A sample page">
	<script>var hidden = true;</script>
</head>
<body>
	<h1>Welcome</h1>
	<p>Hello <b>brave</b> new world.</p>
</body>
</html>`

func TestPageAccessors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.page.content = samplePage
	f.page.eval = "https://example.com/#top"
	c := newTestContainer(t, f.session)
	w := container.NewWorker()

	require.NoError(t, Navigate(ctx, c, w, "https://example.com"))
	assert.True(t, c.HasSession(w))

	url, err := CurrentURL(ctx, c, w)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", url)

	frameURL, err := CurrentFrameURL(ctx, c, w)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/#top", frameURL)

	source, err := PageSource(ctx, c, w)
	require.NoError(t, err)
	assert.Equal(t, samplePage, source)

	text, err := PageText(ctx, c, w, 0)
	require.NoError(t, err)
	assert.Equal(t, "Sample", text.Title)
	assert.Equal(t, "Welcome\nHello brave new world.", text.Text)
}

func TestPageAccessors_ListenerWrappedSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := newTestContainer(t, f.session)
	require.NoError(t, c.AddListener(container.ListenerSpec{
		Name:     "noop",
		Listener: container.ListenerFunc(func(container.Event) {}),
	}))
	w := container.NewWorker()

	url, err := CurrentURL(ctx, c, w)
	require.NoError(t, err)
	assert.Equal(t, "about:blank", url)
}

func TestPageAccessors_NotBrowserSession(t *testing.T) {
	ctx := context.Background()
	c := newTestContainer(t, otherSession{})
	w := container.NewWorker()

	_, err := CurrentURL(ctx, c, w)
	assert.ErrorIs(t, err, ErrNotBrowserSession)

	assert.ErrorIs(t, ClearCache(c, w), ErrNotBrowserSession)
}

func TestPageAccessors_FactoryError(t *testing.T) {
	boom := errors.New("launch failed")
	c := container.New(container.FactoryFunc(func(context.Context, *container.Proxy) (container.Session, error) {
		return nil, boom
	}))
	t.Cleanup(c.Close)

	_, err := PageSource(context.Background(), c, container.NewWorker())
	assert.ErrorIs(t, err, boom)
}

func TestClearCache(t *testing.T) {
	f := newFixture()
	c := newTestContainer(t, f.session)
	w := container.NewWorker()

	// No session yet: nothing is created.
	require.NoError(t, ClearCache(c, w))
	assert.False(t, c.HasSession(w))
	assert.Zero(t, f.context.cleared)

	_, err := CurrentURL(context.Background(), c, w)
	require.NoError(t, err)

	require.NoError(t, ClearCache(c, w))
	assert.Equal(t, 1, f.context.cleared)
	assert.True(t, c.HasSession(w))
}
