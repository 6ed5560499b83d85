package browser

import (
	"context"
	"fmt"

	"github.com/entrhq/sessionkeeper/pkg/container"
)

// DefaultTextLength caps PageText when the caller passes no limit.
const DefaultTextLength = 20000

// sessionFor returns the browser session of w, creating one if needed.
func sessionFor(ctx context.Context, c *container.Container, w container.Worker) (*Session, error) {
	s, err := c.GetSession(ctx, w)
	if err != nil {
		return nil, err
	}
	return asBrowserSession(s)
}

func asBrowserSession(s container.Session) (*Session, error) {
	bs, ok := container.Unwrap(s).(*Session)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBrowserSession, s.ID())
	}
	return bs, nil
}

// Navigate opens url in the worker's page.
func Navigate(ctx context.Context, c *container.Container, w container.Worker, url string) error {
	s, err := sessionFor(ctx, c, w)
	if err != nil {
		return err
	}
	return s.Navigate(url)
}

// PageSource returns the HTML of the worker's current page.
func PageSource(ctx context.Context, c *container.Container, w container.Worker) (string, error) {
	s, err := sessionFor(ctx, c, w)
	if err != nil {
		return "", err
	}
	return s.Content()
}

// CurrentURL returns the URL of the worker's current page.
func CurrentURL(ctx context.Context, c *container.Container, w container.Worker) (string, error) {
	s, err := sessionFor(ctx, c, w)
	if err != nil {
		return "", err
	}
	return s.URL(), nil
}

// CurrentFrameURL returns window.location.href evaluated in the worker's page.
func CurrentFrameURL(ctx context.Context, c *container.Container, w container.Worker) (string, error) {
	s, err := sessionFor(ctx, c, w)
	if err != nil {
		return "", err
	}
	return s.FrameURL()
}

// PageText returns the visible text of the worker's current page, at most
// maxLength bytes. maxLength <= 0 selects DefaultTextLength.
func PageText(ctx context.Context, c *container.Container, w container.Worker, maxLength int) (*Text, error) {
	if maxLength <= 0 {
		maxLength = DefaultTextLength
	}
	content, err := PageSource(ctx, c, w)
	if err != nil {
		return nil, err
	}
	return extractText(content, maxLength)
}

// ClearCache deletes the cookies of the worker's session. A worker without a
// session is left without one.
func ClearCache(c *container.Container, w container.Worker) error {
	s, ok := c.CurrentSession(w)
	if !ok {
		return nil
	}
	bs, err := asBrowserSession(s)
	if err != nil {
		return err
	}
	return bs.ClearCookies()
}
