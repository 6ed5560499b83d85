package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sessionkeeper/pkg/container"
)

// ErrNotBrowserSession is returned by the page accessors when the worker's
// session was not created by this package.
var ErrNotBrowserSession = errors.New("session is not a playwright browser session")

// classify maps a playwright failure to a container error kind. The browser
// and page states are checked first because playwright reports most
// vanished-target failures as a generic "target closed".
func classify(op string, err error, browserConnected, pageClosed bool) error {
	if err == nil {
		return nil
	}
	switch {
	case !browserConnected:
		return fmt.Errorf("%s: %w: %w", op, container.ErrUnreachable, err)
	case pageClosed:
		return fmt.Errorf("%s: %w: %w", op, container.ErrWindowNotFound, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%s: %w: %w", op, container.ErrSessionNotFound, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
