// Package browser provides the Playwright-backed sessions managed by
// package container.
//
// A Factory launches (or connects to) a browser for every session it creates:
// one browser, one context and one page per worker. The resulting Session
// implements container.Session and container.Killer:
//
//   - Probe reads the page title; a closed page, a disconnected browser or a
//     "target closed" failure is reported as a classified container error so
//     the container can recreate the session
//   - Destroy closes the browser; a browser that is already gone counts as
//     closed
//   - ForceKill stops the session's dedicated Playwright driver when the
//     factory runs with isolated drivers, or tears down the context otherwise.
//     Only the isolated driver gives a real kill: closing the context goes
//     through the connection a hanging Close is stuck on
//
// # Page Accessors
//
// PageSource, CurrentURL, CurrentFrameURL and PageText act on the session of
// a worker, creating it if needed. ClearCache never creates one.
//
// # Configuration
//
// FactoryOptionsFromConfig builds factory options from the browser section of
// the global configuration:
//
//   - engine: chromium, firefox or webkit (default: chromium)
//   - headless: launch without a window (default: true)
//   - remote_url: connect to a running Playwright server instead of launching
//   - proxy_*: proxy used when no proxy was set on the container
//
// # Example Usage
//
//	factory := browser.NewFactory(browser.FactoryOptionsFromConfig())
//	defer factory.Stop()
//
//	c := container.New(factory)
//	defer c.Shutdown(context.Background())
//
//	c.Go(func(w *container.Handle) {
//	    defer c.Release(w)
//	    if err := browser.Navigate(ctx, c, w, "https://example.com"); err != nil {
//	        return
//	    }
//	    url, _ := browser.CurrentURL(ctx, c, w)
//	})
package browser
