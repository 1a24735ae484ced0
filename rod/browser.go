package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/sitechat"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRecycleAfter is the number of pages a browser opens before it is
// replaced by a fresh one.
const DefaultRecycleAfter = 75

// Browser owns a headless Chrome process and hands out pages from it.
// Chrome memory grows with every page and never returns to its baseline,
// so the process is relaunched after a fixed number of pages.
//
// Browser is safe for concurrent use.
type Browser struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	opened       int
	recycleAfter int
	userAgent    string
	closed       atomic.Bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithRecycleAfter sets how many pages are opened before Chrome is relaunched.
func WithRecycleAfter(n int) BrowserOption {
	return func(b *Browser) {
		b.recycleAfter = n
	}
}

// WithBrowserUserAgent overrides the User-Agent Chrome sends.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// NewBrowser launches headless Chrome. Close must be called when the
// Browser is no longer needed.
func NewBrowser(opts ...BrowserOption) (*Browser, error) {
	b := &Browser{recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(b)
	}
	if b.recycleAfter <= 0 {
		b.recycleAfter = DefaultRecycleAfter
	}

	browser, lnchr, err := launch()
	if err != nil {
		return nil, err
	}
	b.browser, b.launcher = browser, lnchr
	return b, nil
}

// Page opens a blank tab, relaunching Chrome first when the current process
// has opened its share of pages. The caller must close the page.
func (b *Browser) Page() (*rod.Page, error) {
	if b.closed.Load() {
		return nil, sitechat.Errorf(sitechat.EINVALID, "browser is closed")
	}

	b.mu.Lock()
	if b.browser == nil {
		b.mu.Unlock()
		return nil, sitechat.Errorf(sitechat.EINVALID, "browser is closed")
	}
	if b.opened >= b.recycleAfter {
		b.recycle()
	}
	b.opened++
	browser := b.browser
	b.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	if b.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("setting user agent: %w", err)
		}
	}
	return page, nil
}

// Closed reports whether Close has been called.
func (b *Browser) Closed() bool {
	return b.closed.Load()
}

// PID returns the process ID of the Chrome launcher, or zero once closed.
func (b *Browser) PID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

// Close shuts Chrome down. It is safe to call more than once.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err := shutdown(b.browser, b.launcher)
	b.browser, b.launcher = nil, nil
	return err
}

// recycle swaps in a freshly launched Chrome. When the launch fails the old
// process stays in service and the counter is left alone, so the next page
// tries again. Must be called with mu held.
func (b *Browser) recycle() {
	browser, lnchr, err := launch()
	if err != nil {
		return
	}
	_ = shutdown(b.browser, b.launcher)
	b.browser, b.launcher = browser, lnchr
	b.opened = 0
}

// launch starts headless Chrome with flags that keep background tabs from
// being throttled.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}

func shutdown(browser *rod.Browser, lnchr *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if lnchr != nil {
		lnchr.Kill()
	}
	return err
}
