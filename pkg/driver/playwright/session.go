package playwright

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pageobjects/pkg/pageobject"
)

// Default session settings.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultTimeout        = 30 * time.Second
)

// Viewport is the browser viewport size.
type Viewport struct {
	Width  int
	Height int
}

// Options configures Launch.
type Options struct {
	// Headless runs the browser without a window.
	Headless bool

	// Viewport defaults to DefaultViewportWidth x DefaultViewportHeight.
	Viewport *Viewport

	// Timeout is the default timeout of page operations.
	Timeout time.Duration

	// WaitUntil is the navigation lifecycle event Navigate waits for:
	// "load", "domcontentloaded" or "networkidle".
	WaitUntil string

	// SkipInstall assumes the driver and browsers are already installed.
	SkipInstall bool

	// Output receives driver installation output. Discarded when nil.
	Output io.Writer
}

// Session owns a running playwright driver and one Chromium page.
type Session struct {
	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page

	pw        *playwright.Playwright
	opts      Options
	closeOnce sync.Once
	closeErr  error
}

// Launch installs and starts playwright, then opens a Chromium page.
func Launch(opts Options) (*Session, error) {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  out,
		Stderr:  out,
	}
	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.Timeout / time.Millisecond))

	return &Session{
		Browser: browser,
		Context: bctx,
		Page:    page,
		pw:      pw,
		opts:    opts,
	}, nil
}

// Root returns the session's page as a browsing context.
func (s *Session) Root() pageobject.Context {
	return Page(s.Page)
}

// Navigate loads url in the session's page.
func (s *Session) Navigate(url string) error {
	gotoOpts := playwright.PageGotoOptions{}
	if s.opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(s.opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if _, err := s.Page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// SetContent replaces the page's document with html.
func (s *Session) SetContent(html string) error {
	if err := s.Page.SetContent(html); err != nil {
		return fmt.Errorf("set content failed: %w", err)
	}
	return nil
}

// Close releases the page, context, browser and driver. It is safe to call
// more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.Page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.Context.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
		if s.pw != nil {
			if err := s.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
			}
		}
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors closing session: %w", errors.Join(errs...))
		}
	})
	return s.closeErr
}
