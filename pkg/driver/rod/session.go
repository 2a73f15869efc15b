package rod

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/entrhq/pageobjects/pkg/pageobject"
)

// DefaultTimeout bounds navigation when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures Launch.
type Options struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. When empty
	// a local Chrome is launched.
	RemoteURL string

	Headless bool

	// Width and Height set the viewport when both are positive.
	Width  int
	Height int

	Timeout time.Duration
}

// Session owns a connected rod browser and one page.
type Session struct {
	Browser *rod.Browser
	Page    *rod.Page

	lnch      *launcher.Launcher
	timeout   time.Duration
	closeOnce sync.Once
	closeErr  error
}

// Launch starts or connects to Chrome and opens a blank page.
func Launch(opts Options) (*Session, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	s := &Session{timeout: opts.Timeout}
	wsURL := opts.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(opts.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		s.kill()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.Browser = b

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("browser: new page: %w", err)
	}
	s.Page = page

	if opts.Width > 0 && opts.Height > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("browser: viewport: %w", err)
		}
	}
	return s, nil
}

// Root returns the session's page as a browsing context.
func (s *Session) Root() pageobject.Context {
	return Page(s.Page)
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(url string) error {
	p := s.Page.Timeout(s.timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// SetContent replaces the page's document with html.
func (s *Session) SetContent(html string) error {
	if err := s.Page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("set content failed: %w", err)
	}
	return nil
}

// Close closes the browser and, when it was launched locally, kills the
// Chrome process. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.Browser != nil {
			if err := s.Browser.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.kill()
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors closing session: %w", errors.Join(errs...))
		}
	})
	return s.closeErr
}

func (s *Session) kill() {
	if s.lnch != nil {
		s.lnch.Kill()
		s.lnch.Cleanup()
	}
}
