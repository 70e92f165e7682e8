// Package browser loads javascript-rendered pages through a headless chrome driven by rod.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-harvester/internal/assert"
	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/scrapers/detail"
	"storefront-harvester/internal/storefront"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const (
	report_browser_launch   = "browser.launch"
	report_browser_document = "browser.document"
	report_browser_close    = "browser.close"
)

type Options struct {
	// RemoteURL is the devtools websocket url of an already running chrome, empty launches
	// a local one.
	RemoteURL string
	// Bin overrides the chrome binary the launcher uses, empty lets rod find (or download) one.
	Bin string
	// NavigationTimeout bounds a single page load, 0 uses DefaultNavigationTimeout.
	NavigationTimeout time.Duration
	// Settle is how long to wait after DOMContentLoaded for client side rendering to finish.
	Settle time.Duration
}

const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultSettle            = 2500 * time.Millisecond
)

func DefaultOptions() Options {
	return Options{
		NavigationTimeout: DefaultNavigationTimeout,
		Settle:            DefaultSettle,
	}
}

// Launcher starts one browser per run.
type Launcher struct {
	opts Options
	tel  telemetry.API
}

func NewLauncher(opts Options, tel telemetry.API) Launcher {
	assert.NotNil(tel)
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.Settle < 0 {
		opts.Settle = DefaultSettle
	}
	return Launcher{
		opts: opts,
		tel:  telemetry.NewScopedAPI("browser", tel),
	}
}

func (l Launcher) Open(ctx context.Context) (detail.PageSource, error) {
	browserCtx, cancel := context.WithCancel(context.Background())

	var lnch *launcher.Launcher
	controlURL := l.opts.RemoteURL
	if controlURL == "" {
		lnch = launcher.New().
			Context(ctx).
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		if l.opts.Bin != "" {
			lnch = lnch.Bin(l.opts.Bin)
		}

		u, err := lnch.Launch()
		if err != nil {
			cancel()
			l.tel.ReportBroken(report_browser_launch, err)
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		l.tel.ReportDebug("launched local chrome", controlURL)
	} else {
		l.tel.ReportDebug("connecting to remote chrome", controlURL)
	}

	b := rod.New().Context(browserCtx).ControlURL(controlURL)
	err := b.Connect()
	if err != nil {
		cancel()
		if lnch != nil {
			lnch.Kill()
			lnch.Cleanup()
		}
		l.tel.ReportBroken(report_browser_launch, err, controlURL)
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &Session{
		browser:  b,
		launcher: lnch,
		cancel:   cancel,
		opts:     l.opts,
		tel:      l.tel,
	}, nil
}

// Session is a single run's browser, pages are opened per document and closed right after.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cancel   context.CancelFunc
	opts     Options
	tel      telemetry.API
}

func (s *Session) Document(ctx context.Context, url string) (*goquery.Document, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	html, err := s.render(ctx, page, url)
	if err != nil {
		s.tel.ReportWarning(report_browser_document, err, url)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.tel.ReportWarning(report_browser_document, fmt.Errorf("parse: %w", err), url)
		return nil, err
	}
	return doc, nil
}

func (s *Session) render(ctx context.Context, page *rod.Page, url string) (string, error) {
	navCtx, cancel := context.WithTimeout(ctx, s.opts.NavigationTimeout)
	defer cancel()
	page = page.Context(navCtx)

	err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      storefront.UserAgent,
		AcceptLanguage: storefront.Locale,
	})
	if err != nil {
		return "", fmt.Errorf("set user agent: %w", err)
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             storefront.ViewportWidth,
		Height:            storefront.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return "", fmt.Errorf("set viewport: %w", err)
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	err = page.Navigate(url)
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()

	if s.opts.Settle > 0 {
		timer := time.NewTimer(s.opts.Settle)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-navCtx.Done():
			return "", fmt.Errorf("settle %s: %w", url, navCtx.Err())
		}
	}

	res, err := page.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("read dom %s: %w", url, err)
	}
	return res.Value.Str(), nil
}

// Close shuts down a locally launched chrome, a remote one is only disconnected from.
func (s *Session) Close() error {
	defer s.cancel()

	if s.launcher == nil {
		return nil
	}
	err := s.browser.Close()
	if err != nil {
		s.tel.ReportWarning(report_browser_close, err)
	}
	s.launcher.Cleanup()
	return err
}
