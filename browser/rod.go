package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/jobscout/config"
	"github.com/use-agent/jobscout/models"
	"github.com/ysmood/gson"
	"golang.org/x/time/rate"
)

// Browser owns the Chromium process for one crawl run.
type Browser struct {
	browser *rod.Browser
	cfg     config.BrowserConfig
}

// Launch starts Chromium with stealth flags and connects to it.
func Launch(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("lang"), "id-ID")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	return &Browser{browser: b, cfg: cfg}, nil
}

// Close kills the browser process. Safe to defer right after Launch.
func (b *Browser) Close() {
	slog.Info("closing browser")
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// RodPage is the Page implementation backed by a rod tab.
type RodPage struct {
	page    *rod.Page
	router  *rod.HijackRouter
	limiter *rate.Limiter
}

// NewPage opens the crawl tab. Operations on it are bound to ctx.
//
// Setup order:
//
//  1. Create target
//  2. Stealth injection      – before the first navigation
//  3. Extra headers          – Accept-Language for the Indonesian console
//  4. Hijack mount           – block heavy resource types
//  5. Context binding
func (b *Browser) NewPage(ctx context.Context) (*RodPage, error) {
	// ── 1. Create target ─────────────────────────────────────────────
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to create page", err)
	}

	// ── 2. Stealth injection ─────────────────────────────────────────
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	// ── 3. Extra headers ─────────────────────────────────────────────
	if b.cfg.AcceptLanguage != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": b.cfg.AcceptLanguage}),
		}.Call(page)
	}

	// ── 4. Hijack mount ──────────────────────────────────────────────
	router := setupHijack(page, b.cfg.BlockedResourceTypes)

	// ── 5. Context binding ───────────────────────────────────────────
	interval := rate.Inf
	if b.cfg.NavigationInterval > 0 {
		interval = rate.Every(b.cfg.NavigationInterval)
	}
	return &RodPage{
		page:    page.Context(ctx),
		router:  router,
		limiter: rate.NewLimiter(interval, 1),
	}, nil
}

// Close stops request interception and closes the tab.
func (p *RodPage) Close() {
	if p.router != nil {
		_ = p.router.Stop()
	}
	_ = p.page.Close()
}

func (p *RodPage) Navigate(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return categorizeError(err, "navigation rate limit wait aborted")
	}
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return categorizeError(err, "navigation failed")
	}
	if err := pg.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "url", url, "error", err)
	}
	return nil
}

func (p *RodPage) URL(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => window.location.href`)
	if err != nil {
		return "", categorizeError(err, "failed to read location")
	}
	return res.Value.Str(), nil
}

func (p *RodPage) Elements(selector string) ([]Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

func (p *RodPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.page.Context(ctx).Timeout(timeout).WaitElementsMoreThan(selector, 0)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return ErrTimeout
	}
	return err
}

func (p *RodPage) WaitURLChange(ctx context.Context, from string, timeout time.Duration) bool {
	err := p.page.Context(ctx).Timeout(timeout).Wait(rod.Eval(`(from) => window.location.href !== from`, from))
	return err == nil
}

func (p *RodPage) WaitStale(ctx context.Context, el Element, timeout time.Duration) bool {
	re, ok := el.(*rodElement)
	if !ok {
		return false
	}
	deadline := time.Now().Add(timeout)
	for {
		res, err := re.el.Eval(`() => this.isConnected`)
		if err != nil || !res.Value.Bool() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// rodElement adapts *rod.Element to Element.
type rodElement struct {
	el *rod.Element
}

func wrapAll(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

func (e *rodElement) Elements(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

func (e *rodElement) Closest(selector string) (Element, bool) {
	// NotFoundSleeper makes a null result fail immediately instead of polling.
	found, err := e.el.Sleeper(rod.NotFoundSleeper).
		ElementByJS(rod.Eval(`(sel) => this.closest(sel)`, selector))
	if err != nil || found == nil {
		return nil, false
	}
	return &rodElement{el: found}, true
}

func (e *rodElement) Parent() (Element, bool) {
	parent, err := e.el.Parent()
	if err != nil || parent == nil {
		return nil, false
	}
	return &rodElement{el: parent}, true
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) OwnText() (string, error) {
	res, err := e.el.Eval(`() => Array.from(this.childNodes)
		.filter((n) => n.nodeType === Node.TEXT_NODE)
		.map((n) => n.textContent)
		.join('')`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) ScrollIntoView() error {
	return e.el.ScrollIntoView()
}

func (e *rodElement) Activate() error {
	_, err := e.el.Eval(`() => this.click()`)
	return err
}

func (e *rodElement) Input(text string) error {
	return e.el.Input(text)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed CrawlErrors.
func categorizeError(err error, msg string) *models.CrawlError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCrawlError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCrawlError(models.ErrCodeCanceled, "crawl canceled", err)
	default:
		return models.NewCrawlError(models.ErrCodeNavigation, msg, err)
	}
}
