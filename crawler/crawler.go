// Package crawler walks the employer console: list tabs, paginated job
// listings, and the paginated candidate list behind every active posting.
// All work happens on one page in one goroutine.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/jobscout/browser"
	"github.com/use-agent/jobscout/config"
	"github.com/use-agent/jobscout/extract"
	"github.com/use-agent/jobscout/models"
	"github.com/use-agent/jobscout/monitoring"
	"github.com/use-agent/jobscout/sink"
)

// Options wires a Crawler to its collaborators.
type Options struct {
	Site    config.SiteConfig
	Timing  config.TimingConfig
	Waiter  browser.Waiter
	Metrics *monitoring.Metrics
	Logger  *slog.Logger

	// Sink receives the accumulated rows at the end of Run. Nil skips the handoff.
	Sink   sink.Sink
	Layout sink.Layout
	Now    func() time.Time
}

// Crawler drives one browser page through a crawl.
type Crawler struct {
	page    browser.Page
	site    config.SiteConfig
	timing  config.TimingConfig
	waiter  browser.Waiter
	reveal  *extract.Revealer
	metrics *monitoring.Metrics
	log     *slog.Logger
	sink    sink.Sink
	layout  sink.Layout
	now     func() time.Time
}

// New returns a Crawler for page.
func New(page browser.Page, opts Options) *Crawler {
	if opts.Waiter == nil {
		opts.Waiter = browser.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Crawler{
		page:   page,
		site:   opts.Site,
		timing: opts.Timing,
		waiter: opts.Waiter,
		reveal: &extract.Revealer{
			Waiter:   opts.Waiter,
			PreClick: opts.Timing.PreClickSettle,
			Settle:   opts.Timing.RevealSettle,
		},
		metrics: opts.Metrics,
		log:     opts.Logger,
		sink:    opts.Sink,
		layout:  opts.Layout,
		now:     opts.Now,
	}
}

// Run logs in, crawls every list and hands the records to the sink.
//
// Lifecycle:
//
//  1. Login                  – fatal on failure, nothing to flush
//  2. Crawl lists            – soft failures narrow scope; only ctx errors escape
//  3. Handoff                – runs even after a fatal crawl error (partial flush)
func (c *Crawler) Run(ctx context.Context, creds config.Credentials, st *State) error {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.CrawlDuration.Set(time.Since(start).Seconds())
		}
	}()

	// ── 1. Login ─────────────────────────────────────────────────────
	if err := c.Login(ctx, creds); err != nil {
		return err
	}
	c.log.Info("logged in")

	// ── 2. Crawl lists ───────────────────────────────────────────────
	crawlErr := c.crawlLists(ctx, st)
	c.log.Info("crawl finished",
		"jobs", len(st.Jobs),
		"candidates", len(st.Candidates),
		"processed_jobs", st.Processed.Len(),
		"error", crawlErr,
	)

	// ── 3. Handoff ───────────────────────────────────────────────────
	// A canceled ctx must not block the flush of what was collected.
	flushErr := c.flush(context.WithoutCancel(ctx), st)
	return errors.Join(crawlErr, flushErr)
}

func (c *Crawler) flush(ctx context.Context, st *State) error {
	if c.sink == nil {
		return nil
	}
	if err := sink.Handoff(ctx, c.sink, c.layout, st.Jobs, st.Candidates, c.now()); err != nil {
		return models.NewCrawlError(models.ErrCodeSink, "sink handoff failed", err)
	}
	return nil
}

// Login submits the console login form and waits for the redirect.
func (c *Crawler) Login(ctx context.Context, creds config.Credentials) error {
	fail := func(msg string, err error) error {
		if ctx.Err() != nil {
			return models.NewCrawlError(models.ErrCodeCanceled, "login canceled", ctx.Err())
		}
		return models.NewCrawlError(models.ErrCodeLogin, msg, err)
	}

	if err := c.page.Navigate(ctx, c.site.HomeURL); err != nil {
		return fail("failed to open login page", err)
	}
	if err := c.page.WaitFor(ctx, selLoginEmail, c.timing.ElementTimeout); err != nil {
		return fail("login form did not appear", err)
	}

	email, ok := c.firstElement(selLoginEmail)
	if !ok {
		return fail("email field not found", nil)
	}
	if err := email.Input(creds.Username); err != nil {
		return fail("failed to type username", err)
	}

	password, ok := c.firstElement(selLoginPassword)
	if !ok {
		if password, ok = c.firstElement(selPasswordAny); !ok {
			return fail("password field not found", nil)
		}
	}
	if err := password.Input(creds.Password); err != nil {
		return fail("failed to type password", err)
	}

	before, err := c.page.URL(ctx)
	if err != nil {
		return fail("failed to read login URL", err)
	}
	submit, ok := c.firstElement(selLoginSubmit)
	if !ok {
		return fail("submit control not found", nil)
	}
	if err := submit.Activate(); err != nil {
		return fail("failed to submit login form", err)
	}
	if !c.page.WaitURLChange(ctx, before, c.timing.LoginTimeout) {
		return fail(fmt.Sprintf("still on %s after %s", before, c.timing.LoginTimeout), nil)
	}
	return nil
}

func (c *Crawler) firstElement(selector string) (browser.Element, bool) {
	els, err := c.page.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (c *Crawler) sleep(ctx context.Context, d time.Duration) {
	_ = c.waiter.Wait(ctx, d)
}

// recovered runs fn and turns a panic into an error so one bad section
// does not end the page.
func recovered(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// canceled returns a fatal error once ctx is done.
func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return models.NewCrawlError(models.ErrCodeCanceled, "crawl canceled", err)
	}
	return nil
}
