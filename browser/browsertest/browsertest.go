// Package browsertest serves canned HTML documents behind the browser.Page
// interface so crawl logic can be exercised without Chromium.
//
// Element behaviour on Activate is driven by attributes:
//
//	data-href="URL"   navigates the page (relative URLs resolve against the current one)
//	data-reveal="…"   appends the HTML to the element's parent
//	data-login        marks the session as signed in before any navigation
//	data-panic="MSG"  panics with MSG, like a driver call blowing up mid-section
//
// Routes registered with Authed are served instead of plain routes once
// the session is signed in.
package browsertest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/jobscout/browser"
	"golang.org/x/net/html"
)

// Site is a set of routes shared by the pages opened on it.
type Site struct {
	routes map[string]string
	authed map[string]string
}

// NewSite returns an empty site.
func NewSite() *Site {
	return &Site{routes: map[string]string{}, authed: map[string]string{}}
}

// Route registers the document served at url.
func (s *Site) Route(url, body string) *Site {
	s.routes[url] = body
	return s
}

// Authed registers the document served at url after login.
func (s *Site) Authed(url, body string) *Site {
	s.authed[url] = body
	return s
}

// Page is a fake browser tab. It records every navigation and activation.
type Page struct {
	site *Site

	mu       sync.Mutex
	url      string
	doc      *goquery.Document
	gen      int
	loggedIn bool

	Visits      []string
	Activations []string
	Inputs      map[string]string
}

var _ browser.Page = (*Page)(nil)

// Open returns a blank page on the site.
func (s *Site) Open() *Page {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	return &Page{site: s, url: "about:blank", doc: doc, Inputs: map[string]string{}}
}

// VisitCount returns how many times url was navigated to.
func (p *Page) VisitCount(url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, v := range p.Visits {
		if v == url {
			n++
		}
	}
	return n
}

// LoggedIn reports whether a data-login element was activated.
func (p *Page) LoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loggedIn
}

func (p *Page) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(target)
}

// load replaces the document. Callers hold mu.
func (p *Page) load(target string) error {
	abs := resolve(p.url, target)
	body, ok := "", false
	if p.loggedIn {
		body, ok = p.site.authed[abs]
	}
	if !ok {
		body, ok = p.site.routes[abs]
	}
	if !ok {
		return fmt.Errorf("browsertest: no route for %s", abs)
	}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return err
	}
	p.doc = goquery.NewDocumentFromNode(root)
	p.url = abs
	p.gen++
	p.Visits = append(p.Visits, abs)
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *Page) Elements(selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wrap(p.doc.Find(selector)), nil
}

func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc.Find(selector).Length() > 0 {
		return nil
	}
	return browser.ErrTimeout
}

func (p *Page) WaitURLChange(ctx context.Context, from string, timeout time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url != from
}

func (p *Page) WaitStale(ctx context.Context, el browser.Element, timeout time.Duration) bool {
	e, ok := el.(*Element)
	if !ok {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return e.gen != p.gen
}

// wrap splits a selection into one Element per node. Callers hold mu.
func (p *Page) wrap(sel *goquery.Selection) []browser.Element {
	out := make([]browser.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, sel: s, gen: p.gen})
	})
	return out
}

// Element is a node of the current document.
type Element struct {
	page *Page
	sel  *goquery.Selection
	gen  int
}

var _ browser.Element = (*Element)(nil)

func (e *Element) stale() error {
	if e.gen != e.page.gen {
		return fmt.Errorf("browsertest: stale element reference")
	}
	return nil
}

func (e *Element) Elements(selector string) ([]browser.Element, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.stale(); err != nil {
		return nil, err
	}
	return e.page.wrap(e.sel.Find(selector)), nil
}

func (e *Element) Closest(selector string) (browser.Element, bool) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.stale() != nil {
		return nil, false
	}
	c := e.sel.Closest(selector)
	if c.Length() == 0 {
		return nil, false
	}
	return &Element{page: e.page, sel: c.First(), gen: e.gen}, true
}

func (e *Element) Parent() (browser.Element, bool) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.stale() != nil {
		return nil, false
	}
	parent := e.sel.Parent()
	if parent.Length() == 0 {
		return nil, false
	}
	return &Element{page: e.page, sel: parent, gen: e.gen}, true
}

func (e *Element) Text() (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.stale(); err != nil {
		return "", err
	}
	return collapse(e.sel.Text()), nil
}

func (e *Element) OwnText() (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.stale(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range e.sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String(), nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.stale(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *Element) ScrollIntoView() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.stale()
}

func (e *Element) Activate() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.stale(); err != nil {
		return err
	}
	e.page.Activations = append(e.page.Activations, collapse(e.sel.Text()))
	if msg, ok := e.sel.Attr("data-panic"); ok {
		panic(msg)
	}
	if _, ok := e.sel.Attr("data-login"); ok {
		e.page.loggedIn = true
	}
	if reveal, ok := e.sel.Attr("data-reveal"); ok {
		e.sel.Parent().AppendHtml(reveal)
		e.sel.RemoveAttr("data-reveal")
	}
	if href, ok := e.sel.Attr("data-href"); ok {
		return e.page.load(href)
	}
	return nil
}

func (e *Element) Input(text string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if err := e.stale(); err != nil {
		return err
	}
	key := e.sel.AttrOr("data-testid", e.sel.AttrOr("name", e.sel.AttrOr("type", "input")))
	e.page.Inputs[key] = text
	e.sel.SetAttr("value", text)
	return nil
}

// NopWaiter returns immediately and totals the delays it was asked for.
type NopWaiter struct {
	mu    sync.Mutex
	Calls int
	Total time.Duration
}

func (w *NopWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.Calls++
	w.Total += d
	w.mu.Unlock()
	return ctx.Err()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return r.String()
	}
	return b.ResolveReference(r).String()
}
