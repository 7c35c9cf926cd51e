// Package browser is the DOM query and mutation surface the crawler drives.
// The crawler only sees the Page and Element interfaces; the go-rod adapter
// in this package and the in-memory fake in browsertest implement them.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by bounded waits whose condition never held.
var ErrTimeout = errors.New("browser: wait timed out")

// Scope is anything that can be queried with a CSS selector.
// Elements never waits: an empty slice means nothing matched right now.
type Scope interface {
	Elements(selector string) ([]Element, error)
}

// Element is a handle to one DOM node. Handles go stale when the
// document they came from is replaced.
type Element interface {
	Scope

	// Closest returns the nearest ancestor-or-self matching selector.
	Closest(selector string) (Element, bool)
	Parent() (Element, bool)

	// Text is the rendered text of the node and its descendants.
	Text() (string, error)
	// OwnText is the text of the node's direct text children only.
	OwnText() (string, error)
	Attribute(name string) (string, bool, error)

	ScrollIntoView() error
	// Activate dispatches a scripted click rather than a pointer event.
	Activate() error
	Input(text string) error
}

// Page is the single tab a crawl runs in.
type Page interface {
	Scope

	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)

	// WaitFor blocks until selector matches at least one element.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// WaitURLChange reports whether the URL moved away from "from" in time.
	WaitURLChange(ctx context.Context, from string, timeout time.Duration) bool
	// WaitStale reports whether el was detached from the document in time.
	WaitStale(ctx context.Context, el Element, timeout time.Duration) bool
}

// Waiter performs the fixed settle delays used where the page gives no
// completion signal. Tests inject one that returns immediately.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(ctx context.Context, d time.Duration) error

func (f WaiterFunc) Wait(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// Sleep is the wall-clock Waiter.
var Sleep Waiter = WaiterFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
})
