package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/jobscout/browser"
)

// Revealer clicks "view contact" style triggers so hidden values are
// rendered before extraction.
type Revealer struct {
	Waiter browser.Waiter
	// PreClick is waited after scrolling the trigger into view.
	PreClick time.Duration
	// Settle is waited after activation. It is a fixed delay, not a poll.
	Settle time.Duration
}

// Reveal activates the first trigger found by the strategies and waits for
// the page to settle. It returns false when no trigger exists or the
// activation failed; extraction then falls through to the sentinel.
func (r *Revealer) Reveal(ctx context.Context, t Target, triggers []Strategy) bool {
	el, ok := First(triggers, func(s Strategy) (browser.Element, bool) {
		return s.Locate(t)
	})
	if !ok {
		return false
	}

	if err := el.ScrollIntoView(); err != nil {
		slog.Debug("reveal: scroll into view failed", "error", err)
	}
	if err := r.wait(ctx, r.PreClick); err != nil {
		return false
	}
	if err := el.Activate(); err != nil {
		slog.Debug("reveal: activation failed", "error", err)
		return false
	}
	return r.wait(ctx, r.Settle) == nil
}

func (r *Revealer) wait(ctx context.Context, d time.Duration) error {
	w := r.Waiter
	if w == nil {
		w = browser.Sleep
	}
	return w.Wait(ctx, d)
}
