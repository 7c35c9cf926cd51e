package crawler

import (
	"context"

	"github.com/use-agent/jobscout/simhash"
)

// crawlLists applies the list-level rules:
//
//   - list 1 is scraped for its first page only; without an active job
//     there, the crawl ends
//   - lists 2..MaxLists are paged to exhaustion
//   - a list with no jobs, or no active job, ends the loop
//
// Only cancellation is returned as an error.
func (c *Crawler) crawlLists(ctx context.Context, st *State) error {
	if !c.selectList(ctx, 1) {
		c.log.Warn("could not open list 1")
		return canceled(ctx)
	}
	first := c.scrapeJobPage(ctx, st, 1, 1)
	c.log.Info("list done", "list", 1, "jobs", first.jobs, "has_active", first.hasActive)
	if !first.hasActive {
		c.log.Info("no active jobs on list 1, ending crawl")
		return canceled(ctx)
	}

	for list := 2; list <= c.site.MaxLists; list++ {
		if err := canceled(ctx); err != nil {
			return err
		}
		if !c.selectList(ctx, list) {
			c.log.Info("no more lists", "list", list)
			break
		}
		res := c.crawlList(ctx, st, list)
		c.log.Info("list done", "list", list, "jobs", res.jobs, "has_active", res.hasActive)
		if res.jobs == 0 {
			c.log.Info("list had no jobs, assuming it was the last", "list", list)
			break
		}
		if !res.hasActive {
			c.log.Info("list had no active jobs, ending crawl", "list", list)
			break
		}
	}
	return canceled(ctx)
}

// crawlList pages through one list. A page without jobs or without an
// active job stops the list, as does a page click that left the listing
// unchanged.
func (c *Crawler) crawlList(ctx context.Context, st *State, list int) pageResult {
	var (
		total pageResult
		prev  uint64
	)
	for page := 1; ctx.Err() == nil; page++ {
		fp := c.listingFingerprint()
		if page > 1 && fp != 0 && fp == prev {
			c.log.Warn("listing unchanged after paging, stopping list", "list", list, "page", page)
			break
		}
		prev = fp

		res := c.scrapeJobPage(ctx, st, list, page)
		total.jobs += res.jobs
		total.hasActive = total.hasActive || res.hasActive

		if res.jobs == 0 {
			c.log.Info("page had no jobs, stopping list", "list", list, "page", page)
			break
		}
		if !res.hasActive {
			c.log.Info("page had no active jobs, stopping list", "list", list, "page", page)
			break
		}
		if c.site.MaxPagesPerList > 0 && page >= c.site.MaxPagesPerList {
			c.log.Info("page limit reached", "list", list, "page", page)
			break
		}
		if !c.advanceJobPage(ctx, page) {
			break
		}
	}
	return total
}

// selectList opens the home page and activates the k-th list tab.
// List 1 falls back to the default view when the page has no tabs.
func (c *Crawler) selectList(ctx context.Context, k int) bool {
	log := c.log.With("list", k)
	if err := c.page.Navigate(ctx, c.site.HomeURL); err != nil {
		log.Warn("could not open home page", "error", err)
		return false
	}
	if err := c.page.WaitFor(ctx, selAnySection, c.timing.ElementTimeout); err != nil {
		log.Debug("home page has no sections yet", "error", err)
	}

	tabs, err := c.page.Elements(selListTabs)
	if err != nil || len(tabs) < k {
		if k == 1 {
			log.Debug("no list tabs, using default view")
			return true
		}
		return false
	}

	tab := tabs[k-1]
	if text, err := tab.Text(); err == nil {
		log.Info("switching list", "tab", text)
	}
	if err := tab.ScrollIntoView(); err != nil {
		log.Debug("tab scroll failed", "error", err)
	}
	if err := tab.Activate(); err != nil {
		log.Warn("tab click failed", "error", err)
		return false
	}
	c.sleep(ctx, c.timing.TabSettle)
	return true
}

// listingFingerprint hashes the text of the job sections currently shown.
func (c *Crawler) listingFingerprint() uint64 {
	sections, err := c.page.Elements(selJobSection)
	if err != nil {
		return 0
	}
	texts := make([]string, 0, len(sections))
	for _, s := range sections {
		if t, err := s.Text(); err == nil {
			texts = append(texts, t)
		}
	}
	return simhash.Listing(texts)
}
