package crawler

import (
	"context"
	"strconv"
	"strings"

	"github.com/use-agent/jobscout/browser"
	"github.com/use-agent/jobscout/dedup"
	"github.com/use-agent/jobscout/extract"
	"github.com/use-agent/jobscout/models"
)

// pageResult summarises one scraped job list page.
type pageResult struct {
	jobs      int
	hasActive bool
}

// scrapeJobPage records every job section on the current page and crawls
// the candidates of unseen active postings.
//
// Sections are re-resolved by index on every iteration: returning from a
// job detail page replaces the document and invalidates old handles.
func (c *Crawler) scrapeJobPage(ctx context.Context, st *State, list, page int) pageResult {
	st.at(list, page)
	log := c.log.With("list", list, "page", page)

	var res pageResult
	if err := c.page.WaitFor(ctx, selAnySection, c.timing.ElementTimeout); err != nil {
		log.Info("no sections on page", "error", err)
		return res
	}
	returnURL, err := c.page.URL(ctx)
	if err != nil {
		log.Warn("could not read list URL", "error", err)
	}

	for idx := 0; ctx.Err() == nil; idx++ {
		if err := c.page.WaitFor(ctx, selJobSection, c.timing.ElementTimeout); err != nil {
			break
		}
		sections, err := c.page.Elements(selJobSection)
		if err != nil || idx >= len(sections) {
			break
		}

		job := models.NewJobRecord(list, page)
		err = recovered(func() { c.fillJob(&job, sections[idx], returnURL) })
		if err != nil {
			log.Warn("job section failed", "index", idx, "error", err)
			c.sectionError("job")
		}
		st.addJob(job)
		res.jobs++
		if c.metrics != nil {
			c.metrics.IncJobs(job.Status.Label())
		}
		log.Info("job", "index", idx+1, "status", job.Status, "title", job.Title)

		if job.Status != models.JobActive {
			continue
		}
		res.hasActive = true
		if !job.HasURL() {
			continue
		}
		if st.Processed.Contains(job.DetailURL) {
			log.Info("skipping candidates, job already processed", "url", job.DetailURL)
			continue
		}
		st.markProcessed(job.DetailURL)

		var cands []models.CandidateRecord
		if err := recovered(func() { cands = c.crawlCandidates(ctx, job, returnURL) }); err != nil {
			log.Warn("candidate traversal failed", "url", job.DetailURL, "error", err)
			c.sectionError("candidates")
		}
		st.addCandidates(cands)
	}

	if c.metrics != nil {
		c.metrics.IncPages(strconv.Itoa(list))
	}
	return res
}

// fillJob reads every JobRecord field; a missing field stays Sentinel.
func (c *Crawler) fillJob(job *models.JobRecord, section browser.Element, pageURL string) {
	t := extract.Target{Scope: section, Doc: c.page}

	job.Status = models.ParseJobStatus(c.field(jobStatusField, t))
	job.CreationDate = c.field(creationDateField, t)
	job.Company = c.field(companyField, t)
	job.Title = c.field(titleField(job.Company, c.site.TitleExclude), t)
	job.Location = c.field(jobLocationField, t)
	job.CandidateLabel = c.field(candidateLabelField, t)
	if href := c.field(detailURLField, t); href != models.Sentinel {
		job.DetailURL = dedup.Resolve(pageURL, href)
	}
}

func (c *Crawler) field(f extract.Field, t extract.Target) string {
	v, _ := f.Resolve(t)
	if v == models.Sentinel && c.metrics != nil {
		c.metrics.IncSentinel(f.Name)
	}
	return v
}

func (c *Crawler) sectionError(kind string) {
	if c.metrics != nil {
		c.metrics.IncSectionErrors(kind)
	}
}

// advanceJobPage moves to the page after current. It returns false when no
// later page exists; it never steps back to an earlier page.
func (c *Crawler) advanceJobPage(ctx context.Context, current int) bool {
	buttons, ok := extract.First([]string{selPagerButtons, selPagerFallback}, func(sel string) ([]browser.Element, bool) {
		els, err := c.page.Elements(sel)
		return els, err == nil && len(els) > 0
	})
	if !ok {
		c.log.Debug("no pagination controls", "page", current)
		return false
	}

	p := pager{buttons: buttons, current: current}
	tactics := []func() (browser.Element, bool){
		func() (browser.Element, bool) { return p.afterActive("btn-primary") },
		func() (browser.Element, bool) { return p.afterActive("btn-active", "active", "current") },
		p.byCounter,
		p.next,
	}
	target, ok := extract.First(tactics, func(tactic func() (browser.Element, bool)) (browser.Element, bool) {
		return tactic()
	})
	if !ok || target == nil {
		c.log.Info("reached last page", "page", current)
		return false
	}

	before, _ := c.page.URL(ctx)
	if err := target.ScrollIntoView(); err != nil {
		c.log.Debug("pager scroll failed", "error", err)
	}
	if err := target.Activate(); err != nil {
		c.log.Warn("pager click failed", "page", current, "error", err)
		return false
	}

	if !c.page.WaitURLChange(ctx, before, c.timing.URLChangeTimeout) &&
		!c.page.WaitStale(ctx, buttons[0], c.timing.URLChangeTimeout) {
		c.sleep(ctx, c.timing.PageFallback)
	}
	if err := c.page.WaitFor(ctx, selJobSection, c.timing.ElementTimeout); err != nil {
		c.log.Debug("no job sections after paging", "page", current+1, "error", err)
	}
	return true
}

// pager picks the next-page control among the pagination buttons.
// A tactic returns (nil, true) to declare the last page reached.
type pager struct {
	buttons []browser.Element
	current int
}

func (p pager) number(el browser.Element) (int, bool) {
	text, err := el.Text()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	return n, err == nil
}

func (p pager) labelled(n int) (browser.Element, bool) {
	for _, b := range p.buttons {
		if v, ok := p.number(b); ok && v == n {
			return b, true
		}
	}
	return nil, false
}

func (p pager) maxNumber() int {
	highest := 0
	for _, b := range p.buttons {
		if v, ok := p.number(b); ok && v > highest {
			highest = v
		}
	}
	return highest
}

// afterActive picks the button after the one marked active. A marker that
// still sits on an earlier page (the pager re-rendered late) is ignored so
// the crawl never steps back.
func (p pager) afterActive(classes ...string) (browser.Element, bool) {
	for _, b := range p.buttons {
		if !hasClass(b, classes...) {
			continue
		}
		active, ok := p.number(b)
		if !ok {
			continue
		}
		if active+1 <= p.current {
			return nil, false
		}
		if active >= p.maxNumber() {
			return nil, true
		}
		return p.forward(active + 1)
	}
	return nil, false
}

func (p pager) byCounter() (browser.Element, bool) {
	return p.forward(p.current + 1)
}

// forward is labelled restricted to pages after current.
func (p pager) forward(n int) (browser.Element, bool) {
	if n <= p.current {
		return nil, false
	}
	return p.labelled(n)
}

func (p pager) next() (browser.Element, bool) {
	for _, b := range p.buttons {
		text, _ := b.Text()
		label, _, _ := b.Attribute("aria-label")
		text = strings.TrimSpace(text)
		isNext := text == "Next" || text == ">" || text == "»" ||
			strings.Contains(strings.ToLower(label), "next")
		if !isNext {
			continue
		}
		if disabled(b) {
			return nil, true
		}
		return b, true
	}
	return nil, false
}

func hasClass(el browser.Element, names ...string) bool {
	class, ok, err := el.Attribute("class")
	if err != nil || !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		for _, n := range names {
			if c == n {
				return true
			}
		}
	}
	return false
}

func disabled(el browser.Element) bool {
	if _, ok, _ := el.Attribute("disabled"); ok {
		return true
	}
	if v, ok, _ := el.Attribute("aria-disabled"); ok && v == "true" {
		return true
	}
	return hasClass(el, "disabled", "btn-disabled")
}
