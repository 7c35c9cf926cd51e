package crawler

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/use-agent/jobscout/browser"
	"github.com/use-agent/jobscout/extract"
	"github.com/use-agent/jobscout/models"
)

type candidatePhase int

const (
	phaseScraping candidatePhase = iota
	phaseAdvancing
	phaseDone
)

// crawlCandidates opens a job's detail page and collects every candidate
// across its candidate pages, then navigates back to returnURL.
//
// returnURL is captured by the caller before leaving the list: paging
// forward through candidates loses the list's own navigation state.
func (c *Crawler) crawlCandidates(ctx context.Context, job models.JobRecord, returnURL string) []models.CandidateRecord {
	log := c.log.With("job", job.Title, "url", job.DetailURL)
	defer c.returnTo(ctx, returnURL, log)

	if err := c.page.Navigate(ctx, job.DetailURL); err != nil {
		log.Warn("could not open job detail", "error", err)
		return nil
	}
	if err := c.page.WaitFor(ctx, selEmailTrigger, c.timing.ElementTimeout); err != nil {
		log.Debug("no candidate triggers on detail page", "error", err)
	}

	tag := models.PageContext{
		JobPage:         job.PageNumber,
		JobStatus:       job.Status,
		JobCreationDate: job.CreationDate,
		Company:         job.Company,
	}

	var all []models.CandidateRecord
	page := 1
	phase := phaseScraping
	for phase != phaseDone {
		if ctx.Err() != nil {
			break
		}
		switch phase {
		case phaseScraping:
			recs := c.scrapeCandidatePage(ctx, job.Title, page, log)
			for i := range recs {
				recs[i].Context = tag
			}
			all = append(all, recs...)
			log.Info("candidate page done", "candidate_page", page, "candidates", len(recs))
			phase = phaseAdvancing
		case phaseAdvancing:
			if c.advanceCandidatePage(ctx, page) {
				page++
				phase = phaseScraping
			} else {
				phase = phaseDone
			}
		}
	}

	if c.metrics != nil {
		c.metrics.IncCandidates(len(all))
	}
	log.Info("candidates collected", "total", len(all), "candidate_pages", page)
	return all
}

// scrapeCandidatePage extracts one record per resolvable candidate section.
// The email trigger count is the expected cardinality; a mismatch is logged.
func (c *Crawler) scrapeCandidatePage(ctx context.Context, jobTitle string, page int, log *slog.Logger) []models.CandidateRecord {
	doc := extract.Target{Doc: c.page}
	triggers := emailTriggerCount.LocateAll(doc)
	expected := len(triggers)

	sections := resolveSections(triggers)
	if len(sections) == 0 {
		sections = triggers
	}

	recs := make([]models.CandidateRecord, 0, len(sections))
	for i, section := range sections {
		rec := models.NewCandidateRecord(jobTitle)
		if err := recovered(func() { c.fillCandidate(ctx, &rec, section) }); err != nil {
			log.Warn("candidate section failed, keeping partial record",
				"candidate_page", page, "index", i, "error", err)
			c.sectionError("candidate")
		}
		recs = append(recs, rec)
	}

	if len(recs) != expected {
		log.Warn("candidate count mismatch",
			"candidate_page", page, "expected", expected, "actual", len(recs))
		if c.metrics != nil {
			c.metrics.IncMismatch()
		}
	}
	return recs
}

// resolveSections maps each trigger to its candidate card. Triggers with
// no recognisable card are dropped.
func resolveSections(triggers []browser.Element) []browser.Element {
	out := make([]browser.Element, 0, len(triggers))
	for _, trig := range triggers {
		section, ok := extract.First(sectionAncestors, func(sel string) (browser.Element, bool) {
			s, ok := trig.Closest(sel)
			if !ok {
				return nil, false
			}
			return s, len(cardTrigger.LocateAll(extract.Target{Scope: s})) == 1
		})
		if ok {
			out = append(out, section)
		}
	}
	return out
}

// fillCandidate reads every CandidateRecord field. Fields are independent;
// contact fields are revealed first.
func (c *Crawler) fillCandidate(ctx context.Context, rec *models.CandidateRecord, section browser.Element) {
	t := extract.Target{Scope: section, Doc: c.page}

	rec.Name = c.field(candidateNameField, t)
	rec.ApplicationDate = c.field(applicationDateField, t)
	rec.Status = models.ParseCandidateStatus(c.field(candidateStatusField, t))
	rec.Qualifications = qualificationsField.ExtractAll(t)

	if !c.reveal.Reveal(ctx, t, emailTriggers) {
		c.log.Debug("email reveal unavailable", "name", rec.Name)
	}
	rec.Email = c.field(emailField, t)

	if !c.reveal.Reveal(ctx, t, phoneTriggers) {
		c.log.Debug("phone reveal unavailable", "name", rec.Name)
	}
	rec.Phone = c.field(phoneField, t)

	rec.Location = c.field(candidateLocationField, t)
}

// advanceCandidatePage clicks the control labelled current+1.
func (c *Crawler) advanceCandidatePage(ctx context.Context, current int) bool {
	buttons, err := c.page.Elements(selCandidatePager)
	if err != nil {
		return false
	}
	want := strconv.Itoa(current + 1)
	target, ok := extract.First(buttons, func(b browser.Element) (browser.Element, bool) {
		text, err := b.Text()
		return b, err == nil && strings.TrimSpace(text) == want
	})
	if !ok {
		return false
	}

	stale, hasOld := c.firstElement(selEmailTrigger)
	if err := target.ScrollIntoView(); err != nil {
		c.log.Debug("candidate pager scroll failed", "error", err)
	}
	if err := target.Activate(); err != nil {
		c.log.Warn("candidate pager click failed", "candidate_page", current+1, "error", err)
		return false
	}

	if hasOld {
		c.page.WaitStale(ctx, stale, c.timing.URLChangeTimeout)
	}
	if err := c.page.WaitFor(ctx, selEmailTrigger, c.timing.CandidateWait); err != nil {
		c.sleep(ctx, c.timing.CandidateFallback)
	}
	return true
}

// returnTo reloads the job list the traversal started from.
func (c *Crawler) returnTo(ctx context.Context, returnURL string, log *slog.Logger) {
	if returnURL == "" || ctx.Err() != nil {
		return
	}
	if err := c.page.Navigate(ctx, returnURL); err != nil {
		log.Warn("could not return to job list", "url", returnURL, "error", err)
		return
	}
	if err := c.page.WaitFor(ctx, selJobSection, c.timing.ElementTimeout); err != nil {
		c.sleep(ctx, c.timing.ReturnSettle)
	}
}
