package crawler

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/andybalholm/cascadia"

	"github.com/use-agent/jobscout/extract"
	"github.com/use-agent/jobscout/models"
)

// Console markup. Class names come from the Tailwind/daisyUI build the
// employer console ships; the vocabulary is Indonesian.
const (
	selLoginEmail     = `[data-testid="login-form-email"]`
	selLoginPassword  = `[data-testid="login-form-password"]`
	selPasswordAny    = `input[type="password"]`
	selLoginSubmit    = `[role="button"]`
	selAnySection     = "section"
	selJobSection     = "section.border-l-8"
	selListTabs       = "[role='tab'], .tab, button[data-list]"
	selPagerButtons   = ".btn.join-item"
	selPagerFallback  = "button[class*='btn']"
	selCandidatePager = "button.btn.join-item"
	selEmailTrigger   = "button.link-info.btn-text"
	selPhoneTrigger   = "button.link-info.btn-text"

	wordActive  = "Tayang"
	wordExpired = "Kadaluarsa"
	wordEmail   = "Lihat email"
)

var (
	statusWords = []string{wordActive, wordExpired}
	decisions   = []string{"Terpilih", "Ditolak", "Menunggu"}
	digitRe     = regexp.MustCompile(`\p{Nd}`)
)

// jobStatusField widens from the primary badge to a full-subtree scan.
// Tiers 1-5 need an exact, case-sensitive word; the last tier folds case.
var jobStatusField = extract.Field{Name: "job_status", Strategies: []extract.Strategy{
	{Name: "primary badge", Selector: ".badge.badge-primary", Post: []extract.Post{extract.OneOf(statusWords...)}},
	{Name: "any badge", Selector: ".badge", Post: []extract.Post{extract.OneOf(statusWords...)}},
	{Name: "badge-like div", Selector: "div.badge, div[class*='badge']", Post: []extract.Post{extract.OneOf(statusWords...)}},
	{Name: "vocabulary", Selector: "*", Contains: statusWords, Post: []extract.Post{extract.OneOf(statusWords...)}},
	{Name: "span", Selector: "span[class*='bg-'], span[class*='text-'], span", Post: []extract.Post{extract.OneOf(statusWords...)}},
	{Name: "subtree", Selector: "*", Post: []extract.Post{extract.OneOfFold(statusWords...)}},
}}

var creationDateField = extract.Field{Name: "creation_date", Strategies: []extract.Strategy{
	{Selector: ".font-extralight", Post: []extract.Post{extract.Has("Dibuat", "Created")}},
}}

var companyField = extract.Field{Name: "company", Strategies: []extract.Strategy{
	{Selector: "span.flex.gap-2.text-base.font-normal"},
}}

var jobLocationField = extract.Field{Name: "job_location", Strategies: []extract.Strategy{
	{Selector: "span.text-md.text-sm.font-light"},
}}

var candidateLabelField = extract.Field{Name: "candidate_label", Strategies: []extract.Strategy{
	{Selector: "span", Contains: []string{"Kandidat"}},
}}

var detailURLField = extract.Field{Name: "detail_url", Strategies: []extract.Strategy{
	{Selector: "a[href*='/jobs/']", Attr: "href"},
}}

// titleField rejects the company name, which shares the title's classes,
// and any text containing a configured exclusion.
func titleField(company string, exclude []string) extract.Field {
	return extract.Field{Name: "title", Strategies: []extract.Strategy{
		{Selector: ".text-base.font-normal", Post: []extract.Post{
			extract.ShorterThan(100),
			extract.Except(company),
			extract.Lacks(exclude...),
		}},
	}}
}

// Candidate sections are located from their email trigger. A section
// must hold exactly one trigger, which stops the ancestor walk at the card.
var (
	cardTrigger       = extract.Strategy{Name: "email trigger", Selector: "button", Contains: []string{wordEmail}}
	emailTriggerCount = extract.Strategy{Name: "email triggers", Origin: extract.FromDocument, Selector: "button", Contains: []string{wordEmail}}

	sectionAncestors = []string{
		":has(div[class*='divide-x'])",
		"div.grid.gap-6",
		"div.grid.grid-cols-1.gap-6",
		"div:has(h2):has(div[class*='divide-x'])",
	}
)

var candidateNameField = extract.Field{Name: "name", Strategies: []extract.Strategy{
	{Selector: "h2.font-light"},
}}

var applicationDateField = extract.Field{Name: "application_date", Strategies: []extract.Strategy{
	{Name: "bordered row", Selector: ".flex.divide-x.border .text-base-500"},
	{Name: "centred row", Selector: ".flex.justify-center .flex.divide-x .text-base-500"},
	{Name: "divided row", Selector: "div[class*='divide-x'] .text-base-500"},
	{Name: "applied on", Selector: "div", Contains: []string{"Melamar tanggal"}},
	{Name: "applied", Selector: "*", Contains: []string{"Melamar"}},
	{Name: "applied sibling", Origin: extract.FromParent, Selector: "*", Contains: []string{"Melamar"}},
}}

var candidateStatusField = extract.Field{Name: "candidate_status", Strategies: []extract.Strategy{
	{Name: "role", Selector: "[role='status']", Post: []extract.Post{extract.Has(decisions...)}},
	{Name: "coloured pill", Selector: "div[class*='bg-yellow'], div[class*='bg-red'], div[class*='bg-green'], div[class*='bg-blue']", Post: []extract.Post{extract.Has(decisions...)}},
	{Name: "vocabulary", Selector: "*", Contains: decisions},
	{Name: "vocabulary sibling", Origin: extract.FromParent, Selector: "*", Contains: decisions},
}}

var qualificationsField = extract.Field{Name: "qualifications", Strategies: []extract.Strategy{
	{Selector: ".badge.badge-primary.badge-outline"},
}}

var emailTriggers = []extract.Strategy{
	{Selector: selEmailTrigger, Contains: []string{"email"}, Fold: true},
	{Selector: "button", Contains: []string{wordEmail}},
}

var emailField = extract.Field{Name: "email", Strategies: []extract.Strategy{
	{Name: "section mailto", Selector: `a[href^="mailto:"]`, Attr: "href", Post: []extract.Post{extract.TrimPrefix("mailto:")}},
	{Name: "last mailto", Origin: extract.FromDocument, Selector: `a[href^="mailto:"]`, Attr: "href", Pick: extract.PickLast, Post: []extract.Post{extract.TrimPrefix("mailto:")}},
	{Name: "at sign", Selector: "span", Post: []extract.Post{extract.Has("@")}},
}}

var phoneTriggers = []extract.Strategy{
	{Selector: selPhoneTrigger, Contains: []string{"telepon"}, Fold: true},
	{Selector: "button", Contains: []string{"Lihat telepon"}},
}

var phoneField = extract.Field{Name: "phone", Strategies: []extract.Strategy{
	{Name: "section button", Selector: "button.text-info.text-base.cursor-pointer"},
	{Name: "last button", Origin: extract.FromDocument, Selector: "button.text-info.text-base.cursor-pointer", Pick: extract.PickLast},
	{Name: "digits span", Selector: "span.text-base", Post: []extract.Post{
		extract.Matches(digitRe),
		extract.Lacks("@"),
		extract.LongerThan(3),
	}},
}}

var candidateLocationField = extract.Field{Name: "candidate_location", Strategies: []extract.Strategy{
	{Name: "place words", Selector: "div", Contains: []string{"Kota", "West Java", "ID"}},
	{Name: "comma place", Selector: "div.text-base", Post: []extract.Post{
		extract.HasAll([]string{","}, []string{"ID", "Java"}),
	}},
}}

func allFields() []extract.Field {
	return []extract.Field{
		jobStatusField, creationDateField, companyField, jobLocationField,
		candidateLabelField, detailURLField, titleField("", nil),
		candidateNameField, applicationDateField, candidateStatusField,
		qualificationsField, emailField, phoneField, candidateLocationField,
		{Name: "card triggers", Strategies: []extract.Strategy{cardTrigger, emailTriggerCount}},
		{Name: "email triggers", Strategies: emailTriggers},
		{Name: "phone triggers", Strategies: phoneTriggers},
	}
}

func pageSelectors() []string {
	sels := []string{
		selLoginEmail, selLoginPassword, selPasswordAny, selLoginSubmit,
		selAnySection, selJobSection, selListTabs, selPagerButtons,
		selPagerFallback, selCandidatePager, selEmailTrigger, selPhoneTrigger,
	}
	return append(sels, sectionAncestors...)
}

// CheckSelectors compiles every selector the crawler queries, so a broken
// tier fails the run at startup instead of silently yielding sentinels.
func CheckSelectors() error {
	return checkSelectors(allFields(), pageSelectors())
}

func checkSelectors(fields []extract.Field, sels []string) error {
	var errs []error
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sel := range sels {
		if _, err := cascadia.ParseGroup(sel); err != nil {
			errs = append(errs, fmt.Errorf("selector %q: %w", sel, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return models.NewCrawlError(models.ErrCodeSelector, "invalid selector", err)
	}
	return nil
}
