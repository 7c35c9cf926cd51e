// Package report renders an end-of-run summary of a crawl as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/use-agent/jobscout/models"
)

// Summary holds the aggregates printed after a run.
type Summary struct {
	Pages       []PageCount
	JobStatus   map[string]int
	Candidates  map[string]int
	TotalJobs   int
	TotalCands  int
	MissingURLs int
}

// PageCount is the number of jobs seen on one listing page.
type PageCount struct {
	List int
	Page int
	Jobs int
}

// Summarize aggregates the crawl output.
func Summarize(jobs []models.JobRecord, cands []models.CandidateRecord) Summary {
	s := Summary{
		JobStatus:  make(map[string]int),
		Candidates: make(map[string]int),
		TotalJobs:  len(jobs),
		TotalCands: len(cands),
	}

	type key struct{ list, page int }
	perPage := make(map[key]int)
	for i := range jobs {
		j := &jobs[i]
		perPage[key{j.List, j.PageNumber}]++
		s.JobStatus[j.Status.Label()]++
		if !j.HasURL() {
			s.MissingURLs++
		}
	}
	for k, n := range perPage {
		s.Pages = append(s.Pages, PageCount{List: k.list, Page: k.page, Jobs: n})
	}
	sort.Slice(s.Pages, func(a, b int) bool {
		if s.Pages[a].List != s.Pages[b].List {
			return s.Pages[a].List < s.Pages[b].List
		}
		return s.Pages[a].Page < s.Pages[b].Page
	})

	for i := range cands {
		s.Candidates[cands[i].Status.Label()]++
	}
	return s
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// Render writes the summary tables to w.
func Render(w io.Writer, s Summary) {
	pages := newTable(w)
	pages.SetTitle("Jobs per page")
	pages.AppendHeader(table.Row{"List", "Page", "Jobs"})
	for _, p := range s.Pages {
		pages.AppendRow(table.Row{p.List, p.Page, p.Jobs})
	}
	pages.AppendFooter(table.Row{"", "Total", s.TotalJobs})
	pages.Render()

	renderCounts(w, "Job status", s.JobStatus, s.TotalJobs)
	renderCounts(w, "Candidate status", s.Candidates, s.TotalCands)

	if s.MissingURLs > 0 {
		fmt.Fprintf(w, "%d job(s) without a detail URL were not traversed\n", s.MissingURLs)
	}
}

func renderCounts(w io.Writer, title string, counts map[string]int, total int) {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Status", "Count"})
	for _, l := range labels {
		t.AppendRow(table.Row{l, counts[l]})
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}
