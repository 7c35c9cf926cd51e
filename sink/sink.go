// Package sink appends crawl results to named worksheets.
//
// The crawler hands over two tables per run, jobs and candidates, each
// stamped with one timestamp. Backends merge the batch into the existing
// sheet by column name and only ever append rows.
package sink

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/jobscout/dedup"
	"github.com/use-agent/jobscout/models"
	"github.com/use-agent/jobscout/phone"
)

// TimestampFormat is the layout of the batch timestamp column.
const TimestampFormat = "2006-01-02 15:04:05"

// Sink appends a table to a worksheet.
type Sink interface {
	Append(ctx context.Context, worksheet string, t Table) error
}

// Table is an ordered set of columns and string rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Stamp returns a copy of t with column set to value on every row.
func (t Table) Stamp(column, value string) Table {
	out := Table{Columns: append(append([]string{}, t.Columns...), column)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append(append([]string{}, r...), value)
	}
	return out
}

// Layout names the worksheets and the timestamp column.
type Layout struct {
	JobsSheet       string
	CandidatesSheet string
	TimestampColumn string
	Location        *time.Location
}

var jobColumns = []string{
	"Page", "Status", "Creation Date", "Job Title", "Company",
	"Location", "Candidates", "Job URL", "Job Key", "List",
}

var candidateColumns = []string{
	"Job Title", "Application Date", "Status", "Name", "Qualifications",
	"Email", "Phone", "Location", "Page", "Job Status", "Job Creation Date", "Company",
}

// JobTable builds the job listings table.
func JobTable(jobs []models.JobRecord) Table {
	t := Table{Columns: jobColumns, Rows: make([][]string, 0, len(jobs))}
	for i := range jobs {
		j := &jobs[i]
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(j.PageNumber),
			j.Status.Label(),
			j.CreationDate,
			j.Title,
			j.Company,
			j.Location,
			j.CandidateLabel,
			j.DetailURL,
			dedup.Key(j),
			strconv.Itoa(j.List),
		})
	}
	return t
}

// CandidateTable builds the candidates table. Phones are normalised here.
func CandidateTable(cands []models.CandidateRecord) Table {
	t := Table{Columns: candidateColumns, Rows: make([][]string, 0, len(cands))}
	for _, c := range cands {
		t.Rows = append(t.Rows, []string{
			c.JobTitle,
			c.ApplicationDate,
			c.Status.Label(),
			c.Name,
			strings.Join(c.Qualifications, ", "),
			c.Email,
			phone.Normalize(c.Phone),
			c.Location,
			strconv.Itoa(c.Context.JobPage),
			c.Context.JobStatus.Label(),
			c.Context.JobCreationDate,
			c.Context.Company,
		})
	}
	return t
}

// Handoff stamps both tables with now and appends the non-empty ones.
func Handoff(ctx context.Context, s Sink, layout Layout, jobs []models.JobRecord, cands []models.CandidateRecord, now time.Time) error {
	loc := layout.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := now.In(loc).Format(TimestampFormat)

	if len(jobs) > 0 {
		if err := s.Append(ctx, layout.JobsSheet, JobTable(jobs).Stamp(layout.TimestampColumn, stamp)); err != nil {
			return err
		}
	}
	if len(cands) > 0 {
		if err := s.Append(ctx, layout.CandidatesSheet, CandidateTable(cands).Stamp(layout.TimestampColumn, stamp)); err != nil {
			return err
		}
	}
	return nil
}

// merge lines a batch up with an existing header. Columns unknown to the
// sheet are appended to the header; columns absent from the batch are
// written empty.
func merge(existing []string, t Table) (header []string, rows [][]string) {
	header = append([]string{}, existing...)
	if len(header) == 0 {
		header = append(header, t.Columns...)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	for _, c := range t.Columns {
		if _, ok := pos[c]; !ok {
			pos[c] = len(header)
			header = append(header, c)
		}
	}

	rows = make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out := make([]string, len(header))
		for i, c := range t.Columns {
			if i < len(r) {
				out[pos[c]] = r[i]
			}
		}
		rows = append(rows, out)
	}
	return header, rows
}
