package crawler

import (
	"sync/atomic"

	"github.com/use-agent/jobscout/dedup"
	"github.com/use-agent/jobscout/models"
)

// State is everything one crawl run accumulates. It is owned by the
// goroutine running Crawler.Run; other goroutines read Progress only.
type State struct {
	Processed  *dedup.Guard
	Jobs       []models.JobRecord
	Candidates []models.CandidateRecord
	ListIndex  int
	PageIndex  int

	Progress *Progress
}

// NewState returns an empty crawl state.
func NewState() *State {
	return &State{
		Processed: dedup.NewGuard(),
		Progress:  &Progress{},
	}
}

func (s *State) at(list, page int) {
	s.ListIndex, s.PageIndex = list, page
	s.Progress.List.Store(int64(list))
	s.Progress.Page.Store(int64(page))
}

func (s *State) addJob(j models.JobRecord) {
	s.Jobs = append(s.Jobs, j)
	s.Progress.Jobs.Add(1)
}

func (s *State) addCandidates(cs []models.CandidateRecord) {
	s.Candidates = append(s.Candidates, cs...)
	s.Progress.Candidates.Add(int64(len(cs)))
}

// markProcessed inserts url before its candidates are traversed, so a
// failed traversal is not retried from a later list.
func (s *State) markProcessed(url string) {
	s.Processed.Insert(url)
	s.Progress.Processed.Store(int64(s.Processed.Len()))
}

// Progress mirrors State counters for concurrent readers.
type Progress struct {
	List       atomic.Int64
	Page       atomic.Int64
	Jobs       atomic.Int64
	Candidates atomic.Int64
	Processed  atomic.Int64
}

// Snapshot is a point-in-time copy of Progress.
type Snapshot struct {
	List          int64 `json:"list"`
	Page          int64 `json:"page"`
	Jobs          int64 `json:"jobs"`
	Candidates    int64 `json:"candidates"`
	ProcessedJobs int64 `json:"processed_jobs"`
}

// Snapshot reads all counters.
func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		List:          p.List.Load(),
		Page:          p.Page.Load(),
		Jobs:          p.Jobs.Load(),
		Candidates:    p.Candidates.Load(),
		ProcessedJobs: p.Processed.Load(),
	}
}
