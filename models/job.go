package models

import "strings"

// Sentinel is substituted for any field that could not be extracted.
const Sentinel = "N/A"

// JobStatus is the publication state of a job posting.
type JobStatus int

const (
	JobUnknown JobStatus = iota
	JobActive
	JobExpired
)

func (s JobStatus) String() string {
	switch s {
	case JobActive:
		return "Active"
	case JobExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// Label returns the console's own word for the status, or the sentinel.
func (s JobStatus) Label() string {
	switch s {
	case JobActive:
		return "Tayang"
	case JobExpired:
		return "Kadaluarsa"
	default:
		return Sentinel
	}
}

// ParseJobStatus classifies a badge text. Matching ignores case and
// surrounding whitespace; anything else is JobUnknown.
func ParseJobStatus(text string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "tayang", "active":
		return JobActive
	case "kadaluarsa", "expired":
		return JobExpired
	default:
		return JobUnknown
	}
}

// JobRecord is one job posting as it appeared on a list page.
// Every string field holds either extracted text or Sentinel.
type JobRecord struct {
	List           int       `json:"list"`
	PageNumber     int       `json:"page_number"`
	Status         JobStatus `json:"status"`
	CreationDate   string    `json:"creation_date"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	CandidateLabel string    `json:"candidate_count_label"`
	DetailURL      string    `json:"detail_url"`
}

// HasURL reports whether the detail URL was extracted.
func (j *JobRecord) HasURL() bool {
	return j.DetailURL != "" && j.DetailURL != Sentinel
}

// NewJobRecord returns a record whose fields are all Sentinel.
func NewJobRecord(list, page int) JobRecord {
	return JobRecord{
		List:           list,
		PageNumber:     page,
		Status:         JobUnknown,
		CreationDate:   Sentinel,
		Title:          Sentinel,
		Company:        Sentinel,
		Location:       Sentinel,
		CandidateLabel: Sentinel,
		DetailURL:      Sentinel,
	}
}
