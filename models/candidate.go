package models

import "strings"

// CandidateStatus is the recruiter's decision on an application.
type CandidateStatus int

const (
	CandidateUnknown CandidateStatus = iota
	CandidateSelected
	CandidateRejected
	CandidatePending
)

func (s CandidateStatus) String() string {
	switch s {
	case CandidateSelected:
		return "Selected"
	case CandidateRejected:
		return "Rejected"
	case CandidatePending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// Label returns the console's own word for the status.
func (s CandidateStatus) Label() string {
	switch s {
	case CandidateSelected:
		return "Terpilih"
	case CandidateRejected:
		return "Ditolak"
	case CandidatePending:
		return "Menunggu"
	default:
		return "Tidak ada status"
	}
}

// ParseCandidateStatus classifies a status label by the console vocabulary
// (Terpilih, Ditolak, Menunggu). The label may carry surrounding text.
func ParseCandidateStatus(text string) CandidateStatus {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "terpilih"):
		return CandidateSelected
	case strings.Contains(t, "ditolak"):
		return CandidateRejected
	case strings.Contains(t, "menunggu"):
		return CandidatePending
	default:
		return CandidateUnknown
	}
}

// PageContext tags a candidate with the job listing it was reached from.
type PageContext struct {
	JobPage         int       `json:"job_page"`
	JobStatus       JobStatus `json:"job_status"`
	JobCreationDate string    `json:"job_creation_date"`
	Company         string    `json:"company"`
}

// CandidateRecord is one applicant section from a job's candidate list.
// Phone is stored raw; normalisation happens when rows are built.
type CandidateRecord struct {
	JobTitle        string          `json:"job_title"`
	ApplicationDate string          `json:"application_date"`
	Status          CandidateStatus `json:"status"`
	Name            string          `json:"name"`
	Qualifications  []string        `json:"qualifications"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Location        string          `json:"location"`
	Context         PageContext     `json:"page_context"`
}

// NewCandidateRecord returns a record for jobTitle whose fields are all Sentinel.
func NewCandidateRecord(jobTitle string) CandidateRecord {
	return CandidateRecord{
		JobTitle:        jobTitle,
		ApplicationDate: Sentinel,
		Status:          CandidateUnknown,
		Name:            Sentinel,
		Qualifications:  []string{},
		Email:           Sentinel,
		Phone:           Sentinel,
		Location:        Sentinel,
	}
}
