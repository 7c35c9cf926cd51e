package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for one crawl process.
type Metrics struct {
	JobsScraped       *prometheus.CounterVec
	CandidatesScraped prometheus.Counter
	CountMismatch     prometheus.Counter
	FieldSentinel     *prometheus.CounterVec
	PagesScraped      *prometheus.CounterVec
	SectionErrors     *prometheus.CounterVec
	CrawlDuration     prometheus.Gauge
}

// NewMetrics registers the crawl metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobsScraped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobscout_jobs_scraped_total",
			Help: "Job records emitted, by console status label (Tayang, Kadaluarsa, N/A)",
		}, []string{"status"}),
		CandidatesScraped: f.NewCounter(prometheus.CounterOpts{
			Name: "jobscout_candidates_scraped_total",
			Help: "Candidate records emitted",
		}),
		CountMismatch: f.NewCounter(prometheus.CounterOpts{
			Name: "jobscout_candidate_count_mismatch_total",
			Help: "Candidate pages whose extracted count differed from the trigger count",
		}),
		FieldSentinel: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobscout_field_sentinel_total",
			Help: "Fields that fell back to the sentinel value",
		}, []string{"field"}),
		PagesScraped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobscout_pages_scraped_total",
			Help: "Job list pages scraped, by list number",
		}, []string{"list"}),
		SectionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobscout_section_errors_total",
			Help: "Sections that failed while processing", // e.g. 'job', 'candidate'
		}, []string{"kind"}),
		CrawlDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "jobscout_crawl_duration_seconds",
			Help: "Wall-clock duration of the last crawl",
		}),
	}
}

func (m *Metrics) IncJobs(status string) {
	m.JobsScraped.WithLabelValues(status).Inc()
}

func (m *Metrics) IncCandidates(n int) {
	m.CandidatesScraped.Add(float64(n))
}

func (m *Metrics) IncMismatch() {
	m.CountMismatch.Inc()
}

func (m *Metrics) IncSentinel(field string) {
	m.FieldSentinel.WithLabelValues(field).Inc()
}

func (m *Metrics) IncPages(list string) {
	m.PagesScraped.WithLabelValues(list).Inc()
}

func (m *Metrics) IncSectionErrors(kind string) {
	m.SectionErrors.WithLabelValues(kind).Inc()
}
