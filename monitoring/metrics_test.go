package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.IncJobs("Tayang")
	m.IncJobs("Tayang")
	m.IncJobs("Kadaluarsa")
	m.IncCandidates(3)
	m.IncMismatch()
	m.IncSentinel("email")
	m.IncPages("2")
	m.IncSectionErrors("candidate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobsScraped.WithLabelValues("Tayang")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsScraped.WithLabelValues("Kadaluarsa")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CandidatesScraped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CountMismatch))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FieldSentinel.WithLabelValues("email")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetricsPerRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
